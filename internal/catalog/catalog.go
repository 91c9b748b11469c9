// Package catalog is the read side of the shoe catalog. Writes
// (CRUD, categories, stock seeding) belong to the admin tooling; order
// placement only snapshots item attributes from here, and stock is
// mutated exclusively through the inventory ledger.
package catalog

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("shoe not found")

type Shoe struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int       `json:"price_cents"`
	Size        string    `json:"size"`
	Color       string    `json:"color,omitempty"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	CategoryID  string    `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	CategoryID    string
	MinPriceCents int
	MaxPriceCents int
}
