// Package inventory is the single mutation point for shoe stock.
// Reserve is a check-and-decrement that is atomic with respect to every
// other reserve/release on the same item, so stock can never go
// negative no matter how many placements race.
package inventory

import (
	"context"
	"errors"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Ledger interface {
	// Reserve decrements available stock by qty, failing with
	// ErrInsufficientStock when fewer than qty remain. Never partially
	// applied.
	Reserve(ctx context.Context, itemID string, qty int) error
	// Release returns previously reserved stock. Callers release
	// exactly what they reserved; the ledger does not track ceilings.
	Release(ctx context.Context, itemID string, qty int) error
}
