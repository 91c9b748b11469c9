package orders

import "time"

const DefaultShippingAddress = "Default address"

// LineItem is a denormalized snapshot of the shoe at purchase time.
// Later catalog edits never alter historical orders.
type LineItem struct {
	ShoeID     string `json:"shoe_id"`
	ShoeName   string `json:"shoe_name"`
	PriceCents int    `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	Size       string `json:"size,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Order is created by the placement service and mutated only by the
// status workflow afterwards. TotalCents is computed once at creation.
type Order struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customer_id"`
	Items           []LineItem `json:"items"`
	TotalCents      int        `json:"total_cents"`
	Status          Status     `json:"status"`
	ShippingAddress string     `json:"shipping_address"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// LineRequest is one requested purchase line. Duplicate shoe ids are
// legal and reserved independently in request order.
type LineRequest struct {
	ShoeID   string `json:"shoe_id"`
	Quantity int    `json:"quantity"`
}
