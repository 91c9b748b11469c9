// Package payments is the payment collaborator: it records one payment
// attempt per placed order. Capture and settlement live with the
// payment provider, not here.
package payments

import "time"

type Method string

const (
	MethodCreditCard Method = "credit_card"
	MethodDebitCard  Method = "debit_card"
	MethodCash       Method = "cash"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Payment is one-to-one with an order.
type Payment struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	CustomerID    string    `json:"customer_id"`
	AmountCents   int       `json:"amount_cents"`
	Method        Method    `json:"payment_method"`
	Status        Status    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
