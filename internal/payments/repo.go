package payments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Record inserts the payment unless one already exists for the order.
// The unique order_id constraint makes redelivered events harmless; the
// bool reports whether this call created the row.
func (r *Repo) Record(ctx context.Context, p *Payment) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO payments(id, order_id, customer_id, amount_cents, payment_method, status, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO NOTHING`,
		p.ID, p.OrderID, p.CustomerID, p.AmountCents, p.Method, p.Status, p.TransactionID, p.CreatedAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
