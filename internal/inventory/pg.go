package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG implements Ledger on the shoes table. The conditional update is a
// single statement, so the stock check and the decrement cannot be
// split by a concurrent writer.
type PG struct{ DB *pgxpool.Pool }

func (l *PG) Reserve(ctx context.Context, itemID string, qty int) error {
	ct, err := l.DB.Exec(ctx,
		`UPDATE shoes SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		itemID, qty)
	if err != nil {
		return fmt.Errorf("reserve %s: %w", itemID, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	// no row updated: unknown item or not enough stock
	var one int
	err = l.DB.QueryRow(ctx, `SELECT 1 FROM shoes WHERE id = $1`, itemID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("reserve %s: %w", itemID, err)
	}
	return ErrInsufficientStock
}

func (l *PG) Release(ctx context.Context, itemID string, qty int) error {
	ct, err := l.DB.Exec(ctx,
		`UPDATE shoes SET stock = stock + $2 WHERE id = $1`,
		itemID, qty)
	if err != nil {
		return fmt.Errorf("release %s: %w", itemID, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
