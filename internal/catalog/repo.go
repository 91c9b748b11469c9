package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const shoeCols = `id, name, description, price_cents, size, color, stock, image_url, category_id, created_at`

func (r *Repo) Shoe(ctx context.Context, id string) (Shoe, error) {
	var s Shoe
	err := r.DB.QueryRow(ctx, `SELECT `+shoeCols+` FROM shoes WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.Size, &s.Color,
			&s.Stock, &s.ImageURL, &s.CategoryID, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shoe{}, ErrNotFound
	}
	if err != nil {
		return Shoe{}, fmt.Errorf("get shoe: %w", err)
	}
	return s, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Shoe, error) {
	q := `SELECT ` + shoeCols + ` FROM shoes`
	var args []any
	where := ""
	add := func(cond string, v any) {
		args = append(args, v)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.MinPriceCents > 0 {
		add("price_cents >= $%d", f.MinPriceCents)
	}
	if f.MaxPriceCents > 0 {
		add("price_cents <= $%d", f.MaxPriceCents)
	}
	q += where + ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list shoes: %w", err)
	}
	defer rows.Close()

	var out []Shoe
	for rows.Next() {
		var s Shoe
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.Size,
			&s.Color, &s.Stock, &s.ImageURL, &s.CategoryID, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
