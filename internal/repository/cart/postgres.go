package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-api/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `SELECT user_id::text, items, updated_at FROM carts WHERE user_id = $1`
	var out domain.Cart
	var items []byte
	err := r.pool.QueryRow(ctx, q, userID).Scan(&out.UserID, &items, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &out.Lines); err != nil {
		return nil, fmt.Errorf("decode cart items user_id=%s: %w", userID, err)
	}
	return &out, nil
}

func (r *postgresRepo) Replace(ctx context.Context, cart domain.Cart) (*domain.Cart, error) {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	items, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode cart items user_id=%s: %w", cart.UserID, err)
	}
	const q = `
INSERT INTO carts (user_id, items, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()
RETURNING user_id::text, updated_at
`
	var out domain.Cart
	if err := r.pool.QueryRow(ctx, q, cart.UserID, items).Scan(&out.UserID, &out.UpdatedAt); err != nil {
		return nil, err
	}
	out.Lines = lines
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}
