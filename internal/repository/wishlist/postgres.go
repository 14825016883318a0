package wishlist

import (
	"context"
	"errors"

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

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	const q = `SELECT user_id::text, product_ids, updated_at FROM wishlists WHERE user_id = $1`
	var out domain.Wishlist
	err := r.pool.QueryRow(ctx, q, userID).Scan(&out.UserID, &out.ProductIDs, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) AddProduct(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	const q = `
INSERT INTO wishlists (user_id, product_ids, updated_at)
VALUES ($1, ARRAY[$2]::text[], now())
ON CONFLICT (user_id) DO UPDATE SET
    product_ids = CASE
        WHEN $2 = ANY(wishlists.product_ids) THEN wishlists.product_ids
        ELSE array_append(wishlists.product_ids, $2)
    END,
    updated_at = now()
RETURNING user_id::text, product_ids, updated_at
`
	var out domain.Wishlist
	if err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&out.UserID, &out.ProductIDs, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) RemoveProduct(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	const q = `
UPDATE wishlists SET product_ids = array_remove(product_ids, $2), updated_at = now()
WHERE user_id = $1
RETURNING user_id::text, product_ids, updated_at
`
	var out domain.Wishlist
	err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&out.UserID, &out.ProductIDs, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
