package wishlist

import (
	"context"

	"storefront-api/internal/domain"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddProduct(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	RemoveProduct(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
}
