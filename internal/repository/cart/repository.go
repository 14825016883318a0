package cart

import (
	"context"

	"storefront-api/internal/domain"
)

// Repository persists one cart document per user. Mutations replace the
// whole line-item list; there is no partial update.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Replace(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	Delete(ctx context.Context, userID string) error
}
