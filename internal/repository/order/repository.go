package order

import (
	"context"
	"time"

	"storefront-api/internal/domain"
)

// ListFilter pages a single user's orders.
type ListFilter struct {
	UserID string
	Status domain.OrderStatus
	Offset int
	Limit  int
}

// AdminListFilter adds free-text search over order number and customer
// name/email, plus a creation date range.
type AdminListFilter struct {
	Status domain.OrderStatus
	Search string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

type Repository interface {
	// CreateCheckout persists the order, decrements each ordered product's
	// inventory and deletes the user's cart inside one transaction. A failed
	// inventory guard returns *domain.InsufficientStockError and leaves
	// nothing written. An order number collision returns
	// domain.ErrAlreadyExists so the caller can regenerate and retry.
	CreateCheckout(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, int, error)
	ListAdmin(ctx context.Context, filter AdminListFilter) ([]domain.Order, int, error)
	Update(ctx context.Context, o domain.Order) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
}
