package product

import (
	"context"

	"storefront-api/internal/domain"
)

// ListFilter narrows and pages product listings.
type ListFilter struct {
	Category string
	Brand    string
	Status   domain.ProductStatus
	Query    string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Offset   int
	Limit    int
}

type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Product, int, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	ListTrending(ctx context.Context, limit int) ([]domain.Product, error)
	ListNewArrivals(ctx context.Context, limit int) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	AdjustInventory(ctx context.Context, id string, delta int) (*domain.Product, error)
}
