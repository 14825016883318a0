package returns

import (
	"context"

	"storefront-api/internal/domain"
)

type ListFilter struct {
	UserID string
	Status domain.ReturnStatus
	Offset int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, req domain.ReturnRequest) (*domain.ReturnRequest, error)
	GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error)
	List(ctx context.Context, filter ListFilter) ([]domain.ReturnRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus) (*domain.ReturnRequest, error)
}
