package payment

import (
	"context"

	"storefront-api/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error)
	GetByID(ctx context.Context, userID, id string) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	Update(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error)
	Remove(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) (*domain.PaymentMethod, error)
}
