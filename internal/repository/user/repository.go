package user

import (
	"context"

	"storefront-api/internal/domain"
)

type ListFilter struct {
	Role   domain.Role
	Status domain.UserStatus
	Query  string
	Offset int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]domain.User, int, error)
	Update(ctx context.Context, u domain.User) (*domain.User, error)
}
