package wishlist

import (
	"context"
	"errors"

	"storefront-api/internal/domain"
)

type wishlistRepo interface {
	Get(ctx context.Context, userID string) (*domain.Wishlist, error)
	AddProduct(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
	RemoveProduct(ctx context.Context, userID, productID string) (*domain.Wishlist, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	repo     wishlistRepo
	products productRepo
}

func New(repo wishlistRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the user's wishlist, empty rather than missing for users who
// never saved anything.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	list, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Wishlist{UserID: userID, ProductIDs: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) Add(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.AddProduct(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	return s.repo.RemoveProduct(ctx, userID, productID)
}
