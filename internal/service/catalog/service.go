package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront-api/internal/domain"
	productrepo "storefront-api/internal/repository/product"
	"storefront-api/internal/ws"
)

type productRepo interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, int, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	ListTrending(ctx context.Context, limit int) ([]domain.Product, error)
	ListNewArrivals(ctx context.Context, limit int) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) error
	AdjustInventory(ctx context.Context, id string, delta int) (*domain.Product, error)
}

type broadcaster interface {
	Publish(channel, typ string, data any)
}

type Service struct {
	repo   productRepo
	hub    broadcaster
	logger *log.Logger
}

func New(repo productRepo, hub broadcaster, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, hub: hub, logger: logger}
}

func (s *Service) Create(ctx context.Context, p domain.Product, createdBy string) (*domain.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.Status == "" {
		p.Status = domain.ProductActive
	}
	p.CreatedBy = createdBy
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.publish("product_created", created)
	return created, nil
}

// Get loads a product and bumps its view counter. The counter write is
// best-effort; a failed bump never fails the read.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.logger.Printf("catalog service: bump view count id=%s error=%v", id, err)
	}
	return p, nil
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.repo.GetBySKU(ctx, sku)
}

func (s *Service) List(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.ListFeatured(ctx, limit)
}

func (s *Service) Trending(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.ListTrending(ctx, limit)
}

func (s *Service) NewArrivals(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.repo.ListNewArrivals(ctx, limit)
}

func (s *Service) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.publish("product_updated", updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("product_deleted", map[string]string{"id": id})
	return nil
}

// AdjustInventory applies an admin stock correction. The repository guard
// keeps the counter non-negative.
func (s *Service) AdjustInventory(ctx context.Context, id string, delta int) (*domain.Product, error) {
	updated, err := s.repo.AdjustInventory(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.publish("product_updated", updated)
	return updated, nil
}

func (s *Service) publish(typ string, data any) {
	if s.hub != nil {
		s.hub.Publish(ws.ChannelProducts, typ, data)
	}
}

func validate(p domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.SKU) == "" {
		return fmt.Errorf("%w: sku required", domain.ErrInvalidInput)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}
	if p.SalePrice != nil && !p.SalePrice.IsPositive() {
		return fmt.Errorf("%w: sale price must be positive", domain.ErrInvalidInput)
	}
	if p.Inventory < 0 {
		return fmt.Errorf("%w: inventory must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
