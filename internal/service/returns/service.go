package returns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/domain"
	returnsrepo "storefront-api/internal/repository/returns"
)

var (
	// ErrNotEligible rejects a return outside the policy: the order must be
	// delivered and within the eligibility window.
	ErrNotEligible = errors.New("order not eligible for return")
)

type returnRepo interface {
	Create(ctx context.Context, req domain.ReturnRequest) (*domain.ReturnRequest, error)
	GetByID(ctx context.Context, id string) (*domain.ReturnRequest, error)
	List(ctx context.Context, filter returnsrepo.ListFilter) ([]domain.ReturnRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus) (*domain.ReturnRequest, error)
}

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type Service struct {
	repo   returnRepo
	orders orderRepo
	now    func() time.Time
}

func New(repo returnRepo, orders orderRepo) *Service {
	return &Service{repo: repo, orders: orders, now: func() time.Time { return time.Now().UTC() }}
}

// Create opens a return request for specific lines of a delivered order.
func (s *Service) Create(ctx context.Context, userID, orderID string, lines []domain.ReturnLine, reason string) (*domain.ReturnRequest, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: items required", domain.ErrInvalidInput)
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if order.Status != domain.OrderDelivered || order.DeliveredAt == nil {
		return nil, ErrNotEligible
	}
	if s.now().Sub(*order.DeliveredAt) > domain.ReturnEligibilityWindow {
		return nil, ErrNotEligible
	}

	// Quantities are compared per product, not per line: the request may
	// split one product across lines, and the order may hold the same
	// product in several variant lines.
	requested := map[string]int{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		requested[line.ProductID] += line.Quantity
	}
	ordered := map[string]int{}
	for _, ol := range order.Lines {
		ordered[ol.ProductID] += ol.Quantity
	}
	for productID, qty := range requested {
		if ordered[productID] == 0 {
			return nil, fmt.Errorf("%w: product %s is not part of order %s", domain.ErrInvalidInput, productID, orderID)
		}
		if qty > ordered[productID] {
			return nil, fmt.Errorf("%w: cannot return %d of product %s, ordered %d", domain.ErrInvalidInput, qty, productID, ordered[productID])
		}
	}

	return s.repo.Create(ctx, domain.ReturnRequest{
		OrderID: orderID,
		UserID:  userID,
		Lines:   lines,
		Reason:  reason,
		Status:  domain.ReturnRequested,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ReturnRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter returnsrepo.ListFilter) ([]domain.ReturnRequest, int, error) {
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves a return through its lifecycle under the transition
// table. Whether a refund also restores inventory is a product decision
// that is deliberately not taken here.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus) (*domain.ReturnRequest, error) {
	if !validReturnStatus(status) {
		return nil, fmt.Errorf("%w: unknown return status %q", domain.ErrInvalidInput, status)
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !domain.CanTransitionReturn(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func validReturnStatus(v domain.ReturnStatus) bool {
	switch v {
	case domain.ReturnRequested, domain.ReturnApproved, domain.ReturnRejected,
		domain.ReturnReceived, domain.ReturnRefunded, domain.ReturnCancelled:
		return true
	}
	return false
}
