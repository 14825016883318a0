package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type paymentRepo interface {
	Create(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error)
	GetByID(ctx context.Context, userID, id string) (*domain.PaymentMethod, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	Update(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error)
	Remove(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) (*domain.PaymentMethod, error)
}

type orderLister interface {
	List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error)
}

// Service manages stored payment methods. No charge is ever made here; the
// stored records are display tokens (last four digits, not PANs).
type Service struct {
	repo   paymentRepo
	orders orderLister
}

func New(repo paymentRepo, orders orderLister) *Service {
	return &Service{repo: repo, orders: orders}
}

func (s *Service) Create(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*domain.PaymentMethod, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns the user's active methods together with the default id.
func (s *Service) List(ctx context.Context, userID string) ([]domain.PaymentMethod, string, error) {
	methods, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	defaultID := ""
	for _, m := range methods {
		if m.IsDefault {
			defaultID = m.ID
			break
		}
	}
	return methods, defaultID, nil
}

// Update patches nickname, default flag, and details. The method's type is
// fixed at creation; changing it would orphan the stored details.
func (s *Service) Update(ctx context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	current, err := s.repo.GetByID(ctx, m.UserID, m.ID)
	if err != nil {
		return nil, err
	}
	m.Type = current.Type
	if m.Card == nil && m.PayPal == nil && m.Bank == nil {
		m.Card, m.PayPal, m.Bank = current.Card, current.PayPal, current.Bank
	}
	if err := validate(m); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	return s.repo.Remove(ctx, userID, id)
}

func (s *Service) SetDefault(ctx context.Context, userID, id string) (*domain.PaymentMethod, error) {
	return s.repo.SetDefault(ctx, userID, id)
}

// BillingEntry is one line of a user's billing history, projected from
// their orders.
type BillingEntry struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	Date          time.Time            `json:"date"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod string               `json:"paymentMethod"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
}

// BillingHistory lists what the user has been charged, newest first. Orders
// are the charge records, so this is a read-only projection over them.
func (s *Service) BillingHistory(ctx context.Context, userID string, offset, limit int) ([]BillingEntry, int, error) {
	orders, total, err := s.orders.List(ctx, orderrepo.ListFilter{UserID: userID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, err
	}
	entries := make([]BillingEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, BillingEntry{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			Date:          o.CreatedAt,
			Amount:        o.Total,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: o.PaymentStatus,
		})
	}
	return entries, total, nil
}

func validate(m domain.PaymentMethod) error {
	switch m.Type {
	case domain.PaymentTypeCreditCard, domain.PaymentTypeDebitCard:
		if m.Card == nil {
			return fmt.Errorf("%w: card details required for %s", domain.ErrInvalidInput, m.Type)
		}
		return validateCard(*m.Card)
	case domain.PaymentTypePayPal:
		if m.PayPal == nil || !strings.Contains(m.PayPal.Email, "@") {
			return fmt.Errorf("%w: paypal email required", domain.ErrInvalidInput)
		}
	case domain.PaymentTypeBankTransfer:
		if m.Bank == nil {
			return fmt.Errorf("%w: bank details required", domain.ErrInvalidInput)
		}
		if strings.TrimSpace(m.Bank.AccountHolder) == "" || strings.TrimSpace(m.Bank.AccountNumber) == "" {
			return fmt.Errorf("%w: bank account holder and number required", domain.ErrInvalidInput)
		}
	case domain.PaymentTypeApplePay, domain.PaymentTypeGooglePay:
		// Wallet types carry no stored details; the wallet owns them.
	default:
		return fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, m.Type)
	}
	return nil
}

func validateCard(c domain.CardDetails) error {
	if len(c.LastFour) != 4 {
		return fmt.Errorf("%w: last four digits required", domain.ErrInvalidInput)
	}
	for _, r := range c.LastFour {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: last four must be digits", domain.ErrInvalidInput)
		}
	}
	if c.ExpiryMonth < 1 || c.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiry month out of range", domain.ErrInvalidInput)
	}
	if c.ExpiryYear < 2000 {
		return fmt.Errorf("%w: expiry year out of range", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(c.CardholderName) == "" {
		return fmt.Errorf("%w: cardholder name required", domain.ErrInvalidInput)
	}
	return nil
}
