package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type stubPaymentRepo struct {
	methods []domain.PaymentMethod
	created *domain.PaymentMethod
	removed string
}

func (s *stubPaymentRepo) Create(_ context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	m.ID = "pm-new"
	m.Status = domain.PaymentMethodActive
	s.created = &m
	return &m, nil
}

func (s *stubPaymentRepo) GetByID(_ context.Context, userID, id string) (*domain.PaymentMethod, error) {
	for _, m := range s.methods {
		if m.ID == id && m.UserID == userID && m.Status == domain.PaymentMethodActive {
			out := m
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubPaymentRepo) ListByUser(_ context.Context, userID string) ([]domain.PaymentMethod, error) {
	var out []domain.PaymentMethod
	for _, m := range s.methods {
		if m.UserID == userID && m.Status == domain.PaymentMethodActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubPaymentRepo) Update(_ context.Context, m domain.PaymentMethod) (*domain.PaymentMethod, error) {
	return &m, nil
}

func (s *stubPaymentRepo) Remove(_ context.Context, userID, id string) error {
	s.removed = id
	return nil
}

func (s *stubPaymentRepo) SetDefault(_ context.Context, userID, id string) (*domain.PaymentMethod, error) {
	return s.GetByID(context.Background(), userID, id)
}

type stubOrderLister struct {
	orders []domain.Order
}

func (s *stubOrderLister) List(_ context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == filter.UserID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func validCard() domain.PaymentMethod {
	return domain.PaymentMethod{
		UserID: "u1",
		Type:   domain.PaymentTypeCreditCard,
		Card: &domain.CardDetails{
			Brand:          "visa",
			LastFour:       "4242",
			ExpiryMonth:    12,
			ExpiryYear:     2028,
			CardholderName: "Ada Lovelace",
		},
	}
}

func TestCreateCard(t *testing.T) {
	repo := &stubPaymentRepo{}
	svc := New(repo, &stubOrderLister{})

	created, err := svc.Create(context.Background(), validCard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != domain.PaymentMethodActive {
		t.Fatalf("status = %s, want active", created.Status)
	}
}

func TestCreateRejectsMismatchedDetails(t *testing.T) {
	repo := &stubPaymentRepo{}
	svc := New(repo, &stubOrderLister{})

	cases := []struct {
		name   string
		mutate func(*domain.PaymentMethod)
	}{
		{"card without details", func(m *domain.PaymentMethod) { m.Card = nil }},
		{"bad last four", func(m *domain.PaymentMethod) { m.Card.LastFour = "42" }},
		{"non-digit last four", func(m *domain.PaymentMethod) { m.Card.LastFour = "42ab" }},
		{"month out of range", func(m *domain.PaymentMethod) { m.Card.ExpiryMonth = 13 }},
		{"no cardholder", func(m *domain.PaymentMethod) { m.Card.CardholderName = " " }},
		{"unknown type", func(m *domain.PaymentMethod) { m.Type = "barter" }},
		{"paypal without email", func(m *domain.PaymentMethod) {
			m.Type = domain.PaymentTypePayPal
			m.PayPal = &domain.PayPalDetails{Email: "not-an-email"}
		}},
		{"bank without account", func(m *domain.PaymentMethod) {
			m.Type = domain.PaymentTypeBankTransfer
			m.Bank = &domain.BankDetails{BankName: "First Example"}
		}},
	}
	for _, tc := range cases {
		m := validCard()
		tc.mutate(&m)
		if _, err := svc.Create(context.Background(), m); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
	if repo.created != nil {
		t.Fatalf("invalid method was persisted")
	}
}

func TestUpdateKeepsTypeAndDetails(t *testing.T) {
	stored := validCard()
	stored.ID = "pm1"
	stored.Status = domain.PaymentMethodActive
	repo := &stubPaymentRepo{methods: []domain.PaymentMethod{stored}}
	svc := New(repo, &stubOrderLister{})

	updated, err := svc.Update(context.Background(), domain.PaymentMethod{
		ID:       "pm1",
		UserID:   "u1",
		Type:     domain.PaymentTypePayPal, // ignored; type is fixed at creation
		Nickname: "main card",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Type != domain.PaymentTypeCreditCard {
		t.Fatalf("type = %s, want credit_card", updated.Type)
	}
	if updated.Card == nil || updated.Card.LastFour != "4242" {
		t.Fatalf("stored card details were dropped: %+v", updated.Card)
	}
	if updated.Nickname != "main card" {
		t.Fatalf("nickname = %s", updated.Nickname)
	}
}

func TestListReportsDefaultID(t *testing.T) {
	m1 := validCard()
	m1.ID = "pm1"
	m1.Status = domain.PaymentMethodActive
	m2 := validCard()
	m2.ID = "pm2"
	m2.Status = domain.PaymentMethodActive
	m2.IsDefault = true
	repo := &stubPaymentRepo{methods: []domain.PaymentMethod{m1, m2}}
	svc := New(repo, &stubOrderLister{})

	methods, defaultID, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(methods) != 2 || defaultID != "pm2" {
		t.Fatalf("methods=%d default=%s, want 2/pm2", len(methods), defaultID)
	}
}

func TestBillingHistoryProjectsOrders(t *testing.T) {
	total, _ := decimal.NewFromString("85.59")
	orders := &stubOrderLister{orders: []domain.Order{{
		ID:            "o1",
		OrderNumber:   "IWX20260828ABC123",
		UserID:        "u1",
		PaymentMethod: "card",
		PaymentStatus: domain.PaymentPaid,
		Total:         total,
		CreatedAt:     time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}}}
	svc := New(&stubPaymentRepo{}, orders)

	entries, n, err := svc.BillingHistory(context.Background(), "u1", 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.OrderNumber != "IWX20260828ABC123" || e.Amount.String() != "85.59" || e.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("unexpected entry: %+v", e)
	}
}
