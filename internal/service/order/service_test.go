package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type stubOrderRepo struct {
	created     []domain.Order
	createErrs  []error
	createCalls int
	order       *domain.Order
	getErr      error
	updated     *domain.Order
	updateErr   error
}

func (s *stubOrderRepo) CreateCheckout(_ context.Context, o domain.Order) (*domain.Order, error) {
	s.createCalls++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	s.created = append(s.created, o)
	out := o
	out.ID = "order-id"
	out.CreatedAt = time.Now().UTC()
	return &out, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, _ string) (*domain.Order, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := *s.order
	return &out, nil
}

func (s *stubOrderRepo) GetByNumber(_ context.Context, _ string) (*domain.Order, error) {
	return s.order, s.getErr
}

func (s *stubOrderRepo) List(_ context.Context, _ orderrepo.ListFilter) ([]domain.Order, int, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) ListAdmin(_ context.Context, _ orderrepo.AdminListFilter) ([]domain.Order, int, error) {
	return nil, 0, nil
}

func (s *stubOrderRepo) Update(_ context.Context, o domain.Order) (*domain.Order, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updated = &o
	return &o, nil
}

func (s *stubOrderRepo) Stats(_ context.Context) (*domain.OrderStats, error) {
	return &domain.OrderStats{}, nil
}

type stubCartRepo struct {
	cart *domain.Cart
	err  error
}

func (s *stubCartRepo) Get(_ context.Context, _ string) (*domain.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubHub struct {
	events []string
}

func (s *stubHub) Publish(channel, typ string, _ any) {
	s.events = append(s.events, channel+":"+typ)
}

type stubNotifier struct {
	types []string
}

func (s *stubNotifier) Notify(_ context.Context, _ string, typ, _, _ string) {
	s.types = append(s.types, typ)
}

func money(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func checkoutFixture() (*stubOrderRepo, *stubCartRepo, *stubProductRepo, *stubHub, *Service) {
	orders := &stubOrderRepo{}
	carts := &stubCartRepo{cart: &domain.Cart{
		UserID: "u1",
		Lines: []domain.CartLine{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Tee", Price: money("10"), Inventory: 5},
		"p2": {ID: "p2", Name: "Jacket", Price: money("50"), Inventory: 3},
	}}
	hub := &stubHub{}
	svc := New(orders, carts, products, hub, nil, nil)
	return orders, carts, products, hub, svc
}

func TestCheckoutComputesTotals(t *testing.T) {
	orders, _, _, hub, svc := checkoutFixture()

	created, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := created.Subtotal.String(), "70"; got != want {
		t.Fatalf("subtotal = %s, want %s", got, want)
	}
	if got, want := created.Tax.String(), "5.6"; got != want {
		t.Fatalf("tax = %s, want %s", got, want)
	}
	if got, want := created.Shipping.String(), "9.99"; got != want {
		t.Fatalf("shipping = %s, want %s", got, want)
	}
	if got, want := created.Total.String(), "85.59"; got != want {
		t.Fatalf("total = %s, want %s", got, want)
	}
	want := created.Subtotal.Add(created.Tax).Add(created.Shipping).Sub(created.Discount)
	if !created.Total.Equal(want) {
		t.Fatalf("total invariant broken: %s != %s", created.Total, want)
	}
	if created.Status != domain.OrderPending || created.PaymentStatus != domain.PaymentPending {
		t.Fatalf("unexpected initial statuses: %s/%s", created.Status, created.PaymentStatus)
	}
	if len(orders.created) != 1 {
		t.Fatalf("created %d orders, want 1", len(orders.created))
	}
	if len(hub.events) != 2 || hub.events[0] != "orders:order_created" || hub.events[1] != "admin-dashboard:order_created" {
		t.Fatalf("unexpected broadcasts: %v", hub.events)
	}
}

func TestCheckoutSnapshotsSalePrice(t *testing.T) {
	orders, carts, products, _, svc := checkoutFixture()
	carts.cart.Lines = []domain.CartLine{{ProductID: "p1", Quantity: 1}}
	sale := money("7.50")
	products.products["p1"].SalePrice = &sale

	created, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := created.Lines[0].UnitPrice.String(), "7.5"; got != want {
		t.Fatalf("unit price = %s, want %s", got, want)
	}
	if len(orders.created) != 1 {
		t.Fatalf("created %d orders, want 1", len(orders.created))
	}
}

func TestCheckoutOrderNumberFormat(t *testing.T) {
	_, _, _, _, svc := checkoutFixture()
	created, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	number := created.OrderNumber
	if len(number) != len("IWX20060102ABCDEF") {
		t.Fatalf("order number %q has unexpected length", number)
	}
	if !strings.HasPrefix(number, "IWX") {
		t.Fatalf("order number %q missing prefix", number)
	}
	for _, c := range number[len(number)-6:] {
		if !strings.ContainsRune(orderNumberCharset, c) {
			t.Fatalf("order number suffix has invalid char %q", c)
		}
	}
}

func TestCheckoutRetriesOrderNumberCollision(t *testing.T) {
	orders, _, _, _, svc := checkoutFixture()
	orders.createErrs = []error{domain.ErrAlreadyExists, domain.ErrAlreadyExists}

	created, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.createCalls != 3 {
		t.Fatalf("create calls = %d, want 3", orders.createCalls)
	}
	if created == nil {
		t.Fatalf("expected order after retries")
	}
}

func TestCheckoutInsufficientStockRejected(t *testing.T) {
	orders, carts, _, hub, svc := checkoutFixture()
	carts.cart.Lines = []domain.CartLine{{ProductID: "p2", Quantity: 4}}

	_, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 4 || stockErr.Available != 3 {
		t.Fatalf("requested=%d available=%d, want 4/3", stockErr.Requested, stockErr.Available)
	}
	if len(orders.created) != 0 {
		t.Fatalf("order persisted despite rejection")
	}
	if len(hub.events) != 0 {
		t.Fatalf("broadcast fired despite rejection")
	}
}

func TestCheckoutGuardFailureInTransactionPropagates(t *testing.T) {
	// A concurrent order can consume stock between the early check and the
	// transaction; the repository's guard error must come straight through.
	orders, _, _, _, svc := checkoutFixture()
	orders.createErrs = []error{&domain.InsufficientStockError{ProductID: "p1", Requested: 2, Available: 1}}

	_, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if orders.createCalls != 1 {
		t.Fatalf("create calls = %d, want 1 (no retry on stock failure)", orders.createCalls)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	_, carts, _, _, svc := checkoutFixture()
	carts.err = domain.ErrNotFound

	_, err := svc.Checkout(context.Background(), CheckoutInput{UserID: "u1", PaymentMethod: "card"})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func statusPtr(v domain.OrderStatus) *domain.OrderStatus { return &v }

func TestUpdateStatusValidTransition(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "o1", Status: domain.OrderPending, PaymentStatus: domain.PaymentPending}}
	svc := New(repo, nil, nil, nil, nil, nil)

	updated, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{Status: statusPtr(domain.OrderConfirmed)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.OrderConfirmed {
		t.Fatalf("status = %s, want confirmed", updated.Status)
	}
}

func TestUpdateStatusRejectsSkippingAhead(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "o1", Status: domain.OrderPending, PaymentStatus: domain.PaymentPending}}
	svc := New(repo, nil, nil, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{Status: statusPtr(domain.OrderDelivered)})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if repo.updated != nil {
		t.Fatalf("order persisted despite invalid transition")
	}
}

func TestUpdateStatusStampsShippedOnce(t *testing.T) {
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &stubOrderRepo{order: &domain.Order{ID: "o1", Status: domain.OrderProcessing, PaymentStatus: domain.PaymentPaid}}
	svc := New(repo, nil, nil, nil, nil, nil)
	svc.now = func() time.Time { return first }

	updated, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{Status: statusPtr(domain.OrderShipped)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ShippedAt == nil || !updated.ShippedAt.Equal(first) {
		t.Fatalf("shipped_at = %v, want %v", updated.ShippedAt, first)
	}

	// Re-applying shipped later must not move the timestamp.
	repo.order = updated
	svc.now = func() time.Time { return first.Add(48 * time.Hour) }
	again, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{Status: statusPtr(domain.OrderShipped)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.ShippedAt.Equal(first) {
		t.Fatalf("shipped_at moved to %v on re-application", again.ShippedAt)
	}
}

func TestUpdateStatusNotifiesOnShipped(t *testing.T) {
	repo := &stubOrderRepo{order: &domain.Order{ID: "o1", UserID: "u1", OrderNumber: "IWX1", Status: domain.OrderConfirmed, PaymentStatus: domain.PaymentPaid}}
	notify := &stubNotifier{}
	svc := New(repo, nil, nil, nil, notify, nil)

	if _, err := svc.UpdateStatus(context.Background(), "o1", UpdateInput{Status: statusPtr(domain.OrderShipped)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notify.types) != 1 || notify.types[0] != "order_shipped" {
		t.Fatalf("notifications = %v, want [order_shipped]", notify.types)
	}
}

func TestOrderTransitionTable(t *testing.T) {
	cases := []struct {
		from, to domain.OrderStatus
		ok       bool
	}{
		{domain.OrderPending, domain.OrderConfirmed, true},
		{domain.OrderConfirmed, domain.OrderProcessing, true},
		{domain.OrderProcessing, domain.OrderShipped, true},
		{domain.OrderShipped, domain.OrderDelivered, true},
		{domain.OrderPending, domain.OrderCancelled, true},
		{domain.OrderDelivered, domain.OrderRefunded, true},
		{domain.OrderPending, domain.OrderDelivered, false},
		{domain.OrderDelivered, domain.OrderPending, false},
		{domain.OrderCancelled, domain.OrderShipped, false},
		{domain.OrderShipped, domain.OrderShipped, true},
	}
	for _, tc := range cases {
		if got := domain.CanTransitionOrder(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransitionOrder(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
