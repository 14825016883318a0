package order

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	"storefront-api/internal/pricing"
	orderrepo "storefront-api/internal/repository/order"
	"storefront-api/internal/ws"
)

// ErrEmptyCart rejects a checkout for a user with no cart lines.
var ErrEmptyCart = errors.New("cart is empty")

type orderRepo interface {
	CreateCheckout(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error)
	ListAdmin(ctx context.Context, filter orderrepo.AdminListFilter) ([]domain.Order, int, error)
	Update(ctx context.Context, o domain.Order) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type broadcaster interface {
	Publish(channel, typ string, data any)
}

type notifier interface {
	Notify(ctx context.Context, userID, typ, title, message string)
}

type Service struct {
	orders   orderRepo
	carts    cartRepo
	products productRepo
	hub      broadcaster
	notify   notifier
	logger   *log.Logger
	now      func() time.Time
}

func New(orders orderRepo, carts cartRepo, products productRepo, hub broadcaster, notify notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
		hub:      hub,
		notify:   notify,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckoutInput carries everything checkout needs besides the cart itself.
type CheckoutInput struct {
	UserID          string
	ShippingAddress domain.OrderAddress
	BillingAddress  domain.OrderAddress
	ShippingMethod  domain.ShippingMethod
	PaymentMethod   string
}

// Checkout turns the user's cart into an immutable order. Price snapshots
// and totals are computed here; the order insert, the guarded inventory
// decrements and the cart deletion happen in one repository transaction, so
// a failure at any step leaves inventory and cart untouched.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	if in.ShippingMethod == "" {
		in.ShippingMethod = domain.ShippingStandard
	}
	if !validShippingMethod(in.ShippingMethod) {
		return nil, fmt.Errorf("%w: unknown shipping method %q", domain.ErrInvalidInput, in.ShippingMethod)
	}
	if in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method required", domain.ErrInvalidInput)
	}

	cart, err := s.carts.Get(ctx, in.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]domain.OrderLine, 0, len(cart.Lines))
	subtotal := decimal.Zero
	for _, item := range cart.Lines {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		// Early rejection with available-vs-requested detail. The
		// transaction's conditional decrement is still the authority under
		// concurrency.
		if item.Quantity > product.Inventory {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID,
				Requested: item.Quantity,
				Available: product.Inventory,
			}
		}
		unit := product.EffectivePrice()
		lineSubtotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		lines = append(lines, domain.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			Subtotal:    lineSubtotal,
			Size:        item.Size,
			Color:       item.Color,
		})
	}

	totals := pricing.Compute(subtotal, decimal.Zero)
	order := domain.Order{
		UserID:          in.UserID,
		Lines:           lines,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		ShippingMethod:  in.ShippingMethod,
		PaymentMethod:   in.PaymentMethod,
		Status:          domain.OrderPending,
		PaymentStatus:   domain.PaymentPending,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
	}

	// The order number's uniqueness is enforced by the database, not by the
	// generator; collide and retry with a fresh suffix.
	var created *domain.Order
	for attempt := 0; attempt < 5; attempt++ {
		order.OrderNumber, err = s.generateOrderNumber()
		if err != nil {
			return nil, err
		}
		created, err = s.orders.CreateCheckout(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return nil, err
	}
	if created == nil {
		return nil, errors.New("order number collision")
	}

	s.logger.Printf("order service: checkout user_id=%s number=%s total=%s", created.UserID, created.OrderNumber, created.Total)
	if s.hub != nil {
		s.hub.Publish(ws.ChannelOrders, "order_created", created)
		s.hub.Publish(ws.ChannelAdminDashboard, "order_created", created)
	}
	return created, nil
}

// UpdateInput patches the mutable order fields. Nil means leave unchanged.
type UpdateInput struct {
	Status         *domain.OrderStatus
	PaymentStatus  *domain.PaymentStatus
	TrackingNumber *string
	Notes          *string
}

// UpdateStatus applies an admin/editor patch under the transition table.
// Moving to shipped or delivered stamps the matching timestamp the first
// time only; re-applying the same status never overwrites it.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in UpdateInput) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != order.Status {
		if !validOrderStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, *in.Status)
		}
		if !domain.CanTransitionOrder(order.Status, *in.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, *in.Status)
		}
		order.Status = *in.Status
		now := s.now()
		switch *in.Status {
		case domain.OrderShipped:
			if order.ShippedAt == nil {
				order.ShippedAt = &now
			}
		case domain.OrderDelivered:
			if order.DeliveredAt == nil {
				order.DeliveredAt = &now
			}
		}
	}
	if in.PaymentStatus != nil {
		if !validPaymentStatus(*in.PaymentStatus) {
			return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidInput, *in.PaymentStatus)
		}
		order.PaymentStatus = *in.PaymentStatus
	}
	if in.TrackingNumber != nil {
		order.TrackingNumber = in.TrackingNumber
	}
	if in.Notes != nil {
		order.Notes = in.Notes
	}

	updated, err := s.orders.Update(ctx, *order)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(ws.ChannelOrders, "order_updated", updated)
		s.hub.Publish(ws.ChannelAdminDashboard, "order_updated", updated)
	}
	if s.notify != nil && in.Status != nil {
		switch *in.Status {
		case domain.OrderShipped:
			s.notify.Notify(ctx, updated.UserID, "order_shipped", "Your order has shipped",
				fmt.Sprintf("Order %s is on its way.", updated.OrderNumber))
		case domain.OrderDelivered:
			s.notify.Notify(ctx, updated.UserID, "order_delivered", "Your order was delivered",
				fmt.Sprintf("Order %s has been delivered.", updated.OrderNumber))
		}
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

func (s *Service) List(ctx context.Context, filter orderrepo.ListFilter) ([]domain.Order, int, error) {
	return s.orders.List(ctx, filter)
}

func (s *Service) ListAdmin(ctx context.Context, filter orderrepo.AdminListFilter) ([]domain.Order, int, error) {
	return s.orders.ListAdmin(ctx, filter)
}

func (s *Service) Stats(ctx context.Context) (*domain.OrderStats, error) {
	return s.orders.Stats(ctx)
}

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateOrderNumber builds the human-readable order number: a fixed
// prefix, the UTC date, and a six character random suffix.
func (s *Service) generateOrderNumber() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = orderNumberCharset[int(b[i])%len(orderNumberCharset)]
	}
	return "IWX" + s.now().Format("20060102") + string(b), nil
}

func validOrderStatus(v domain.OrderStatus) bool {
	switch v {
	case domain.OrderPending, domain.OrderConfirmed, domain.OrderProcessing,
		domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled, domain.OrderRefunded:
		return true
	}
	return false
}

func validPaymentStatus(v domain.PaymentStatus) bool {
	switch v {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed, domain.PaymentRefunded:
		return true
	}
	return false
}

func validShippingMethod(v domain.ShippingMethod) bool {
	switch v {
	case domain.ShippingStandard, domain.ShippingExpress, domain.ShippingOvernight:
		return true
	}
	return false
}
