package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
	"storefront-api/internal/pricing"
	"storefront-api/internal/ws"
)

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Replace(ctx context.Context, cart domain.Cart) (*domain.Cart, error)
	Delete(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type broadcaster interface {
	Publish(channel, typ string, data any)
}

// Service owns the per-user cart document. Every mutation follows the same
// shape: load, validate against live product state, replace the whole
// line-item list, broadcast the priced projection.
type Service struct {
	repo     cartRepo
	products productRepo
	hub      broadcaster
}

func New(repo cartRepo, products productRepo, hub broadcaster) *Service {
	return &Service{repo: repo, products: products, hub: hub}
}

// AddItem merges the quantity into an existing (product, variant) line or
// appends a new one. The merged quantity is validated against current
// inventory; a rejection leaves the cart untouched.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int, variant domain.Variant) (*domain.PricedCart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findLine(cart.Lines, productID, variant)
	merged := quantity
	if idx >= 0 {
		merged += cart.Lines[idx].Quantity
	}
	if merged > product.Inventory {
		return nil, &domain.InsufficientStockError{ProductID: productID, Requested: merged, Available: product.Inventory}
	}

	if idx >= 0 {
		cart.Lines[idx].Quantity = merged
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: productID,
			Quantity:  quantity,
			Size:      variant.Size,
			Color:     variant.Color,
		})
	}
	return s.replaceAndProject(ctx, *cart)
}

// UpdateQuantity sets the quantity of an existing line. Zero or below is
// equivalent to removal.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int, variant domain.Variant) (*domain.PricedCart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID, variant)
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Inventory {
		return nil, &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: product.Inventory}
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := findLine(cart.Lines, productID, variant)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	cart.Lines[idx].Quantity = quantity
	return s.replaceAndProject(ctx, *cart)
}

// RemoveItem drops the (product, variant) line if present. Removing a line
// that was never there changes nothing, so nothing is persisted or
// broadcast for it.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string, variant domain.Variant) (*domain.PricedCart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := cart.Lines[:0]
	removed := false
	for _, line := range cart.Lines {
		if line.ProductID == productID && line.Size == variant.Size && line.Color == variant.Color {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return s.project(ctx, *cart)
	}
	cart.Lines = kept
	return s.replaceAndProject(ctx, *cart)
}

// Get returns the read-time priced projection. Nothing persisted is
// trusted: prices are joined against live products on every call, so a
// price change between add and checkout changes the charged amount.
func (s *Service) Get(ctx context.Context, userID string) (*domain.PricedCart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, *cart)
}

// Clear deletes the cart document.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func (s *Service) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Cart{UserID: userID, UpdatedAt: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

func (s *Service) replaceAndProject(ctx context.Context, cart domain.Cart) (*domain.PricedCart, error) {
	stored, err := s.repo.Replace(ctx, cart)
	if err != nil {
		return nil, fmt.Errorf("replace cart: %w", err)
	}
	priced, err := s.project(ctx, *stored)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.Publish(ws.CartChannel(cart.UserID), "cart_updated", priced)
	}
	return priced, nil
}

func (s *Service) project(ctx context.Context, cart domain.Cart) (*domain.PricedCart, error) {
	priced := &domain.PricedCart{
		UserID: cart.UserID,
		Lines:  []domain.PricedLine{},
	}
	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			// Product vanished since it was added; drop the line from view.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", line.ProductID, err)
		}
		unit := product.EffectivePrice()
		lineSubtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		priced.Lines = append(priced.Lines, domain.PricedLine{
			ProductID: line.ProductID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
			UnitPrice: unit,
			Subtotal:  lineSubtotal,
		})
	}
	if len(priced.Lines) == 0 {
		// An empty cart owes nothing, shipping included.
		priced.Subtotal = decimal.Zero
		priced.Tax = decimal.Zero
		priced.Shipping = decimal.Zero
		priced.Total = decimal.Zero
		return priced, nil
	}
	totals := pricing.Compute(subtotal, decimal.Zero)
	priced.ItemCount = len(priced.Lines)
	priced.Subtotal = totals.Subtotal
	priced.Tax = totals.Tax
	priced.Shipping = totals.Shipping
	priced.Total = totals.Total
	return priced, nil
}

func findLine(lines []domain.CartLine, productID string, variant domain.Variant) int {
	for i, line := range lines {
		if line.ProductID == productID && line.Size == variant.Size && line.Color == variant.Color {
			return i
		}
	}
	return -1
}
