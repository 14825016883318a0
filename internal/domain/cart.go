package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant distinguishes otherwise-identical cart lines by size and color.
type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// CartLine is what the cart persists: a product reference plus quantity.
// Prices are never stored on the cart; they are joined in at read time.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type Cart struct {
	UserID    string     `json:"userId"`
	Lines     []CartLine `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PricedLine is a cart line joined against the live product record.
type PricedLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"productName"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	UnitPrice decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PricedCart is the read-time projection of a cart: lines joined against
// current products with subtotal, tax, shipping and total computed fresh.
type PricedCart struct {
	UserID    string          `json:"userId"`
	Lines     []PricedLine    `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"taxAmount"`
	Shipping  decimal.Decimal `json:"shippingCost"`
	Total     decimal.Decimal `json:"totalAmount"`
}
