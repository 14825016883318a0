package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductInactive   ProductStatus = "inactive"
	ProductDraft      ProductStatus = "draft"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice,omitempty"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	SKU         string           `json:"sku"`
	Status      ProductStatus    `json:"status"`
	Inventory   int              `json:"inventoryQuantity"`
	Images      []string         `json:"images"`
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	Tags        []string         `json:"tags"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"reviewCount"`
	ViewCount   int              `json:"viewCount"`
	IsFeatured  bool             `json:"isFeatured"`
	IsTrending  bool             `json:"isTrending"`
	CreatedBy   string           `json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// EffectivePrice is the unit price charged for the product right now:
// the sale price when one is set, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
