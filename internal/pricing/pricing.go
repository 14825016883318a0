// Package pricing holds the order total rules shared by the cart read-time
// projection and checkout: flat 8% tax and a $9.99 shipping fee waived once
// the subtotal reaches $100.
package pricing

import "github.com/shopspring/decimal"

var (
	taxRate           = decimal.NewFromFloat(0.08)
	shippingFee       = decimal.NewFromFloat(9.99)
	freeShippingFloor = decimal.NewFromInt(100)
)

// Totals is the computed money breakdown for a cart or order.
// Total = Subtotal + Tax + Shipping - Discount always holds.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives tax, shipping and total from a subtotal and discount.
// Tax is rounded to cents before entering the total so the stored breakdown
// always sums exactly.
func Compute(subtotal, discount decimal.Decimal) Totals {
	tax := subtotal.Mul(taxRate).Round(2)
	shipping := decimal.Zero
	if subtotal.LessThan(freeShippingFloor) {
		shipping = shippingFee
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}
