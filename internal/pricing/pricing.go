// Package pricing provides PricingService implementations for the cart.
package pricing

import (
	"github.com/shopspring/decimal"

	"shoppingcart/internal/cart"
)

const fractionDigits = 2

// ListPrice charges each product's catalog price: PriceCents × quantity,
// reported in major currency units.
type ListPrice struct{}

// NewListPrice returns the catalog-price pricing service.
func NewListPrice() ListPrice {
	return ListPrice{}
}

// CalculateItemPrice returns the line total in major units.
func (ListPrice) CalculateItemPrice(item *cart.CartItem) float64 {
	unit := decimal.New(item.Product().PriceCents, -fractionDigits)
	return LinePrice(unit, item.Quantity())
}

// Flat charges the same unit price for every product.
type Flat struct {
	unit decimal.Decimal
}

// NewFlat charges unit for every product.
func NewFlat(unit float64) Flat {
	return Flat{unit: decimal.NewFromFloat(unit)}
}

// CalculateItemPrice returns unit × quantity, rounded to cents.
func (f Flat) CalculateItemPrice(item *cart.CartItem) float64 {
	return LinePrice(f.unit, item.Quantity())
}

// LinePrice multiplies unit by quantity and rounds half-even to cents.
func LinePrice(unit decimal.Decimal, quantity int) float64 {
	total := unit.Mul(decimal.NewFromInt(int64(quantity))).RoundBank(fractionDigits)
	f, _ := total.Float64()
	return f
}

// Cents converts a major-unit amount to minor units, rounding half-even.
func Cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(fractionDigits).RoundBank(0).IntPart()
}
