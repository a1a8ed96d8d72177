package cart

import (
	"math"

	"shoppingcart/internal/domain"
)

// CartItem is one line of a cart: a product and how many units of it.
// Quantity is always at least 1.
type CartItem struct {
	product  *domain.Product
	quantity int
}

func newCartItem(product *domain.Product, quantity int) *CartItem {
	return &CartItem{product: product, quantity: quantity}
}

// NewCartItem builds a standalone line, mostly for pricing services and tests.
// It panics when product is nil or quantity is not positive.
func NewCartItem(product *domain.Product, quantity int) *CartItem {
	if product == nil {
		panic(preconditionf("product is required"))
	}
	if quantity <= 0 {
		panic(preconditionf("quantity must be positive, got %d", quantity))
	}
	return newCartItem(product, quantity)
}

// Product returns the catalog product this line holds.
func (i *CartItem) Product() *domain.Product { return i.product }

// ProductID returns the ID of the line's product.
func (i *CartItem) ProductID() string { return i.product.ID }

// Quantity returns the number of units on the line.
func (i *CartItem) Quantity() int { return i.quantity }

// CanIncrease reports whether n more units fit on the line without overflow.
func (i *CartItem) CanIncrease(n int) bool {
	return n <= math.MaxInt-i.quantity
}

func (i *CartItem) increase(n int) {
	i.quantity += n
}
