// Package cart holds the shopping cart: a set of product lines with one line
// per distinct product, priced through an injected PricingService.
//
// A ShoppingCart is not safe for concurrent use. Callers that share a cart
// between goroutines must serialise access themselves.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"shoppingcart/internal/domain"
)

// ProductCatalog resolves product IDs. FindByID returns an error matching
// domain.ErrNotFound or domain.ErrProductNotFound when the ID is unknown.
type ProductCatalog interface {
	FindByID(ctx context.Context, productID string) (*domain.Product, error)
}

// PricingService computes the price contribution of a single cart line.
type PricingService interface {
	CalculateItemPrice(item *CartItem) float64
}

// PricingFunc adapts an ordinary function to PricingService.
type PricingFunc func(item *CartItem) float64

func (f PricingFunc) CalculateItemPrice(item *CartItem) float64 {
	return f(item)
}

// ShoppingCart keeps insertion-ordered lines plus an index by product ID.
type ShoppingCart struct {
	items   []*CartItem
	index   map[string]*CartItem
	pricing PricingService
	catalog ProductCatalog
}

// New returns an empty cart. Both collaborators are required; passing nil panics.
func New(pricing PricingService, catalog ProductCatalog) *ShoppingCart {
	if pricing == nil {
		panic(preconditionf("pricing service is required"))
	}
	if catalog == nil {
		panic(preconditionf("product catalog is required"))
	}
	c := &ShoppingCart{
		index:   make(map[string]*CartItem),
		pricing: pricing,
		catalog: catalog,
	}
	c.checkInvariants()
	return c
}

// AddItem resolves productID and adds quantity units of it. A repeat add grows
// the existing line in place. quantity must be positive and must not overflow
// the existing line; anything else panics.
// Unknown products yield an error wrapping domain.ErrProductNotFound and leave
// the cart untouched.
func (c *ShoppingCart) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		panic(preconditionf("quantity must be positive, got %d", quantity))
	}

	product, err := c.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrProductNotFound) {
			return fmt.Errorf("product ID %q: %w", productID, domain.ErrProductNotFound)
		}
		return fmt.Errorf("find product %q: %w", productID, err)
	}
	if product == nil {
		return fmt.Errorf("product ID %q: %w", productID, domain.ErrProductNotFound)
	}

	if item, ok := c.index[product.ID]; ok {
		if !item.CanIncrease(quantity) {
			panic(preconditionf("quantity %d overflows line %s holding %d", quantity, product.ID, item.quantity))
		}
		item.increase(quantity)
	} else {
		item := newCartItem(product, quantity)
		c.items = append(c.items, item)
		c.index[product.ID] = item
	}

	c.checkInvariants()
	return nil
}

// RemoveItem drops the whole line for productID regardless of its quantity.
// An empty productID panics. Removing a product that is not in the cart
// returns an error wrapping domain.ErrInvalidOperation.
func (c *ShoppingCart) RemoveItem(productID string) error {
	if productID == "" {
		panic(preconditionf("product ID cannot be empty"))
	}

	if _, ok := c.index[productID]; !ok {
		return fmt.Errorf("cannot remove item: product ID %q not found in cart: %w", productID, domain.ErrInvalidOperation)
	}

	for i, item := range c.items {
		if item.ProductID() == productID {
			c.items = slices.Delete(c.items, i, i+1)
			break
		}
	}
	delete(c.index, productID)

	c.checkInvariants()
	return nil
}

// TotalPrice sums the pricing service's price for every line. An empty cart totals 0.
func (c *ShoppingCart) TotalPrice() float64 {
	total := 0.0
	for _, item := range c.items {
		total += c.pricing.CalculateItemPrice(item)
	}
	return total
}

// ItemCount returns the number of distinct lines, not the sum of quantities.
func (c *ShoppingCart) ItemCount() int {
	return len(c.items)
}

// TotalQuantity returns the sum of quantities across all lines.
func (c *ShoppingCart) TotalQuantity() int {
	n := 0
	for _, item := range c.items {
		n += item.quantity
	}
	return n
}

// Clear removes every line.
func (c *ShoppingCart) Clear() {
	c.items = nil
	c.index = make(map[string]*CartItem)
	c.checkInvariants()
}

// Items returns the lines in insertion order. The slice is a copy; the items are not.
func (c *ShoppingCart) Items() []*CartItem {
	out := make([]*CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line holding productID, if any.
func (c *ShoppingCart) Item(productID string) (*CartItem, bool) {
	item, ok := c.index[productID]
	return item, ok
}

func (c *ShoppingCart) checkInvariants() {
	if c.pricing == nil || c.catalog == nil || c.index == nil {
		panic(invariantf("collaborators and index cannot be nil"))
	}
	if len(c.index) != len(c.items) {
		panic(invariantf("index holds %d products but cart has %d items", len(c.index), len(c.items)))
	}
	seen := make(map[string]struct{}, len(c.items))
	for _, item := range c.items {
		if item == nil || item.product == nil {
			panic(invariantf("cart contains a nil item"))
		}
		id := item.product.ID
		if _, dup := seen[id]; dup {
			panic(invariantf("duplicate product found in cart: %s", id))
		}
		seen[id] = struct{}{}
		if c.index[id] != item {
			panic(invariantf("index entry for %s does not match item", id))
		}
		if item.quantity < 1 {
			panic(invariantf("item %s has quantity %d", id, item.quantity))
		}
	}
}
