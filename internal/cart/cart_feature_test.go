package cart_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"shoppingcart/internal/cart"
	"shoppingcart/internal/domain"
	productrepo "shoppingcart/internal/repository/product"
)

type cartTestContext struct {
	catalog   *productrepo.Memory
	unitPrice float64
	cart      *cart.ShoppingCart
	err       error
	panicked  interface{}
}

func (c *cartTestContext) reset() {
	c.catalog = productrepo.NewMemory()
	c.unitPrice = 0
	c.cart = nil
	c.err = nil
	c.panicked = nil
}

func (c *cartTestContext) shoppingCart() *cart.ShoppingCart {
	if c.cart == nil {
		c.cart = cart.New(cart.PricingFunc(func(item *cart.CartItem) float64 {
			return float64(item.Quantity()) * c.unitPrice
		}), c.catalog)
	}
	return c.cart
}

func (c *cartTestContext) run(fn func() error) {
	c.err = nil
	c.panicked = nil
	defer func() {
		if r := recover(); r != nil {
			c.panicked = r
		}
	}()
	c.err = fn()
}

func (c *cartTestContext) aCatalogWithProducts(list string) error {
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if _, err := c.catalog.Upsert(context.Background(), domain.Product{ID: id, Key: strings.ToLower(id), Name: id}); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) everyUnitIsPricedAt(price float64) error {
	c.unitPrice = price
	return nil
}

func (c *cartTestContext) iAddOf(qty int, productID string) error {
	sc := c.shoppingCart()
	c.run(func() error { return sc.AddItem(context.Background(), productID, qty) })
	return nil
}

func (c *cartTestContext) iRemove(productID string) error {
	sc := c.shoppingCart()
	c.run(func() error { return sc.RemoveItem(productID) })
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	sc := c.shoppingCart()
	c.run(func() error { sc.Clear(); return nil })
	return nil
}

func (c *cartTestContext) theCartHasItems(n int) error {
	if got := c.shoppingCart().ItemCount(); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) theTotalPriceIs(total float64) error {
	if got := c.shoppingCart().TotalPrice(); got != total {
		return fmt.Errorf("expected total %.2f, got %.2f", total, got)
	}
	return nil
}

func (c *cartTestContext) theQuantityOfIs(productID string, qty int) error {
	item, ok := c.shoppingCart().Item(productID)
	if !ok {
		return fmt.Errorf("product %s not in cart", productID)
	}
	if item.Quantity() != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, item.Quantity())
	}
	return nil
}

func (c *cartTestContext) theOperationFailsWith(msg string) error {
	if c.err == nil {
		return errors.New("expected an error but the operation succeeded")
	}
	var target error
	switch msg {
	case domain.ErrInvalidOperation.Error():
		target = domain.ErrInvalidOperation
	case domain.ErrProductNotFound.Error():
		target = domain.ErrProductNotFound
	default:
		return fmt.Errorf("unknown failure %q", msg)
	}
	if !errors.Is(c.err, target) {
		return fmt.Errorf("expected %v, got %v", target, c.err)
	}
	return nil
}

func (c *cartTestContext) theOperationPanics() error {
	if c.panicked == nil {
		return errors.New("expected a panic")
	}
	if _, ok := c.panicked.(*cart.PreconditionError); !ok {
		return fmt.Errorf("unexpected panic value %v", c.panicked)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a catalog with products "([^"]*)"$`, tc.aCatalogWithProducts)
	ctx.Step(`^every unit is priced at (\d+(?:\.\d+)?)$`, tc.everyUnitIsPricedAt)

	// When steps
	ctx.Step(`^I add (-?\d+) of "([^"]*)"$`, tc.iAddOf)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) items?$`, tc.theCartHasItems)
	ctx.Step(`^the total price is (\d+(?:\.\d+)?)$`, tc.theTotalPriceIs)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, tc.theQuantityOfIs)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
	ctx.Step(`^the operation panics$`, tc.theOperationPanics)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
