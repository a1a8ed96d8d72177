package seed

import (
	"context"
	"fmt"

	"shoppingcart/internal/domain"
)

// Writer stores catalog products. Upsert must be idempotent by key.
type Writer interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Products returns the demo catalog used for manual testing.
func Products() []domain.Product {
	return []domain.Product{
		{
			Key:         "demo-shirt",
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
		},
		{
			Key:         "demo-mug",
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
		},
	}
}

// Apply upserts the demo catalog. Running it twice leaves the same products.
func Apply(ctx context.Context, w Writer) error {
	for _, p := range Products() {
		if _, err := w.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	return nil
}
