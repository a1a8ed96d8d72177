package product

import (
	"context"

	"shoppingcart/internal/domain"
)

// Repository is the product catalog. FindByID returns domain.ErrNotFound for unknown IDs.
type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
