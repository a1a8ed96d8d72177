package product

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"shoppingcart/internal/domain"
)

// Cached is a read-through LRU in front of another catalog. Only hits are cached.
type Cached struct {
	next  Repository
	cache *lru.Cache[string, *domain.Product]
}

func NewCached(next Repository, size int) (*Cached, error) {
	cache, err := lru.New[string, *domain.Product](size)
	if err != nil {
		return nil, fmt.Errorf("product cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := c.cache.Get(id); ok {
		return p, nil
	}
	p, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, p)
	return p, nil
}

func (c *Cached) List(ctx context.Context) ([]domain.Product, error) {
	return c.next.List(ctx)
}

func (c *Cached) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	res, err := c.next.Upsert(ctx, product)
	if err != nil {
		return nil, err
	}
	c.cache.Remove(res.ID)
	return res, nil
}

// Len reports how many products are cached.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Unwrap returns the catalog behind the cache.
func (c *Cached) Unwrap() Repository {
	return c.next
}
