package product

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shoppingcart/internal/domain"
)

// Memory is a map-backed catalog. FindByID hands out the same *domain.Product
// on every call until the product is upserted again.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Product
	byKey map[string]string
}

func NewMemory(products ...domain.Product) *Memory {
	m := &Memory{
		byID:  make(map[string]*domain.Product),
		byKey: make(map[string]string),
	}
	for _, p := range products {
		_, _ = m.Upsert(context.Background(), p)
	}
	return m
}

func (m *Memory) FindByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (m *Memory) List(_ context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Upsert inserts or replaces by key, keeping the existing ID for a known key.
// A caller-supplied ID that differs from the stored one is rejected, as the
// SQL catalogs do. Re-keying an existing ID drops its old key.
func (m *Memory) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := product.Key
	if key == "" {
		key = product.ID
	}
	if existingID, ok := m.byKey[key]; ok {
		if product.ID != "" && product.ID != existingID {
			return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", key, existingID, product.ID)
		}
		product.ID = existingID
		product.CreatedAt = m.byID[existingID].CreatedAt
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if prev, ok := m.byID[product.ID]; ok && prev.Key != key {
		delete(m.byKey, prev.Key)
		if product.CreatedAt.IsZero() {
			product.CreatedAt = prev.CreatedAt
		}
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.Key = key

	p := product
	m.byID[p.ID] = &p
	m.byKey[key] = p.ID
	out := p
	return &out, nil
}
