package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppingcart/internal/domain"
	productrepo "shoppingcart/internal/repository/product"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	catalog := productrepo.NewMemory()

	require.NoError(t, Apply(ctx, catalog))
	first, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	require.NoError(t, Apply(ctx, catalog))
	second, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Equal(t, "demo-mug", second[0].Key)
	assert.Equal(t, int64(1299), second[0].PriceCents)
}

type failingWriter struct{}

func (failingWriter) Upsert(context.Context, domain.Product) (*domain.Product, error) {
	return nil, errors.New("read-only")
}

func TestApplyStopsOnError(t *testing.T) {
	err := Apply(context.Background(), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo-shirt")
}
