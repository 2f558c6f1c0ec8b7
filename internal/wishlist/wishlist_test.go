package wishlist

import (
	"context"
	"testing"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/catalog"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.Product{
		{ID: 1, Name: "Vitamin C Brightening Serum"},
		{ID: 2, Name: "Hydrating Facial Moisturizer"},
	})
}

func TestToggle(t *testing.T) {
	s := New(testCatalog(), storage.NewMemoryStore(), nil, nil)
	ctx := context.Background()

	out, err := s.Toggle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Added, out)
	assert.True(t, s.Contains(1))

	out, err = s.Toggle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, Removed, out)
	assert.False(t, s.Contains(1))
	assert.Empty(t, s.Items())
}

func TestToggle_UnknownProduct(t *testing.T) {
	s := New(testCatalog(), storage.NewMemoryStore(), nil, nil)

	_, err := s.Toggle(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Items())
}

func TestPersistReload(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	s := New(testCatalog(), kv, nil, nil)
	_, err := s.Toggle(ctx, 2)
	require.NoError(t, err)
	_, err = s.Toggle(ctx, 1)
	require.NoError(t, err)

	reloaded := New(testCatalog(), kv, nil, nil)
	require.NoError(t, reloaded.Load(ctx))

	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 1, items[1].ID)
}
