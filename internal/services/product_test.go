package services

import (
	"context"
	"testing"

	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProductCaches(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewProductService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Calculus I", got.Name)

	// A direct store write is invisible until the cache is invalidated.
	require.NoError(t, st.SetStockAndPrice(ctx, p.ID, 10, 99.00))
	cached, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.00, cached.Price)

	// The admin edit path invalidates.
	require.NoError(t, svc.SetStockAndPrice(ctx, p.ID, 3, 50.00))
	fresh, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.00, fresh.Price)
	assert.Equal(t, 3, fresh.StockQuantity)

	_, err = svc.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewProductService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 5)

	ok, err := svc.CheckAvailability(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CheckAvailability(ctx, p.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.CheckAvailability(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStockAndPrice(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewProductService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 5)

	var ve *ValidationError
	assert.ErrorAs(t, svc.SetStockAndPrice(ctx, p.ID, -1, 45.00), &ve)
	assert.ErrorAs(t, svc.SetStockAndPrice(ctx, p.ID, 5, -0.01), &ve)
	assert.ErrorIs(t, svc.SetStockAndPrice(ctx, 999, 5, 45.00), ErrNotFound)

	// Zero stock deactivates; restock reactivates.
	require.NoError(t, svc.SetStockAndPrice(ctx, p.ID, 0, 45.00))
	got, err := st.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, svc.SetStockAndPrice(ctx, p.ID, 7, 45.00))
	got, err = st.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, 7, got.StockQuantity)
}
