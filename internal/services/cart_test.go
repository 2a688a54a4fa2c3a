package services

import (
	"context"
	"io"
	"testing"

	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedProduct(st *store.Memory, name string, price float64, stock int) models.Product {
	return st.AddProduct(models.Product{
		Name:          name,
		Price:         price,
		StockQuantity: stock,
		ProductType:   "book",
	})
}

func TestAddToCartCreatesOneStagingOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	a := seedProduct(st, "Calculus I", 45.00, 10)
	b := seedProduct(st, "Linear Algebra", 38.50, 5)

	itemA, err := svc.AddToCart(ctx, 1, a.ID, 1)
	require.NoError(t, err)

	itemB, err := svc.AddToCart(ctx, 1, b.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, itemA.OrderID, itemB.OrderID, "both adds must land on the same staging order")

	order, err := st.GetStagingOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStaging, order.Status)

	items, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddToCartMergesDuplicateProduct(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)

	_, err := svc.AddToCart(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	item, err := svc.AddToCart(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	lines, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1, "repeated adds must merge into one line")
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestAddToCartKeepsPriceSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)

	_, err := svc.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	// Price change after the line exists must not touch the snapshot.
	require.NoError(t, st.SetStockAndPrice(ctx, p.ID, 10, 60.00))

	item, err := svc.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 45.00, item.PricePerItem)
}

func TestAddToCartValidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)

	_, err := svc.AddToCart(ctx, 1, p.ID, 0)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.AddToCart(ctx, 1, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddToCartIgnoresStock(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	// Adding more than the available stock is allowed; checkout enforces.
	p := seedProduct(st, "Out of Print", 12.00, 0)

	item, err := svc.AddToCart(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)
	item, err := svc.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQuantity(ctx, 1, item.ID, 4))

	lines, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	err = svc.UpdateQuantity(ctx, 1, item.ID, 0)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateQuantityForbiddenForOtherUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)
	item, err := svc.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateQuantity(ctx, 2, item.ID, 3), ErrForbidden)
	assert.ErrorIs(t, svc.RemoveItem(ctx, 2, item.ID), ErrForbidden)
}

func TestUpdateQuantityForbiddenAfterFinalize(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := testLogger()
	carts := NewCartService(st, log, nil)
	orders := NewOrderService(st, log, nil)

	p := seedProduct(st, "Calculus I", 45.00, 10)
	item, err := carts.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	_, err = orders.Finalize(ctx, 1)
	require.NoError(t, err)

	assert.ErrorIs(t, carts.UpdateQuantity(ctx, 1, item.ID, 3), ErrForbidden)
	assert.ErrorIs(t, carts.RemoveItem(ctx, 1, item.ID), ErrForbidden)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	a := seedProduct(st, "Calculus I", 45.00, 10)
	b := seedProduct(st, "Linear Algebra", 38.50, 5)

	itemA, err := svc.AddToCart(ctx, 1, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 1, b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, 1, itemA.ID))

	lines, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, b.ID, lines[0].ProductID)
}

func TestViewCartNeverCreatesOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewCartService(st, testLogger(), nil)

	lines, err := svc.ViewCart(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = st.GetStagingOrder(ctx, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
