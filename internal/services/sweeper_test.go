package services

import (
	"context"
	"testing"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const week = 7 * 24 * time.Hour

func newTestSweeper(st *store.Memory) *Sweeper {
	return NewSweeper(st, testLogger(), nil, time.Hour, week, week)
}

func TestSweepCartsRemovesOnlyStaleStagingOrders(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := testLogger()
	carts := NewCartService(st, log, nil)
	orders := NewOrderService(st, log, nil)
	sweeper := newTestSweeper(st)

	p := seedProduct(st, "Calculus I", 45.00, 100)

	// User 1: abandoned cart, 8 days old.
	staleItem, err := carts.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	st.SetOrderDate(staleItem.OrderID, time.Now().UTC().Add(-8*24*time.Hour))

	// User 2: cart is 6 days old, still within the window.
	freshItem, err := carts.AddToCart(ctx, 2, p.ID, 1)
	require.NoError(t, err)
	st.SetOrderDate(freshItem.OrderID, time.Now().UTC().Add(-6*24*time.Hour))

	// User 3: finalized order older than the window must never be swept.
	_, err = carts.AddToCart(ctx, 3, p.ID, 1)
	require.NoError(t, err)
	finalizedID, err := orders.Finalize(ctx, 3)
	require.NoError(t, err)
	st.SetOrderDate(finalizedID, time.Now().UTC().Add(-9*24*time.Hour))

	deleted, err := sweeper.SweepCarts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = st.GetOrder(ctx, staleItem.OrderID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	fresh, err := st.GetOrder(ctx, freshItem.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStaging, fresh.Status)

	kept, err := st.GetOrder(ctx, finalizedID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderFinalized, kept.Status)

	// Idempotent: the next pass finds nothing.
	deleted, err = sweeper.SweepCarts(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSweepPickupsCancelsAndCascades(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := testLogger()
	carts := NewCartService(st, log, nil)
	orders := NewOrderService(st, log, nil)
	sweeper := newTestSweeper(st)

	p := seedProduct(st, "Calculus I", 45.00, 100)

	// Order never picked up, paid 8 days ago.
	_, err := carts.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	staleID, err := orders.Finalize(ctx, 1)
	require.NoError(t, err)
	st.SetPaymentDate(staleID, time.Now().UTC().Add(-8*24*time.Hour))

	// Order paid yesterday stays pending.
	_, err = carts.AddToCart(ctx, 2, p.ID, 1)
	require.NoError(t, err)
	freshID, err := orders.Finalize(ctx, 2)
	require.NoError(t, err)

	deleted, err := sweeper.SweepPickups(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The stale order and its receipt and items are gone.
	_, err = st.GetOrder(ctx, staleID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetReceipt(ctx, staleID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	lines, err := st.ListOrderLines(ctx, staleID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	receipt, err := st.GetReceipt(ctx, freshID)
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptPending, receipt.Status)
}

func TestSweepPickupsSparesReceivedOrders(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := testLogger()
	carts := NewCartService(st, log, nil)
	orders := NewOrderService(st, log, nil)
	receipts := NewReceiptService(st, log, nil)
	sweeper := newTestSweeper(st)

	p := seedProduct(st, "Calculus I", 45.00, 100)

	_, err := carts.AddToCart(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	orderID, err := orders.Finalize(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, receipts.MarkReceived(ctx, orderID))
	st.SetPaymentDate(orderID, time.Now().UTC().Add(-30*24*time.Hour))

	deleted, err := sweeper.SweepPickups(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	receipt, err := st.GetReceipt(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptReceived, receipt.Status)
}

func TestSweeperStartStopsOnCancel(t *testing.T) {
	st := store.NewMemory()
	sweeper := NewSweeper(st, testLogger(), nil, 10*time.Millisecond, week, week)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()
	// Loops exit on their next select; nothing to assert beyond not hanging.
	time.Sleep(20 * time.Millisecond)
}
