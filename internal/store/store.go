// Package store holds the persistence layer for the order lifecycle core.
// Services depend on the interfaces here; MySQL backs production and the
// in-memory implementation backs tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// TxManager runs fn inside one storage transaction. Store calls made with the
// ctx passed to fn join that transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductStore is the inventory ledger. Stock mutations recompute the derived
// is_active flag (true iff stock_quantity > 0).
type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)

	// SetStockAndPrice overwrites both fields (admin edit path).
	SetStockAndPrice(ctx context.Context, id int64, stock int, price float64) error

	// DebitStock decrements stock by qty only if stock_quantity >= qty,
	// atomically with respect to concurrent debits of the same product.
	// Returns false when the guard fails.
	DebitStock(ctx context.Context, id int64, qty int) (bool, error)
}

// OrderStore persists orders and their line items.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	GetStagingOrder(ctx context.Context, userID int64) (*models.Order, error)
	CreateStagingOrder(ctx context.Context, userID int64) (*models.Order, error)
	GetLatestFinalizedOrder(ctx context.Context, userID int64) (*models.Order, error)

	// MarkFinalized flips staging to finalized and stamps order_date.
	// Returns ErrNotFound when the order is not (or no longer) staging.
	MarkFinalized(ctx context.Context, orderID int64, at time.Time) error
	SetTotalAmount(ctx context.Context, orderID int64, total float64) error
	SetPhone(ctx context.Context, orderID int64, phone string) error

	GetItemForProduct(ctx context.Context, orderID, productID int64) (*models.OrderItem, error)
	InsertItem(ctx context.Context, item *models.OrderItem) error
	SetItemQuantity(ctx context.Context, itemID int64, qty int) error
	DeleteItem(ctx context.Context, itemID int64) error

	// GetOwnedStagingItem resolves an item only when it belongs to a staging
	// order owned by userID.
	GetOwnedStagingItem(ctx context.Context, itemID, userID int64) (*models.OrderItem, error)

	ListCartLines(ctx context.Context, orderID int64) ([]models.CartLine, error)
	ListOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
	ListUserOrders(ctx context.Context, userID int64) ([]models.OrderSummary, error)
	CountOrdersByReceipt(ctx context.Context, userID int64) (*models.OrderStats, error)
	CountActiveCarts(ctx context.Context) (int64, error)

	ListStaleStagingOrderIDs(ctx context.Context, cutoff time.Time) ([]int64, error)

	// DeleteStagingOrders removes the given orders and their items, skipping
	// any order whose status is no longer staging. Returns orders deleted.
	DeleteStagingOrders(ctx context.Context, ids []int64) (int64, error)
}

// ReceiptStore persists the 1:1 pickup-tracking records.
type ReceiptStore interface {
	GetReceipt(ctx context.Context, orderID int64) (*models.Receipt, error)

	// UpsertPending creates or resets the receipt to pending with the given
	// payment date. Calling it twice for one order leaves a single row.
	UpsertPending(ctx context.Context, orderID int64, paidAt time.Time) error

	// UpsertReceived creates the receipt as received when missing, otherwise
	// updates status and receipt_date.
	UpsertReceived(ctx context.Context, orderID int64, receivedAt time.Time) error

	CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error)
	ListExpiredCancelledOrderIDs(ctx context.Context, cutoff time.Time) ([]int64, error)

	// DeleteOrdersCascade removes items, receipt and order for each id.
	// Returns orders deleted.
	DeleteOrdersCascade(ctx context.Context, ids []int64) (int64, error)
}

// Store is the full persistence surface wired into the services.
type Store interface {
	ProductStore
	OrderStore
	ReceiptStore
	TxManager
}
