package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/db"
	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/sirupsen/logrus"
)

// MySQL implements Store on top of the instrumented connection pool.
type MySQL struct {
	db      *db.DB
	log     *logrus.Logger
	metrics *metrics.AppMetrics
}

var _ Store = (*MySQL)(nil)

// NewMySQL creates the MySQL-backed store.
func NewMySQL(database *db.DB, log *logrus.Logger, m *metrics.AppMetrics) *MySQL {
	return &MySQL{db: database, log: log, metrics: m}
}

type txKey struct{}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the active transaction when ctx carries one, else the pool.
func (s *MySQL) q(ctx context.Context) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db.DB
}

// WithTransaction runs fn inside a single database transaction.
func (s *MySQL) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Errorf("Failed to rollback transaction: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ---- products ----

func (s *MySQL) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	start := time.Now()
	query := "SELECT id, name, price, stock_quantity, is_active, product_type, image_url, created_at FROM product WHERE id = ?"
	var p models.Product
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.IsActive, &p.ProductType, &p.ImageURL, &p.CreatedAt,
	)
	s.metrics.RecordDBQuery(ctx, "SELECT", "product", query, start, err == nil || errors.Is(err, sql.ErrNoRows))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (s *MySQL) SetStockAndPrice(ctx context.Context, id int64, stock int, price float64) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}

	start := time.Now()
	query := "UPDATE product SET stock_quantity = ?, price = ?, is_active = ? WHERE id = ?"
	_, err := s.q(ctx).ExecContext(ctx, query, stock, price, stock > 0, id)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "product", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to update stock and price: %w", err)
	}
	return nil
}

func (s *MySQL) DebitStock(ctx context.Context, id int64, qty int) (bool, error) {
	start := time.Now()
	// MySQL applies SET clauses left to right, so is_active reads the
	// already-decremented stock value.
	query := "UPDATE product SET stock_quantity = stock_quantity - ?, is_active = stock_quantity > 0 WHERE id = ? AND stock_quantity >= ?"
	result, err := s.q(ctx).ExecContext(ctx, query, qty, id, qty)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "product", query, start, err == nil)
	if err != nil {
		return false, fmt.Errorf("failed to debit stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ---- orders ----

const orderColumns = "id, user_id, status, order_date, COALESCE(total_amount, 0), COALESCE(phone, '')"

func (s *MySQL) scanOrder(row *sql.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.OrderDate, &o.TotalAmount, &o.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

func (s *MySQL) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	start := time.Now()
	query := "SELECT " + orderColumns + " FROM orders WHERE id = ?"
	o, err := s.scanOrder(s.q(ctx).QueryRowContext(ctx, query, orderID))
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil || errors.Is(err, ErrNotFound))
	return o, err
}

func (s *MySQL) GetStagingOrder(ctx context.Context, userID int64) (*models.Order, error) {
	start := time.Now()
	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = ? AND status = ? LIMIT 1"
	o, err := s.scanOrder(s.q(ctx).QueryRowContext(ctx, query, userID, models.OrderStaging))
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil || errors.Is(err, ErrNotFound))
	return o, err
}

func (s *MySQL) CreateStagingOrder(ctx context.Context, userID int64) (*models.Order, error) {
	now := time.Now().UTC()
	start := time.Now()
	query := "INSERT INTO orders (user_id, status, order_date) VALUES (?, ?, ?)"
	result, err := s.q(ctx).ExecContext(ctx, query, userID, models.OrderStaging, now)
	s.metrics.RecordDBQuery(ctx, "INSERT", "orders", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get order ID: %w", err)
	}
	return &models.Order{ID: id, UserID: userID, Status: models.OrderStaging, OrderDate: now}, nil
}

func (s *MySQL) GetLatestFinalizedOrder(ctx context.Context, userID int64) (*models.Order, error) {
	start := time.Now()
	query := "SELECT " + orderColumns + " FROM orders WHERE user_id = ? AND status = ? ORDER BY id DESC LIMIT 1"
	o, err := s.scanOrder(s.q(ctx).QueryRowContext(ctx, query, userID, models.OrderFinalized))
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil || errors.Is(err, ErrNotFound))
	return o, err
}

func (s *MySQL) MarkFinalized(ctx context.Context, orderID int64, at time.Time) error {
	start := time.Now()
	query := "UPDATE orders SET status = ?, order_date = ? WHERE id = ? AND status = ?"
	result, err := s.q(ctx).ExecContext(ctx, query, models.OrderFinalized, at, orderID, models.OrderStaging)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "orders", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to finalize order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) SetTotalAmount(ctx context.Context, orderID int64, total float64) error {
	start := time.Now()
	query := "UPDATE orders SET total_amount = ? WHERE id = ?"
	_, err := s.q(ctx).ExecContext(ctx, query, total, orderID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "orders", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to set total amount: %w", err)
	}
	return nil
}

func (s *MySQL) SetPhone(ctx context.Context, orderID int64, phone string) error {
	start := time.Now()
	query := "UPDATE orders SET phone = ? WHERE id = ?"
	_, err := s.q(ctx).ExecContext(ctx, query, phone, orderID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "orders", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to set phone: %w", err)
	}
	return nil
}

// ---- order items ----

func (s *MySQL) scanItem(row *sql.Row) (*models.OrderItem, error) {
	var it models.OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PricePerItem)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order item: %w", err)
	}
	return &it, nil
}

func (s *MySQL) GetItemForProduct(ctx context.Context, orderID, productID int64) (*models.OrderItem, error) {
	start := time.Now()
	query := "SELECT id, order_id, product_id, quantity, price_per_item FROM order_items WHERE order_id = ? AND product_id = ?"
	it, err := s.scanItem(s.q(ctx).QueryRowContext(ctx, query, orderID, productID))
	s.metrics.RecordDBQuery(ctx, "SELECT", "order_items", query, start, err == nil || errors.Is(err, ErrNotFound))
	return it, err
}

func (s *MySQL) InsertItem(ctx context.Context, item *models.OrderItem) error {
	start := time.Now()
	query := "INSERT INTO order_items (order_id, product_id, quantity, price_per_item) VALUES (?, ?, ?, ?)"
	result, err := s.q(ctx).ExecContext(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.PricePerItem)
	s.metrics.RecordDBQuery(ctx, "INSERT", "order_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get order item ID: %w", err)
	}
	item.ID = id
	return nil
}

func (s *MySQL) SetItemQuantity(ctx context.Context, itemID int64, qty int) error {
	start := time.Now()
	query := "UPDATE order_items SET quantity = ? WHERE id = ?"
	_, err := s.q(ctx).ExecContext(ctx, query, qty, itemID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "order_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	return nil
}

func (s *MySQL) DeleteItem(ctx context.Context, itemID int64) error {
	start := time.Now()
	query := "DELETE FROM order_items WHERE id = ?"
	_, err := s.q(ctx).ExecContext(ctx, query, itemID)
	s.metrics.RecordDBQuery(ctx, "DELETE", "order_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}
	return nil
}

func (s *MySQL) GetOwnedStagingItem(ctx context.Context, itemID, userID int64) (*models.OrderItem, error) {
	start := time.Now()
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_per_item
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE oi.id = ? AND o.user_id = ? AND o.status = ?
	`
	it, err := s.scanItem(s.q(ctx).QueryRowContext(ctx, query, itemID, userID, models.OrderStaging))
	s.metrics.RecordDBQuery(ctx, "SELECT", "order_items", query, start, err == nil || errors.Is(err, ErrNotFound))
	return it, err
}

func (s *MySQL) ListCartLines(ctx context.Context, orderID int64) ([]models.CartLine, error) {
	start := time.Now()
	query := `
		SELECT oi.id, oi.product_id, oi.quantity, oi.price_per_item,
		       p.name, p.product_type, p.image_url
		FROM order_items oi
		JOIN product p ON oi.product_id = p.id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, orderID)
	s.metrics.RecordDBQuery(ctx, "SELECT", "order_items", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var l models.CartLine
		if err := rows.Scan(&l.OrderItemID, &l.ProductID, &l.Quantity, &l.PricePerItem, &l.ProductName, &l.ProductType, &l.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *MySQL) ListOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	start := time.Now()
	query := `
		SELECT oi.id, oi.product_id, p.name, oi.quantity, oi.price_per_item, p.stock_quantity
		FROM order_items oi
		JOIN product p ON oi.product_id = p.id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, orderID)
	s.metrics.RecordDBQuery(ctx, "SELECT", "order_items", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.OrderItemID, &l.ProductID, &l.ProductName, &l.Quantity, &l.PricePerItem, &l.StockQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *MySQL) ListUserOrders(ctx context.Context, userID int64) ([]models.OrderSummary, error) {
	start := time.Now()
	query := `
		SELECT o.id, o.order_date, COALESCE(o.total_amount, 0), COALESCE(o.phone, ''),
		       COALESCE(r.receipt_status, '')
		FROM orders o
		LEFT JOIN receipts r ON o.id = r.order_id
		WHERE o.user_id = ? AND o.status = ?
		ORDER BY o.id DESC
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, userID, models.OrderFinalized)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderSummary
	for rows.Next() {
		var o models.OrderSummary
		if err := rows.Scan(&o.OrderID, &o.OrderDate, &o.TotalAmount, &o.Phone, &o.ReceiptStatus); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *MySQL) CountOrdersByReceipt(ctx context.Context, userID int64) (*models.OrderStats, error) {
	start := time.Now()
	query := `
		SELECT
		  COALESCE(SUM(CASE WHEN r.receipt_status = ? OR r.receipt_status IS NULL THEN 1 ELSE 0 END), 0),
		  COALESCE(SUM(CASE WHEN r.receipt_status = ? THEN 1 ELSE 0 END), 0)
		FROM orders o
		LEFT JOIN receipts r ON o.id = r.order_id
		WHERE o.user_id = ? AND o.status = ?
	`
	var stats models.OrderStats
	err := s.q(ctx).QueryRowContext(ctx, query, models.ReceiptPending, models.ReceiptReceived, userID, models.OrderFinalized).
		Scan(&stats.PendingPickup, &stats.Received)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by receipt: %w", err)
	}
	return &stats, nil
}

func (s *MySQL) CountActiveCarts(ctx context.Context) (int64, error) {
	start := time.Now()
	query := `
		SELECT COUNT(DISTINCT o.id)
		FROM orders o
		JOIN order_items oi ON o.id = oi.order_id
		WHERE o.status = ?
	`
	var count int64
	err := s.q(ctx).QueryRowContext(ctx, query, models.OrderStaging).Scan(&count)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count active carts: %w", err)
	}
	return count, nil
}

// ---- sweeps ----

func (s *MySQL) ListStaleStagingOrderIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	start := time.Now()
	query := "SELECT id FROM orders WHERE status = ? AND order_date < ?"
	ids, err := s.queryIDs(ctx, query, models.OrderStaging, cutoff)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil)
	return ids, err
}

func (s *MySQL) DeleteStagingOrders(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := int64Args(ids)
	ph := placeholders(len(ids))

	start := time.Now()
	// Items first; both deletes stay conditional on the order still being
	// staging so a concurrent finalize wins.
	itemQuery := fmt.Sprintf(`
		DELETE oi FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.id IN (%s) AND o.status = ?
	`, ph)
	_, err := s.q(ctx).ExecContext(ctx, itemQuery, append(args, models.OrderStaging)...)
	s.metrics.RecordDBQuery(ctx, "DELETE", "order_items", itemQuery, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale cart items: %w", err)
	}

	start = time.Now()
	orderQuery := fmt.Sprintf("DELETE FROM orders WHERE id IN (%s) AND status = ?", ph)
	result, err := s.q(ctx).ExecContext(ctx, orderQuery, append(args, models.OrderStaging)...)
	s.metrics.RecordDBQuery(ctx, "DELETE", "orders", orderQuery, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale staging orders: %w", err)
	}
	return result.RowsAffected()
}

// ---- receipts ----

func (s *MySQL) GetReceipt(ctx context.Context, orderID int64) (*models.Receipt, error) {
	start := time.Now()
	query := "SELECT order_id, receipt_status, payment_date, receipt_date FROM receipts WHERE order_id = ?"
	var (
		r    models.Receipt
		paid sql.NullTime
		recv sql.NullTime
	)
	err := s.q(ctx).QueryRowContext(ctx, query, orderID).Scan(&r.OrderID, &r.Status, &paid, &recv)
	if paid.Valid {
		r.PaymentDate = paid.Time
	}
	if recv.Valid {
		r.ReceiptDate = &recv.Time
	}
	s.metrics.RecordDBQuery(ctx, "SELECT", "receipts", query, start, err == nil || errors.Is(err, sql.ErrNoRows))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return &r, nil
}

func (s *MySQL) UpsertPending(ctx context.Context, orderID int64, paidAt time.Time) error {
	start := time.Now()
	query := `
		INSERT INTO receipts (order_id, receipt_status, payment_date)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE receipt_status = VALUES(receipt_status), payment_date = VALUES(payment_date)
	`
	_, err := s.q(ctx).ExecContext(ctx, query, orderID, models.ReceiptPending, paidAt)
	s.metrics.RecordDBQuery(ctx, "INSERT", "receipts", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to upsert pending receipt: %w", err)
	}
	return nil
}

func (s *MySQL) UpsertReceived(ctx context.Context, orderID int64, receivedAt time.Time) error {
	start := time.Now()
	query := `
		INSERT INTO receipts (order_id, receipt_status, receipt_date)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE receipt_status = VALUES(receipt_status), receipt_date = VALUES(receipt_date)
	`
	_, err := s.q(ctx).ExecContext(ctx, query, orderID, models.ReceiptReceived, receivedAt)
	s.metrics.RecordDBQuery(ctx, "INSERT", "receipts", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to upsert received receipt: %w", err)
	}
	return nil
}

func (s *MySQL) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	query := "UPDATE receipts SET receipt_status = ? WHERE receipt_status = ? AND payment_date < ?"
	result, err := s.q(ctx).ExecContext(ctx, query, models.ReceiptCancelled, models.ReceiptPending, cutoff)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "receipts", query, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel stale receipts: %w", err)
	}
	return result.RowsAffected()
}

func (s *MySQL) ListExpiredCancelledOrderIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	start := time.Now()
	query := `
		SELECT o.id FROM orders o
		JOIN receipts r ON o.id = r.order_id
		WHERE r.receipt_status = ? AND r.payment_date < ?
	`
	ids, err := s.queryIDs(ctx, query, models.ReceiptCancelled, cutoff)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil)
	return ids, err
}

func (s *MySQL) DeleteOrdersCascade(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := int64Args(ids)
	ph := placeholders(len(ids))

	start := time.Now()
	itemQuery := fmt.Sprintf("DELETE FROM order_items WHERE order_id IN (%s)", ph)
	_, err := s.q(ctx).ExecContext(ctx, itemQuery, args...)
	s.metrics.RecordDBQuery(ctx, "DELETE", "order_items", itemQuery, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete order items: %w", err)
	}

	start = time.Now()
	receiptQuery := fmt.Sprintf("DELETE FROM receipts WHERE order_id IN (%s)", ph)
	_, err = s.q(ctx).ExecContext(ctx, receiptQuery, args...)
	s.metrics.RecordDBQuery(ctx, "DELETE", "receipts", receiptQuery, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete receipts: %w", err)
	}

	start = time.Now()
	orderQuery := fmt.Sprintf("DELETE FROM orders WHERE id IN (%s)", ph)
	result, err := s.q(ctx).ExecContext(ctx, orderQuery, args...)
	s.metrics.RecordDBQuery(ctx, "DELETE", "orders", orderQuery, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}
	return result.RowsAffected()
}

// ---- helpers ----

func (s *MySQL) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
