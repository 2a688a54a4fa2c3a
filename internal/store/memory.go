package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/models"
)

// Memory is an in-memory Store used by tests and local experiments. It
// mirrors the MySQL implementation's semantics, including the conditional
// stock debit and the status-guarded sweep deletes.
type Memory struct {
	mu            sync.RWMutex
	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
	products      map[int64]models.Product
	orders        map[int64]models.Order
	items         map[int64]models.OrderItem
	receipts      map[int64]models.Receipt // keyed by order ID
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextProductID: 1,
		nextOrderID:   1,
		nextItemID:    1,
		products:      make(map[int64]models.Product),
		orders:        make(map[int64]models.Order),
		items:         make(map[int64]models.OrderItem),
		receipts:      make(map[int64]models.Receipt),
	}
}

// transaction-aware locking: WithTransaction takes the write lock once and
// marks the context so nested calls skip their own locks.
type memTxKey struct{}

func inTx(ctx context.Context) bool {
	v, ok := ctx.Value(memTxKey{}).(bool)
	return ok && v
}

func (m *Memory) rlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RLock()
	}
}

func (m *Memory) runlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *Memory) wlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Lock()
	}
}

func (m *Memory) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		m.mu.Unlock()
	}
}

// WithTransaction emulates a transaction boundary with the write lock. There
// is no rollback; fn failures leave prior writes applied, which is acceptable
// for the test scenarios this store serves.
func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

// ---- seeding helpers (not part of the Store interface) ----

// AddProduct inserts a product and returns it with its assigned ID.
func (m *Memory) AddProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextProductID
	m.nextProductID++
	p.IsActive = p.StockQuantity > 0
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m.products[p.ID] = p
	return p
}

// SetOrderDate backdates an order, e.g. to exercise the cart sweep.
func (m *Memory) SetOrderDate(orderID int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.OrderDate = at
		m.orders[orderID] = o
	}
}

// SetPaymentDate backdates a receipt, e.g. to exercise the pickup sweep.
func (m *Memory) SetPaymentDate(orderID int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.receipts[orderID]; ok {
		r.PaymentDate = at
		m.receipts[orderID] = r
	}
}

// ---- products ----

func (m *Memory) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *Memory) SetStockAndPrice(ctx context.Context, id int64, stock int, price float64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.StockQuantity = stock
	p.Price = price
	p.IsActive = stock > 0
	m.products[id] = p
	return nil
}

func (m *Memory) DebitStock(ctx context.Context, id int64, qty int) (bool, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.products[id]
	if !ok || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	p.IsActive = p.StockQuantity > 0
	m.products[id] = p
	return true, nil
}

// ---- orders ----

func (m *Memory) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *Memory) GetStagingOrder(ctx context.Context, userID int64) (*models.Order, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	for _, id := range m.sortedOrderIDs() {
		o := m.orders[id]
		if o.UserID == userID && o.Status == models.OrderStaging {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateStagingOrder(ctx context.Context, userID int64) (*models.Order, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	o := models.Order{
		ID:        m.nextOrderID,
		UserID:    userID,
		Status:    models.OrderStaging,
		OrderDate: time.Now().UTC(),
	}
	m.nextOrderID++
	m.orders[o.ID] = o
	cp := o
	return &cp, nil
}

func (m *Memory) GetLatestFinalizedOrder(ctx context.Context, userID int64) (*models.Order, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	ids := m.sortedOrderIDs()
	for i := len(ids) - 1; i >= 0; i-- {
		o := m.orders[ids[i]]
		if o.UserID == userID && o.Status == models.OrderFinalized {
			cp := o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) MarkFinalized(ctx context.Context, orderID int64, at time.Time) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	o, ok := m.orders[orderID]
	if !ok || o.Status != models.OrderStaging {
		return ErrNotFound
	}
	o.Status = models.OrderFinalized
	o.OrderDate = at
	m.orders[orderID] = o
	return nil
}

func (m *Memory) SetTotalAmount(ctx context.Context, orderID int64, total float64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.TotalAmount = total
	m.orders[orderID] = o
	return nil
}

func (m *Memory) SetPhone(ctx context.Context, orderID int64, phone string) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	o, ok := m.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.Phone = phone
	m.orders[orderID] = o
	return nil
}

// ---- order items ----

func (m *Memory) GetItemForProduct(ctx context.Context, orderID, productID int64) (*models.OrderItem, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	for _, id := range m.sortedItemIDs() {
		it := m.items[id]
		if it.OrderID == orderID && it.ProductID == productID {
			cp := it
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertItem(ctx context.Context, item *models.OrderItem) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	item.ID = m.nextItemID
	m.nextItemID++
	m.items[item.ID] = *item
	return nil
}

func (m *Memory) SetItemQuantity(ctx context.Context, itemID int64, qty int) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	it, ok := m.items[itemID]
	if !ok {
		return ErrNotFound
	}
	it.Quantity = qty
	m.items[itemID] = it
	return nil
}

func (m *Memory) DeleteItem(ctx context.Context, itemID int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.items[itemID]; !ok {
		return ErrNotFound
	}
	delete(m.items, itemID)
	return nil
}

func (m *Memory) GetOwnedStagingItem(ctx context.Context, itemID, userID int64) (*models.OrderItem, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	it, ok := m.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	o, ok := m.orders[it.OrderID]
	if !ok || o.UserID != userID || o.Status != models.OrderStaging {
		return nil, ErrNotFound
	}
	cp := it
	return &cp, nil
}

func (m *Memory) ListCartLines(ctx context.Context, orderID int64) ([]models.CartLine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var lines []models.CartLine
	for _, id := range m.sortedItemIDs() {
		it := m.items[id]
		if it.OrderID != orderID {
			continue
		}
		p := m.products[it.ProductID]
		lines = append(lines, models.CartLine{
			OrderItemID:  it.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			PricePerItem: it.PricePerItem,
			ProductName:  p.Name,
			ProductType:  p.ProductType,
			ImageURL:     p.ImageURL,
		})
	}
	return lines, nil
}

func (m *Memory) ListOrderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var lines []models.OrderLine
	for _, id := range m.sortedItemIDs() {
		it := m.items[id]
		if it.OrderID != orderID {
			continue
		}
		p := m.products[it.ProductID]
		lines = append(lines, models.OrderLine{
			OrderItemID:   it.ID,
			ProductID:     it.ProductID,
			ProductName:   p.Name,
			Quantity:      it.Quantity,
			PricePerItem:  it.PricePerItem,
			StockQuantity: p.StockQuantity,
		})
	}
	return lines, nil
}

func (m *Memory) ListUserOrders(ctx context.Context, userID int64) ([]models.OrderSummary, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	ids := m.sortedOrderIDs()
	var orders []models.OrderSummary
	for i := len(ids) - 1; i >= 0; i-- {
		o := m.orders[ids[i]]
		if o.UserID != userID || o.Status != models.OrderFinalized {
			continue
		}
		summary := models.OrderSummary{
			OrderID:     o.ID,
			OrderDate:   o.OrderDate,
			TotalAmount: o.TotalAmount,
			Phone:       o.Phone,
		}
		if r, ok := m.receipts[o.ID]; ok {
			summary.ReceiptStatus = r.Status
		}
		orders = append(orders, summary)
	}
	return orders, nil
}

func (m *Memory) CountOrdersByReceipt(ctx context.Context, userID int64) (*models.OrderStats, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var stats models.OrderStats
	for _, o := range m.orders {
		if o.UserID != userID || o.Status != models.OrderFinalized {
			continue
		}
		r, ok := m.receipts[o.ID]
		switch {
		case !ok || r.Status == models.ReceiptPending:
			stats.PendingPickup++
		case r.Status == models.ReceiptReceived:
			stats.Received++
		}
	}
	return &stats, nil
}

func (m *Memory) CountActiveCarts(ctx context.Context) (int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	withItems := make(map[int64]bool)
	for _, it := range m.items {
		withItems[it.OrderID] = true
	}
	var count int64
	for id, o := range m.orders {
		if o.Status == models.OrderStaging && withItems[id] {
			count++
		}
	}
	return count, nil
}

// ---- sweeps ----

func (m *Memory) ListStaleStagingOrderIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var ids []int64
	for _, id := range m.sortedOrderIDs() {
		o := m.orders[id]
		if o.Status == models.OrderStaging && o.OrderDate.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Memory) DeleteStagingOrders(ctx context.Context, ids []int64) (int64, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	var deleted int64
	for _, id := range ids {
		o, ok := m.orders[id]
		if !ok || o.Status != models.OrderStaging {
			continue
		}
		m.deleteItemsOf(id)
		delete(m.orders, id)
		deleted++
	}
	return deleted, nil
}

// ---- receipts ----

func (m *Memory) GetReceipt(ctx context.Context, orderID int64) (*models.Receipt, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	r, ok := m.receipts[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := r
	return &cp, nil
}

func (m *Memory) UpsertPending(ctx context.Context, orderID int64, paidAt time.Time) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	r := m.receipts[orderID]
	r.OrderID = orderID
	r.Status = models.ReceiptPending
	r.PaymentDate = paidAt
	m.receipts[orderID] = r
	return nil
}

func (m *Memory) UpsertReceived(ctx context.Context, orderID int64, receivedAt time.Time) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	r := m.receipts[orderID]
	r.OrderID = orderID
	r.Status = models.ReceiptReceived
	r.ReceiptDate = &receivedAt
	m.receipts[orderID] = r
	return nil
}

func (m *Memory) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	var count int64
	for id, r := range m.receipts {
		if r.Status == models.ReceiptPending && r.PaymentDate.Before(cutoff) {
			r.Status = models.ReceiptCancelled
			m.receipts[id] = r
			count++
		}
	}
	return count, nil
}

func (m *Memory) ListExpiredCancelledOrderIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var ids []int64
	for _, id := range m.sortedOrderIDs() {
		r, ok := m.receipts[id]
		if ok && r.Status == models.ReceiptCancelled && r.PaymentDate.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *Memory) DeleteOrdersCascade(ctx context.Context, ids []int64) (int64, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	var deleted int64
	for _, id := range ids {
		if _, ok := m.orders[id]; !ok {
			continue
		}
		m.deleteItemsOf(id)
		delete(m.receipts, id)
		delete(m.orders, id)
		deleted++
	}
	return deleted, nil
}

// ---- internal helpers (callers hold the lock) ----

func (m *Memory) deleteItemsOf(orderID int64) {
	for id, it := range m.items {
		if it.OrderID == orderID {
			delete(m.items, id)
		}
	}
}

func (m *Memory) sortedOrderIDs() []int64 {
	ids := make([]int64, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *Memory) sortedItemIDs() []int64 {
	ids := make([]int64, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
