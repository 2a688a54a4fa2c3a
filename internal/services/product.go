package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/sirupsen/logrus"
)

const productCacheTTL = 30 * time.Second

// productCache holds recently read products for catalog-style lookups.
// Mutation paths bypass and invalidate it; cart price snapshots always read
// the store directly.
type productCache struct {
	mu    sync.RWMutex
	items map[int64]cachedProduct
}

type cachedProduct struct {
	product models.Product
	expires time.Time
}

func (c *productCache) get(id int64) (*models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.items[id]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	cp := entry.product
	return &cp, true
}

func (c *productCache) put(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = cachedProduct{product: p, expires: time.Now().Add(productCacheTTL)}
}

func (c *productCache) invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// ProductService is the inventory ledger's service face: availability reads
// and the admin stock/price edit. Order-linked debits happen inside
// OrderService.Finalize and never pass through here.
type ProductService struct {
	store   store.Store
	log     *logrus.Logger
	metrics *metrics.AppMetrics
	cache   productCache
}

// NewProductService creates a new product service.
func NewProductService(st store.Store, log *logrus.Logger, m *metrics.AppMetrics) *ProductService {
	return &ProductService{
		store:   st,
		log:     log,
		metrics: m,
		cache:   productCache{items: make(map[int64]cachedProduct)},
	}
}

// GetProduct returns a product, serving repeated reads from a short-lived cache.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := s.cache.get(id); ok {
		s.metrics.RecordCacheLookup(ctx, true)
		return p, nil
	}
	s.metrics.RecordCacheLookup(ctx, false)

	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	s.cache.put(*p)
	return p, nil
}

// CheckAvailability reports whether the product currently has at least
// quantity in stock. Advisory only — finalize re-validates under its own
// transaction.
func (s *ProductService) CheckAvailability(ctx context.Context, productID int64, quantity int) (bool, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to get product: %w", err)
	}
	return p.StockQuantity >= quantity, nil
}

// SetStockAndPrice overwrites stock and price (admin edit), recomputing the
// derived is_active flag. It bypasses order-linked debit logic entirely.
func (s *ProductService) SetStockAndPrice(ctx context.Context, id int64, stock int, price float64) error {
	if stock < 0 {
		return validationf("stock quantity must not be negative")
	}
	if price < 0 {
		return validationf("price must not be negative")
	}

	err := s.store.SetStockAndPrice(ctx, id, stock, price)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update stock and price: %w", err)
	}

	s.cache.invalidate(id)
	s.metrics.RecordStockLevel(ctx, id, stock)
	s.log.Infof("Product %d updated: stock=%d price=%.2f", id, stock, price)
	return nil
}
