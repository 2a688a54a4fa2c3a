package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/sirupsen/logrus"
)

// CartService maintains the user's staging order. At most one staging order
// exists per user; repeated adds of the same product merge into one line.
type CartService struct {
	store   store.Store
	log     *logrus.Logger
	metrics *metrics.AppMetrics
}

// NewCartService creates a new cart service.
func NewCartService(st store.Store, log *logrus.Logger, m *metrics.AppMetrics) *CartService {
	return &CartService{store: st, log: log, metrics: m}
}

// AddToCart adds quantity of a product to the user's cart, creating the
// staging order on first use. The product's current price is snapshotted on
// the new line; merging into an existing line keeps the original snapshot.
// Stock is deliberately not checked here — finalize is the enforcement point.
func (s *CartService) AddToCart(ctx context.Context, userID, productID int64, quantity int) (*models.OrderItem, error) {
	if quantity < 1 {
		return nil, validationf("quantity must be at least 1")
	}

	product, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	order, err := s.store.GetStagingOrder(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		order, err = s.store.CreateStagingOrder(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to create staging order: %w", err)
		}
		s.log.Infof("Created staging order %d for user %d", order.ID, userID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get staging order: %w", err)
	}

	item, err := s.store.GetItemForProduct(ctx, order.ID, productID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		item = &models.OrderItem{
			OrderID:      order.ID,
			ProductID:    productID,
			Quantity:     quantity,
			PricePerItem: product.Price,
		}
		if err := s.store.InsertItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to add item to cart: %w", err)
		}
		s.log.Infof("Added product %d x%d to order %d", productID, quantity, order.ID)
	case err != nil:
		return nil, fmt.Errorf("failed to check cart item: %w", err)
	default:
		item.Quantity += quantity
		if err := s.store.SetItemQuantity(ctx, item.ID, item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
		s.log.Infof("Merged product %d into order %d, quantity now %d", productID, order.ID, item.Quantity)
	}

	s.recordCartSize(ctx, userID, order.ID)
	return item, nil
}

// UpdateQuantity overwrites a line's quantity. The item must belong to a
// staging order owned by userID; quantities below 1 are rejected (use
// RemoveItem instead).
func (s *CartService) UpdateQuantity(ctx context.Context, userID, orderItemID int64, quantity int) error {
	if quantity < 1 {
		return validationf("quantity must be at least 1")
	}

	item, err := s.store.GetOwnedStagingItem(ctx, orderItemID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("failed to verify cart item: %w", err)
	}

	if err := s.store.SetItemQuantity(ctx, item.ID, quantity); err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	return nil
}

// RemoveItem deletes a line after the same ownership check as UpdateQuantity.
// Removing the last line leaves an empty staging order behind, which the cart
// view treats the same as having no cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, orderItemID int64) error {
	item, err := s.store.GetOwnedStagingItem(ctx, orderItemID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("failed to verify cart item: %w", err)
	}

	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	s.recordCartSize(ctx, userID, item.OrderID)
	return nil
}

// ViewCart returns the cart lines joined with product display data. It never
// creates an order as a side effect; no staging order means an empty cart.
func (s *CartService) ViewCart(ctx context.Context, userID int64) ([]models.CartLine, error) {
	order, err := s.store.GetStagingOrder(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staging order: %w", err)
	}

	lines, err := s.store.ListCartLines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

func (s *CartService) recordCartSize(ctx context.Context, userID, orderID int64) {
	lines, err := s.store.ListCartLines(ctx, orderID)
	if err != nil {
		return
	}
	s.metrics.RecordCartSize(ctx, userID, len(lines))
}
