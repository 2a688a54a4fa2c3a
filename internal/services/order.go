package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/models"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/sirupsen/logrus"
)

// OrderService drives the order state machine: staging → finalized, with the
// stock debit, total computation and receipt creation bound into one storage
// transaction.
type OrderService struct {
	store   store.Store
	log     *logrus.Logger
	metrics *metrics.AppMetrics
}

// NewOrderService creates a new order service.
func NewOrderService(st store.Store, log *logrus.Logger, m *metrics.AppMetrics) *OrderService {
	return &OrderService{store: st, log: log, metrics: m}
}

// Finalize checks out the user's staging order. Every line is pre-checked
// against current stock before anything is written; one short line aborts the
// whole checkout. The status flip, per-product debits, total and pending
// receipt all commit together or not at all.
func (s *OrderService) Finalize(ctx context.Context, userID int64) (int64, error) {
	var orderID int64

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.store.GetStagingOrder(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveOrder
		}
		if err != nil {
			return fmt.Errorf("failed to get staging order: %w", err)
		}
		orderID = order.ID

		lines, err := s.store.ListOrderLines(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to load order lines: %w", err)
		}
		if len(lines) == 0 {
			return ErrNoActiveOrder
		}

		// All-or-nothing pre-check: nothing is debited unless every line fits.
		for _, line := range lines {
			if line.Quantity > line.StockQuantity {
				s.metrics.RecordCheckoutRejection(ctx, line.ProductName)
				return &InsufficientStockError{ProductName: line.ProductName, Available: line.StockQuantity}
			}
		}

		now := time.Now().UTC()
		if err := s.store.MarkFinalized(ctx, order.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoActiveOrder
			}
			return fmt.Errorf("failed to finalize order: %w", err)
		}

		var total float64
		for _, line := range lines {
			// Conditional decrement, re-validated by the store: a concurrent
			// debit of the same product surfaces here instead of going negative.
			ok, err := s.store.DebitStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to debit stock for product %d: %w", line.ProductID, err)
			}
			if !ok {
				s.metrics.RecordCheckoutRejection(ctx, line.ProductName)
				return &InsufficientStockError{ProductName: line.ProductName, Available: line.StockQuantity}
			}
			total += float64(line.Quantity) * line.PricePerItem
		}

		if err := s.store.SetTotalAmount(ctx, order.ID, total); err != nil {
			return fmt.Errorf("failed to set order total: %w", err)
		}
		if err := s.store.UpsertPending(ctx, order.ID, now); err != nil {
			return fmt.Errorf("failed to create receipt: %w", err)
		}

		s.metrics.RecordOrderFinalized(ctx, userID, total)
		s.log.Infof("Order %d finalized for user %d, total %.2f, %d lines", order.ID, userID, total, len(lines))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// AttachPickupContact stores a phone tail on the user's most recent finalized
// order so staff can match the pickup.
func (s *OrderService) AttachPickupContact(ctx context.Context, userID int64, phoneTail string) (int64, error) {
	if phoneTail == "" {
		return 0, validationf("phone tail is required")
	}

	order, err := s.store.GetLatestFinalizedOrder(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrNoCompletedOrder
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest finalized order: %w", err)
	}

	if err := s.store.SetPhone(ctx, order.ID, phoneTail); err != nil {
		return 0, fmt.Errorf("failed to save phone: %w", err)
	}
	return order.ID, nil
}

// GetOrderDetail returns order metadata, its lines, the representative
// product (first line), aggregate quantity and receipt state. Read-only.
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID int64) (*models.OrderDetail, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	lines, err := s.store.ListOrderLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	detail := &models.OrderDetail{
		OrderID:     order.ID,
		OrderDate:   order.OrderDate,
		TotalAmount: order.TotalAmount,
		Phone:       order.Phone,
		Items:       lines,
	}
	for _, line := range lines {
		detail.TotalQuantity += line.Quantity
	}
	if len(lines) > 0 {
		detail.RepresentativeProduct = lines[0].ProductName
	}

	receipt, err := s.store.GetReceipt(ctx, orderID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt != nil {
		detail.ReceiptStatus = receipt.Status
		detail.ReceiptDate = receipt.ReceiptDate
	}

	return detail, nil
}

// ListUserOrders returns the user's finalized orders, newest first, each with
// its receipt status.
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]models.OrderSummary, error) {
	orders, err := s.store.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.OrderSummary{}
	}
	return orders, nil
}

// OrderStats returns the user's pickup counters for the my-page widget.
func (s *OrderService) OrderStats(ctx context.Context, userID int64) (*models.OrderStats, error) {
	stats, err := s.store.CountOrdersByReceipt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	return stats, nil
}
