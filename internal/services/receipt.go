package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/sirupsen/logrus"
)

// ReceiptService tracks pickup of finalized orders. MarkReceived performs no
// ownership check: pickup is confirmed by staff at the counter, and access
// control for that flow lives at the boundary, not here.
type ReceiptService struct {
	store   store.Store
	log     *logrus.Logger
	metrics *metrics.AppMetrics
}

// NewReceiptService creates a new receipt service.
func NewReceiptService(st store.Store, log *logrus.Logger, m *metrics.AppMetrics) *ReceiptService {
	return &ReceiptService{store: st, log: log, metrics: m}
}

// MarkReceived upserts the order's receipt to received with the current
// timestamp. A missing receipt row (finalize raced or was skipped) is created
// directly in the received state rather than failing.
func (s *ReceiptService) MarkReceived(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return validationf("orderId is required")
	}

	if err := s.store.UpsertReceived(ctx, orderID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark receipt received: %w", err)
	}

	s.metrics.RecordReceiptReceived(ctx)
	s.log.Infof("Order %d marked as received", orderID)
	return nil
}
