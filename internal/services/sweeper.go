package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/campusbooks/bookstore-go-app/internal/store"
	"github.com/sirupsen/logrus"
)

// Sweeper runs the two periodic cleanup jobs: deleting staging orders that
// were never checked out, and cancelling then removing finalized orders that
// were never picked up. Each job is idempotent; a failed pass is logged and
// retried on the next tick.
type Sweeper struct {
	store     store.Store
	log       *logrus.Logger
	metrics   *metrics.AppMetrics
	interval  time.Duration
	cartTTL   time.Duration
	pickupTTL time.Duration

	now func() time.Time
}

// NewSweeper creates a sweeper with the given tick interval and thresholds.
func NewSweeper(st store.Store, log *logrus.Logger, m *metrics.AppMetrics, interval, cartTTL, pickupTTL time.Duration) *Sweeper {
	return &Sweeper{
		store:     st,
		log:       log,
		metrics:   m,
		interval:  interval,
		cartTTL:   cartTTL,
		pickupTTL: pickupTTL,
		now:       time.Now,
	}
}

// Start launches both sweep loops. They stop when ctx is cancelled. Sweep
// errors never propagate out of the loops.
func (s *Sweeper) Start(ctx context.Context) {
	go s.loop(ctx, "cart", s.SweepCarts)
	go s.loop(ctx, "pickup", s.SweepPickups)
	s.log.Infof("Sweeper started: interval=%s cartTTL=%s pickupTTL=%s", s.interval, s.cartTTL, s.pickupTTL)
}

func (s *Sweeper) loop(ctx context.Context, name string, sweep func(ctx context.Context) (int64, error)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sweep(ctx); err != nil {
				s.log.Errorf("%s sweep failed: %v", name, err)
			}
			s.recordActiveCarts(ctx)
		}
	}
}

// SweepCarts deletes staging orders older than the cart TTL, items first.
// The delete re-checks status inside one transaction so a finalize racing the
// sweep wins. Returns the number of orders removed.
func (s *Sweeper) SweepCarts(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.cartTTL)

	var deleted int64
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		ids, err := s.store.ListStaleStagingOrderIDs(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to list stale staging orders: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		deleted, err = s.store.DeleteStagingOrders(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to delete stale staging orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.metrics.RecordSweep(ctx, "cart", deleted, 0)
		s.log.Infof("Cart sweep removed %d stale staging orders", deleted)
	}
	return deleted, nil
}

// SweepPickups cancels pending receipts older than the pickup TTL, then
// cascade-deletes every order whose receipt is cancelled and past threshold.
// Returns the number of orders removed.
func (s *Sweeper) SweepPickups(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.pickupTTL)

	var (
		cancelled int64
		deleted   int64
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		cancelled, err = s.store.CancelStalePending(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to cancel stale receipts: %w", err)
		}

		ids, err := s.store.ListExpiredCancelledOrderIDs(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to list expired cancelled orders: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		deleted, err = s.store.DeleteOrdersCascade(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to delete cancelled orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if cancelled > 0 || deleted > 0 {
		s.metrics.RecordSweep(ctx, "pickup", deleted, cancelled)
		s.log.Infof("Pickup sweep cancelled %d receipts, removed %d orders", cancelled, deleted)
	}
	return deleted, nil
}

func (s *Sweeper) recordActiveCarts(ctx context.Context) {
	count, err := s.store.CountActiveCarts(ctx)
	if err != nil {
		return
	}
	s.metrics.RecordActiveCarts(ctx, count)
}
