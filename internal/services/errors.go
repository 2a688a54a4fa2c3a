package services

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to the request boundary. Handlers map these onto
// HTTP statuses; anything else is a storage failure and becomes a 500.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrNoActiveOrder    = errors.New("no active order")
	ErrNoCompletedOrder = errors.New("no completed order")
)

// ValidationError reports malformed input rejected before any state change.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError aborts a finalize when a line requests more than the
// product has. It carries the product name and available count so checkout
// failures are actionable for the user.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.ProductName, e.Available)
}
