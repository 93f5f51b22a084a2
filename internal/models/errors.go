package models

import (
	"errors"
	"fmt"
)

// ErrDuplicatePaymentRef is returned by the store when an insert collides
// with an existing order's payment_ref. The lifecycle service resolves it
// as an idempotent replay, not a failure.
var ErrDuplicatePaymentRef = errors.New("payment ref already recorded")

// ValidationError rejects a malformed capture submission before any
// persistence attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %s %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown order id or payment ref.
type NotFoundError struct {
	OrderID    int64
	PaymentRef string
}

func (e *NotFoundError) Error() string {
	if e.PaymentRef != "" {
		return fmt.Sprintf("order not found for payment ref: %s", e.PaymentRef)
	}
	return fmt.Sprintf("order not found: %d", e.OrderID)
}

// InvalidTransitionError reports a status change the state machine
// does not permit from the order's current state.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	if TerminalStatus(e.From) {
		return fmt.Sprintf("invalid status transition: %s is terminal, cannot move to %s", e.From, e.To)
	}
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// StoreUnavailableError wraps a transient persistence failure. On the
// capture path it means "payment captured but not yet confirmed recorded":
// the caller must surface it and retry RecordCapture with the same
// payment ref.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
