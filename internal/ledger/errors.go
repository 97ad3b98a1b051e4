package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced order, payment or
	// inventory record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned when a reservation cannot be
	// satisfied from quantity_on_hand.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition is returned for a status change outside the
	// allowed lifecycle graph.
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrOverpayment is returned when a completed payment would push
	// cumulative completed payments past the order total.
	ErrOverpayment = errors.New("completed payments would exceed order total")

	// ErrAlreadyReversed is returned when a cancel/refund tries to
	// restore inventory that a previous reversal already restored.
	ErrAlreadyReversed = errors.New("inventory already restored for this order")
)

// ValidationError reports malformed ledger input. Callers can recover
// by correcting the named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
