package usecase

import (
	"errors"
	"fmt"
)

// ValidationError reports a single bad checkout-form field. Recoverable;
// shown inline on the form.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// GatewayError means session creation failed or timed out. Recoverable
// via resubmit; no pending order exists when this is returned.
type GatewayError struct {
	Reason string
}

func (e *GatewayError) Error() string {
	return "gateway: " + e.Reason
}

var (
	// ErrConfiguration: missing merchant credentials or public base URL.
	// Fatal to the request; detail is logged server-side only.
	ErrConfiguration = errors.New("payment gateway not configured")

	// ErrInvalidOrder: empty cart, missing customer info, or total <= 0.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrMalformedNotification: notification lacks tran_id, val_id or status.
	ErrMalformedNotification = errors.New("malformed payment notification")

	// ErrValidationConnect: the validation endpoint could not be reached
	// or reported its own processing failure. The gateway redelivers.
	ErrValidationConnect = errors.New("validation endpoint unavailable")

	// ErrTransactionMismatch: validated tran id differs from the
	// notification's. Tamper signal; no status change is applied.
	ErrTransactionMismatch = errors.New("transaction id mismatch")
)
