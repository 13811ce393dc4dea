package domain

import "errors"

type Status string

const (
	StatusPending     Status = "pending"
	StatusValid       Status = "valid"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
	StatusExpired     Status = "expired"
	StatusUnattempted Status = "unattempted"
	StatusUnknown     Status = "unknown"
)

// Terminal reports whether a status may never change again.
// pending/unattempted/unknown orders can still be settled by a later
// validated notification.
func (s Status) Terminal() bool {
	switch s {
	case StatusValid, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

var ErrInvalidAmount = errors.New("invalid amount")

type Money struct {
	Cents    int64
	Currency string
}

// Order is the durable record of one checkout attempt. Created pending
// at session initiation; settled exactly once by the reconciler.
type Order struct {
	TransactionID string
	Status        Status
	Amount        Money
	Items         []LineItem
	Customer      CustomerInfo
}

func (o *Order) Validate() error {
	if o.Amount.Cents <= 0 || o.Amount.Currency == "" {
		return ErrInvalidAmount
	}
	return nil
}
