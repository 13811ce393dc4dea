package usecase

import (
	"context"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
)

type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	// GetByTransactionID returns (nil, nil) when no order exists.
	GetByTransactionID(ctx context.Context, tranID string) (*domain.Order, error)
	// UpdateStatusIfNotTerminal applies the transition only while the
	// current status is non-terminal. Returns whether a row changed.
	UpdateStatusIfNotTerminal(ctx context.Context, tranID string, to domain.Status, note string) (bool, error)
}

// PaymentGateway is the port to the hosted payment provider.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (SessionResponse, error)
	Validate(ctx context.Context, validationID string) (ValidationResult, error)
}

// SessionRequest carries everything the gateway needs to host a payment
// page for one transaction.
type SessionRequest struct {
	AmountCents int64
	Currency    string
	TranID      string
	SuccessURL  string
	FailURL     string
	CancelURL   string
	IPNURL      string
	ProductName string
	Customer    domain.CustomerInfo
}

type SessionResponse struct {
	Status       string // "SUCCESS" or a failure status
	RedirectURL  string
	FailedReason string
}

// ValidationResult is the authoritative outcome from the gateway's
// validation endpoint. Fields from the raw notification are advisory
// only and must never substitute for these.
type ValidationResult struct {
	TransactionID     string
	ValidationID      string
	Status            string
	AmountCents       int64
	Currency          string
	StoreAmountCents  int64
	BankTransactionID string
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, tranID string, status string) error
	GetStatus(ctx context.Context, tranID string) (string, bool, error)
}

type EventPublisher interface {
	PublishSettled(ctx context.Context, msg OrderSettledMsg) error
}
