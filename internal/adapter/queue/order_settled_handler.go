package queue

import (
	"context"

	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

// Notifier is the port to the buyer-facing confirmation channel (email
// in production; a log-backed mock here).
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, msg usecase.OrderSettledMsg) error
}

// OrderSettledHandler forwards settled-order events to the notifier.
type OrderSettledHandler struct {
	N Notifier
}

func NewOrderSettledHandler(n Notifier) *OrderSettledHandler {
	return &OrderSettledHandler{N: n}
}

// HandleSettled is registered through the JSON adapter, so msg arrives
// already decoded.
func (h *OrderSettledHandler) HandleSettled(ctx context.Context, msg usecase.OrderSettledMsg) error {
	return h.N.SendOrderConfirmation(ctx, msg)
}
