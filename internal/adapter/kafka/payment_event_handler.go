package kafka

import (
	"context"
	"errors"

	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

// PaymentEventHandler feeds gateway payment events into the same
// validation + reconcile path as the HTTP IPN endpoint.
type PaymentEventHandler struct {
	Process *usecase.ProcessNotification
}

func NewPaymentEventHandler(process *usecase.ProcessNotification) *PaymentEventHandler {
	return &PaymentEventHandler{Process: process}
}

func (h *PaymentEventHandler) Handle(ctx context.Context, ev usecase.PaymentEventMsg) error {
	_, err := h.Process.Execute(ctx, usecase.Notification{
		TranID: ev.TranID,
		ValID:  ev.ValID,
		Status: ev.Status,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, usecase.ErrMalformedNotification),
		errors.Is(err, usecase.ErrTransactionMismatch):
		// Redelivery cannot fix these; drop after logging.
		logging.FromCtx(ctx).Warn("dropping unprocessable payment event",
			"tran_id", ev.TranID, "err", err)
		return nil
	default:
		// Validation endpoint unreachable etc: leave unmarked for retry.
		return err
	}
}
