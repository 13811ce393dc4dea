package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
)

// Notification is the gateway's asynchronous outcome message, as
// delivered. Everything beyond the three mandatory fields is advisory
// and is never applied without the validation round trip.
type Notification struct {
	TranID string
	ValID  string
	Status string
}

type ProcessNotification struct {
	gw        PaymentGateway
	reconcile *ReconcileOrder
	idem      IdempotencyStore // optional; short-circuits redelivery
	log       *slog.Logger
}

func NewProcessNotification(gw PaymentGateway, reconcile *ReconcileOrder, idem IdempotencyStore) *ProcessNotification {
	return &ProcessNotification{
		gw:        gw,
		reconcile: reconcile,
		idem:      idem,
		log:       logging.New("payment-notification"),
	}
}

// Execute re-validates the notification against the gateway's
// authoritative endpoint and hands the mapped status to the reconciler.
// Returns the mapped status so the transport can acknowledge receipt.
func (uc *ProcessNotification) Execute(ctx context.Context, n Notification) (domain.Status, error) {
	if n.TranID == "" || n.ValID == "" || n.Status == "" {
		return "", fmt.Errorf("%w: need tran_id, val_id and status", ErrMalformedNotification)
	}

	// Redelivery of an already-settled transaction: acknowledge without
	// another validation round trip. A dedupe lookup failure is treated
	// as a miss; validation is the source of truth and a store outage
	// must never acknowledge a notification that was not processed.
	if uc.idem != nil {
		settled, ok, err := uc.idem.Recall(ctx, "ipn", n.TranID)
		switch {
		case err != nil:
			uc.log.Warn("dedupe lookup failed, validating anyway", "tran_id", n.TranID, "err", err)
		case ok:
			uc.log.Info("duplicate notification for settled transaction", "tran_id", n.TranID, "status", settled)
			return domain.Status(settled), nil
		}
	}

	vr, err := uc.gw.Validate(ctx, n.ValID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidationConnect, err)
	}

	if vr.TransactionID != n.TranID {
		uc.log.Warn("transaction id mismatch, possible forged notification",
			"notified_tran_id", n.TranID, "validated_tran_id", vr.TransactionID)
		return "", ErrTransactionMismatch
	}

	mapped := MapGatewayStatus(vr.Status)
	if mapped == domain.StatusUnknown {
		uc.log.Warn("unhandled gateway status", "tran_id", vr.TransactionID, "gateway_status", vr.Status)
	}

	final, err := uc.reconcile.Execute(ctx, vr.TransactionID, mapped, vr.AmountCents, vr.Currency)
	if err != nil {
		return "", err
	}

	// Dedupe on the status the order actually holds, not the mapped one.
	// A tampered-amount delivery maps to valid but fails the order, and
	// redeliveries must be answered with that truth.
	if uc.idem != nil && final.Terminal() {
		_ = uc.idem.Remember(ctx, "ipn", n.TranID, string(final))
	}
	if final != "" {
		return final, nil
	}
	return mapped, nil
}
