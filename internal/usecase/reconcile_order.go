package usecase

import (
	"context"
	"fmt"
	"log/slog"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
)

type ReconcileOrder struct {
	repo   OrderRepo
	events EventPublisher // optional
	cache  OrderCache     // optional, best-effort
	log    *slog.Logger
}

func NewReconcileOrder(repo OrderRepo, events EventPublisher, cache OrderCache) *ReconcileOrder {
	return &ReconcileOrder{repo: repo, events: events, cache: cache, log: logging.New("reconcile-order")}
}

// Execute applies a validated payment outcome to the order exactly once
// and returns the status the order actually holds afterwards, which is
// not always the mapped one (a tampered amount fails the order no
// matter what the validator said). An empty status means the outcome
// could not be pinned down. Unknown transactions and already-terminal
// orders return nil so the transport acknowledges and the gateway
// stops redelivering.
func (uc *ReconcileOrder) Execute(ctx context.Context, tranID string, mapped domain.Status, amountCents int64, currency string) (domain.Status, error) {
	order, err := uc.repo.GetByTransactionID(ctx, tranID)
	if err != nil {
		return "", fmt.Errorf("load order %s: %w", tranID, err)
	}
	if order == nil {
		// Integration gap, not a user-facing failure. Acknowledge so the
		// gateway does not retry forever.
		uc.log.Warn("notification for unknown transaction", "tran_id", tranID, "status", mapped)
		return "", nil
	}
	if order.Status.Terminal() {
		uc.log.Info("order already settled, ignoring", "tran_id", tranID, "status", order.Status)
		return order.Status, nil
	}

	if amountCents != order.Amount.Cents || currency != order.Amount.Currency {
		// Tamper signal: never resolve in the buyer's favor.
		uc.log.Warn("amount/currency mismatch on validated notification",
			"tran_id", tranID,
			"validated_cents", amountCents, "validated_currency", currency,
			"order_cents", order.Amount.Cents, "order_currency", order.Amount.Currency)
		note := fmt.Sprintf("tamper: validated %d %s vs order %d %s",
			amountCents, currency, order.Amount.Cents, order.Amount.Currency)
		if _, err := uc.repo.UpdateStatusIfNotTerminal(ctx, tranID, domain.StatusFailed, note); err != nil {
			return "", fmt.Errorf("mark order %s failed: %w", tranID, err)
		}
		uc.cacheStatus(ctx, tranID, domain.StatusFailed)
		return domain.StatusFailed, nil
	}

	applied, err := uc.repo.UpdateStatusIfNotTerminal(ctx, tranID, mapped, "")
	if err != nil {
		return "", fmt.Errorf("transition order %s to %s: %w", tranID, mapped, err)
	}
	if !applied {
		// Lost the conditional write to a concurrent duplicate delivery.
		// The winner decided the final status, so report nothing here.
		uc.log.Info("no transition applied", "tran_id", tranID, "status", mapped)
		return "", nil
	}
	uc.cacheStatus(ctx, tranID, mapped)

	if mapped == domain.StatusValid && uc.events != nil {
		msg := OrderSettledMsg{
			TransactionID: tranID,
			Status:        string(mapped),
			AmountCents:   order.Amount.Cents,
			Currency:      order.Amount.Currency,
			Email:         order.Customer.Email,
		}
		if err := uc.events.PublishSettled(ctx, msg); err != nil {
			// Settlement already durable; event fan-out is best-effort.
			uc.log.Error("publish settled event failed", "tran_id", tranID, "err", err)
		}
	}

	uc.log.Info("order reconciled", "tran_id", tranID, "status", mapped)
	return mapped, nil
}

func (uc *ReconcileOrder) cacheStatus(ctx context.Context, tranID string, s domain.Status) {
	if uc.cache != nil {
		_ = uc.cache.SetStatus(ctx, tranID, string(s))
	}
}
