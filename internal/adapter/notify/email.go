package notify

import (
	"context"
	"log/slog"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

// LogEmailNotifier stands in for the transactional-email provider: it
// records what would be sent. Swap for a real sender behind the same
// queue.Notifier port.
type LogEmailNotifier struct {
	log *slog.Logger
}

func NewLogEmailNotifier() *LogEmailNotifier {
	return &LogEmailNotifier{log: logging.New("email-notifier")}
}

func (n *LogEmailNotifier) SendOrderConfirmation(ctx context.Context, msg usecase.OrderSettledMsg) error {
	n.log.Info("order confirmation email",
		"to", msg.Email,
		"tran_id", msg.TransactionID,
		"amount", domain.FormatCents(msg.AmountCents),
		"currency", msg.Currency,
	)
	return nil
}
