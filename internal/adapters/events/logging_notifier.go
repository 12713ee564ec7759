package events

import (
	"context"
	"log/slog"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// LoggingNotifier writes ledger events to the log. It stands in for the
// Kafka sink in local and test runtimes.
type LoggingNotifier struct {
	logger *slog.Logger
}

func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingNotifier{logger: logger}
}

var _ ports.Notifier = (*LoggingNotifier)(nil)

func (n *LoggingNotifier) Notify(ctx context.Context, event domain.LedgerEvent) error {
	n.logger.InfoContext(ctx, "ledger event",
		"module", "events",
		"layer", "adapter",
		"operation", "notify",
		"event_id", event.EventID.String(),
		"kind", string(event.Kind),
		"account_id", event.AccountID.String(),
		"amount", event.Amount,
		"balance_after", event.BalanceAfter,
		"transaction_id", event.TransactionID.String(),
	)
	return nil
}

func (n *LoggingNotifier) Close() error { return nil }
