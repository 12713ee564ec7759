package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/domain"
)

func logger() *slog.Logger {
	return slog.Default().With("module", "ledger", "layer", "application")
}

// depositKind reports whether kind credits an account through Deposit.
func depositKind(kind domain.TransactionKind) bool {
	switch kind {
	case domain.KindDeposit, domain.KindTaskReward, domain.KindReferralBonus:
		return true
	default:
		return false
	}
}

// guarded runs fn under the idempotency guard when a token is supplied.
// Calls without a token run unguarded.
func (s *Service) guarded(ctx context.Context, token string, fn func(context.Context) error) error {
	if s.guard == nil || token == "" {
		return fn(ctx)
	}
	return s.guard.Run(ctx, token, fn)
}

// limited counts one attempt against the scope's per-account window.
func (s *Service) limited(ctx context.Context, scope string, accountID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Check(ctx, scope, accountID.String())
}

// notify publishes a committed mutation. Delivery is best effort; a failed
// publish is logged and the call still succeeds.
func (s *Service) notify(ctx context.Context, event domain.LedgerEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		logger().WarnContext(ctx, "event publish failed",
			"operation", "notify",
			"outcome", "degraded",
			"account_id", event.AccountID.String(),
			"transaction_id", event.TransactionID.String(),
			"error", err.Error(),
		)
	}
}

// fail normalizes a mutation error. An ambiguous commit is wrapped with the
// reconciliation context once and logged; everything else passes through.
func (s *Service) fail(ctx context.Context, operation string, accountID uuid.UUID, amount int64, token string, err error) error {
	if !errors.Is(err, domain.ErrAmbiguousCommit) {
		return err
	}
	var ambiguous *domain.AmbiguousCommitError
	if !errors.As(err, &ambiguous) {
		err = &domain.AmbiguousCommitError{
			Operation: operation,
			AccountID: accountID,
			Amount:    amount,
			Token:     token,
			Err:       err,
		}
	}
	logger().WarnContext(ctx, "commit outcome unknown",
		"operation", operation,
		"outcome", "ambiguous",
		"account_id", accountID.String(),
		"amount", amount,
		"error", err.Error(),
	)
	return err
}

func (s *Service) logCommitted(ctx context.Context, operation string, record domain.LedgerTransaction) {
	logger().InfoContext(ctx, "ledger mutation committed",
		"operation", operation,
		"outcome", "success",
		"account_id", record.AccountID.String(),
		"transaction_id", record.ID.String(),
		"kind", string(record.Kind),
		"amount", record.Amount,
		"balance_after", record.BalanceAfter,
	)
}

func eventFrom(record domain.LedgerTransaction) domain.LedgerEvent {
	return domain.LedgerEvent{
		EventID:       uuid.New(),
		Kind:          record.Kind,
		AccountID:     record.AccountID,
		Amount:        record.Amount,
		BalanceAfter:  record.BalanceAfter,
		TransactionID: record.ID,
		TransferID:    record.TransferID,
		Reason:        record.Reason,
		OccurredAt:    record.CreatedAt,
	}
}
