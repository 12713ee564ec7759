package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/domain"
)

// AccountRepository reads and mutates account rows. The ForUpdate variant
// takes a row lock held for the remainder of the enclosing unit of work.
type AccountRepository interface {
	GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	GetByIDForUpdate(ctx context.Context, accountID uuid.UUID) (domain.Account, error)
	Create(ctx context.Context, account domain.Account) error
	UpdateBalance(ctx context.Context, accountID uuid.UUID, balance int64, updatedAt time.Time) error
}

// TransactionRepository appends and reads immutable ledger rows. Only the
// reason text may change after insert.
type TransactionRepository interface {
	Insert(ctx context.Context, tx domain.LedgerTransaction) error
	GetByID(ctx context.Context, transactionID uuid.UUID) (domain.LedgerTransaction, error)
	// ListRecentByAccount returns the account's rows created at or after
	// since, newest first.
	ListRecentByAccount(ctx context.Context, accountID uuid.UUID, since time.Time) ([]domain.LedgerTransaction, error)
	// ListByAccount returns up to limit rows, newest first, optionally
	// filtered by kind.
	ListByAccount(ctx context.Context, accountID uuid.UUID, kind *domain.TransactionKind, limit int) ([]domain.LedgerTransaction, error)
	Summarize(ctx context.Context, accountID uuid.UUID) (domain.BalanceSummary, error)
	UpdateReason(ctx context.Context, transactionID uuid.UUID, reason string) error
}

// LedgerStores groups the repositories visible inside one unit of work.
type LedgerStores struct {
	Accounts     AccountRepository
	Transactions TransactionRepository
}

// UnitOfWork runs fn against transactional stores; every write inside fn
// commits or rolls back together. A commit-phase failure whose outcome is
// unknown surfaces as domain.ErrAmbiguousCommit.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(stores LedgerStores) error) error
}

// RuleEvaluator answers allow/deny for balance mutations. Deny decisions
// carry a short reason and unwrap to domain.ErrRuleViolation.
type RuleEvaluator interface {
	CheckDeposit(amount int64) error
	CheckWithdraw(now time.Time, amount int64, recent []domain.LedgerTransaction) error
	CheckTransfer(senderID, receiverID uuid.UUID, amount int64) error
	CheckAdjust(amount int64) error
}
