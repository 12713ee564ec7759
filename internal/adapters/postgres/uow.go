package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// UnitOfWork executes ledger mutations inside one database transaction.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// Execute opens a transaction, runs fn against transactional repositories,
// and commits. An fn error rolls everything back. A commit-phase failure is
// reported as domain.ErrAmbiguousCommit: the server may or may not have
// applied it, and only reconciliation can tell.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(stores ports.LedgerStores) error) error {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin ledger transaction: %w", tx.Error)
	}

	stores := ports.LedgerStores{
		Accounts:     &AccountRepository{db: tx},
		Transactions: &TransactionRepository{db: tx},
	}
	if err := fn(stores); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Default().WarnContext(ctx, "ledger rollback failed",
				"module", "postgres",
				"layer", "adapter",
				"operation", "rollback",
				"outcome", "failure",
				"error", rbErr,
			)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAmbiguousCommit, err)
	}
	return nil
}
