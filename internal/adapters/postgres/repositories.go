package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// Repositories bundles the ledger repositories bound to one database handle.
type Repositories struct {
	Accounts     *AccountRepository
	Transactions *TransactionRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts:     &AccountRepository{db: db},
		Transactions: &TransactionRepository{db: db},
	}
}

type AccountRepository struct {
	db *gorm.DB
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	return r.get(ctx, r.db, accountID)
}

// GetByIDForUpdate locks the account row for the remainder of the enclosing
// transaction.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), accountID)
}

func (r *AccountRepository) get(ctx context.Context, db *gorm.DB, accountID uuid.UUID) (domain.Account, error) {
	var rec accountModel
	if err := db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	rec := accountModel{
		AccountID: account.ID,
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: account %s exists", domain.ErrConflict, account.ID)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, accountID uuid.UUID, balance int64, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"balance":    balance,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}
	return nil
}

type TransactionRepository struct {
	db *gorm.DB
}

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

func (r *TransactionRepository) Insert(ctx context.Context, tx domain.LedgerTransaction) error {
	rec := transactionModelFrom(tx)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: transaction %s exists", domain.ErrConflict, tx.ID)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, transactionID uuid.UUID) (domain.LedgerTransaction, error) {
	var rec transactionModel
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LedgerTransaction{}, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, transactionID)
		}
		return domain.LedgerTransaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *TransactionRepository) ListRecentByAccount(ctx context.Context, accountID uuid.UUID, since time.Time) ([]domain.LedgerTransaction, error) {
	var recs []transactionModel
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND created_at >= ?", accountID, since).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return toDomainList(recs), nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, kind *domain.TransactionKind, limit int) ([]domain.LedgerTransaction, error) {
	query := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	if kind != nil {
		query = query.Where("kind = ?", string(*kind))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recs []transactionModel
	if err := query.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toDomainList(recs), nil
}

func (r *TransactionRepository) Summarize(ctx context.Context, accountID uuid.UUID) (domain.BalanceSummary, error) {
	var row struct {
		TotalIn  int64
		TotalOut int64
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Select("COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS total_in, "+
			"COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0) AS total_out, "+
			"COUNT(*) AS count").
		Where("account_id = ?", accountID).
		Scan(&row).Error
	if err != nil {
		return domain.BalanceSummary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	return domain.BalanceSummary{
		AccountID:        accountID,
		TotalIn:          row.TotalIn,
		TotalOut:         row.TotalOut,
		Net:              row.TotalIn - row.TotalOut,
		TransactionCount: int(row.Count),
	}, nil
}

func (r *TransactionRepository) UpdateReason(ctx context.Context, transactionID uuid.UUID, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&transactionModel{}).
		Where("transaction_id = ?", transactionID).
		Update("reason", reason)
	if res.Error != nil {
		return fmt.Errorf("update transaction reason: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, transactionID)
	}
	return nil
}

func toDomainList(recs []transactionModel) []domain.LedgerTransaction {
	out := make([]domain.LedgerTransaction, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out
}
