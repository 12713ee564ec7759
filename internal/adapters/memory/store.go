// Package memory provides in-process ledger storage used by tests and local
// runs. A unit of work clones the data set, applies fn to the clone, and
// swaps it in on success, so partial writes are never observable.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

type ledgerData struct {
	accounts     map[uuid.UUID]domain.Account
	transactions []domain.LedgerTransaction
}

func (d *ledgerData) clone() *ledgerData {
	accounts := make(map[uuid.UUID]domain.Account, len(d.accounts))
	for id, account := range d.accounts {
		accounts[id] = account
	}
	transactions := make([]domain.LedgerTransaction, len(d.transactions))
	copy(transactions, d.transactions)
	return &ledgerData{accounts: accounts, transactions: transactions}
}

// Store keeps accounts and ledger rows in memory behind one lock.
type Store struct {
	mu   sync.Mutex
	data *ledgerData
}

func NewStore() *Store {
	return &Store{data: &ledgerData{accounts: make(map[uuid.UUID]domain.Account)}}
}

// Seed installs accounts directly, bypassing rule checks.
func (s *Store) Seed(accounts ...domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range accounts {
		s.data.accounts[account.ID] = account
	}
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{store: s}
}

type AccountRepository struct {
	store *Store
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) GetByID(_ context.Context, accountID uuid.UUID) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.data.accounts[accountID]
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}
	return account, nil
}

// GetByIDForUpdate matches the locked read of the database adapter; units of
// work are fully serialized here, so it reduces to a plain read.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	return r.GetByID(ctx, accountID)
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.data.accounts[account.ID]; ok {
		return fmt.Errorf("%w: account %s exists", domain.ErrConflict, account.ID)
	}
	r.store.data.accounts[account.ID] = account
	return nil
}

func (r *AccountRepository) UpdateBalance(_ context.Context, accountID uuid.UUID, balance int64, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.data.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
	}
	account.Balance = balance
	account.UpdatedAt = updatedAt
	r.store.data.accounts[accountID] = account
	return nil
}

type TransactionRepository struct {
	store *Store
}

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

func (r *TransactionRepository) Insert(_ context.Context, tx domain.LedgerTransaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.data.transactions {
		if existing.ID == tx.ID {
			return fmt.Errorf("%w: transaction %s exists", domain.ErrConflict, tx.ID)
		}
	}
	r.store.data.transactions = append(r.store.data.transactions, tx)
	return nil
}

func (r *TransactionRepository) GetByID(_ context.Context, transactionID uuid.UUID) (domain.LedgerTransaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, tx := range r.store.data.transactions {
		if tx.ID == transactionID {
			return tx, nil
		}
	}
	return domain.LedgerTransaction{}, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, transactionID)
}

func (r *TransactionRepository) ListRecentByAccount(_ context.Context, accountID uuid.UUID, since time.Time) ([]domain.LedgerTransaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.LedgerTransaction
	for i := len(r.store.data.transactions) - 1; i >= 0; i-- {
		tx := r.store.data.transactions[i]
		if tx.AccountID != accountID || tx.CreatedAt.Before(since) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *TransactionRepository) ListByAccount(_ context.Context, accountID uuid.UUID, kind *domain.TransactionKind, limit int) ([]domain.LedgerTransaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.LedgerTransaction
	for i := len(r.store.data.transactions) - 1; i >= 0; i-- {
		tx := r.store.data.transactions[i]
		if tx.AccountID != accountID {
			continue
		}
		if kind != nil && tx.Kind != *kind {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *TransactionRepository) Summarize(_ context.Context, accountID uuid.UUID) (domain.BalanceSummary, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	summary := domain.BalanceSummary{AccountID: accountID}
	for _, tx := range r.store.data.transactions {
		if tx.AccountID != accountID {
			continue
		}
		summary.TransactionCount++
		if tx.Amount > 0 {
			summary.TotalIn += tx.Amount
		} else {
			summary.TotalOut += -tx.Amount
		}
	}
	summary.Net = summary.TotalIn - summary.TotalOut
	return summary, nil
}

func (r *TransactionRepository) UpdateReason(_ context.Context, transactionID uuid.UUID, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.data.transactions {
		if r.store.data.transactions[i].ID == transactionID {
			r.store.data.transactions[i].Reason = reason
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, transactionID)
}

// UnitOfWork serializes mutations against the store. fn runs against a clone
// of the data set; the clone replaces the live data only when fn succeeds.
type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Execute(_ context.Context, fn func(stores ports.LedgerStores) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	scratch := &Store{data: u.store.data.clone()}
	stores := ports.LedgerStores{
		Accounts:     scratch.Accounts(),
		Transactions: scratch.Transactions(),
	}
	if err := fn(stores); err != nil {
		return err
	}
	u.store.data = scratch.data
	return nil
}
