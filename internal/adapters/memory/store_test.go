package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/adapters/memory"
	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

func seededStore(balance int64) (*memory.Store, domain.Account) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	account := domain.Account{ID: uuid.New(), Balance: balance, CreatedAt: now, UpdatedAt: now}
	store := memory.NewStore()
	store.Seed(account)
	return store, account
}

func TestUnitOfWorkCommitsAllWrites(t *testing.T) {
	t.Parallel()

	store, account := seededStore(1_000)
	uow := memory.NewUnitOfWork(store)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 1, 0, time.UTC)
	txID := uuid.New()

	err := uow.Execute(ctx, func(stores ports.LedgerStores) error {
		if err := stores.Accounts.UpdateBalance(ctx, account.ID, 1_500, now); err != nil {
			return err
		}
		return stores.Transactions.Insert(ctx, domain.LedgerTransaction{
			ID:           txID,
			AccountID:    account.ID,
			Amount:       500,
			Kind:         domain.KindDeposit,
			BalanceAfter: 1_500,
			CreatedAt:    now,
		})
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got, err := store.Accounts().GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Balance != 1_500 {
		t.Fatalf("expected committed balance 1500, got %d", got.Balance)
	}
	if _, err := store.Transactions().GetByID(ctx, txID); err != nil {
		t.Fatalf("expected committed transaction, got %v", err)
	}
}

func TestUnitOfWorkRollsBackAllWrites(t *testing.T) {
	t.Parallel()

	store, account := seededStore(1_000)
	uow := memory.NewUnitOfWork(store)
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 1, 0, time.UTC)
	txID := uuid.New()
	boom := errors.New("late failure")

	err := uow.Execute(ctx, func(stores ports.LedgerStores) error {
		if err := stores.Accounts.UpdateBalance(ctx, account.ID, 0, now); err != nil {
			return err
		}
		if err := stores.Transactions.Insert(ctx, domain.LedgerTransaction{
			ID:        txID,
			AccountID: account.ID,
			Amount:    -1_000,
			Kind:      domain.KindWithdraw,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the unit of work error, got %v", err)
	}

	got, err := store.Accounts().GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Balance != 1_000 {
		t.Fatalf("expected balance untouched after rollback, got %d", got.Balance)
	}
	if _, err := store.Transactions().GetByID(ctx, txID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected no transaction after rollback, got %v", err)
	}
}

func TestAccountCreateConflict(t *testing.T) {
	t.Parallel()

	store, account := seededStore(0)
	ctx := context.Background()

	err := store.Accounts().Create(ctx, domain.Account{ID: account.ID})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate create, got %v", err)
	}
	if _, err := store.Accounts().GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}
}

func TestListTransactionsNewestFirstWithFilters(t *testing.T) {
	t.Parallel()

	store, account := seededStore(0)
	ctx := context.Background()
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	rows := []domain.LedgerTransaction{
		{ID: uuid.New(), AccountID: account.ID, Amount: 100_000, Kind: domain.KindDeposit, CreatedAt: base},
		{ID: uuid.New(), AccountID: account.ID, Amount: -10_000, Kind: domain.KindWithdraw, CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), AccountID: account.ID, Amount: 5_000, Kind: domain.KindReferralBonus, CreatedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), AccountID: uuid.New(), Amount: 7_000, Kind: domain.KindDeposit, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, row := range rows {
		if err := store.Transactions().Insert(ctx, row); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	listed, err := store.Transactions().ListByAccount(ctx, account.ID, nil, 0)
	if err != nil {
		t.Fatalf("ListByAccount failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 rows for the account, got %d", len(listed))
	}
	if listed[0].ID != rows[2].ID || listed[2].ID != rows[0].ID {
		t.Fatalf("expected newest-first ordering, got %v then %v", listed[0].Kind, listed[2].Kind)
	}

	kind := domain.KindWithdraw
	withdrawals, err := store.Transactions().ListByAccount(ctx, account.ID, &kind, 10)
	if err != nil {
		t.Fatalf("ListByAccount with kind failed: %v", err)
	}
	if len(withdrawals) != 1 || withdrawals[0].ID != rows[1].ID {
		t.Fatalf("expected the single withdrawal, got %d rows", len(withdrawals))
	}

	limited, err := store.Transactions().ListByAccount(ctx, account.ID, nil, 2)
	if err != nil {
		t.Fatalf("ListByAccount with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit of 2 rows, got %d", len(limited))
	}

	recent, err := store.Transactions().ListRecentByAccount(ctx, account.ID, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("ListRecentByAccount failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows since the cutoff, got %d", len(recent))
	}
}

func TestSummarizeFoldsDirections(t *testing.T) {
	t.Parallel()

	store, account := seededStore(0)
	ctx := context.Background()
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	rows := []domain.LedgerTransaction{
		{ID: uuid.New(), AccountID: account.ID, Amount: 100_000, Kind: domain.KindDeposit, CreatedAt: base},
		{ID: uuid.New(), AccountID: account.ID, Amount: -30_000, Kind: domain.KindWithdraw, CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), AccountID: account.ID, Amount: -20_000, Kind: domain.KindTransferOut, CreatedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), AccountID: account.ID, Amount: 5_000, Kind: domain.KindTaskReward, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, row := range rows {
		if err := store.Transactions().Insert(ctx, row); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	summary, err := store.Transactions().Summarize(ctx, account.ID)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.TotalIn != 105_000 || summary.TotalOut != 50_000 || summary.Net != 55_000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.TransactionCount != 4 {
		t.Fatalf("expected 4 transactions, got %d", summary.TransactionCount)
	}
}

func TestUpdateReason(t *testing.T) {
	t.Parallel()

	store, account := seededStore(0)
	ctx := context.Background()
	row := domain.LedgerTransaction{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    100_000,
		Kind:      domain.KindDeposit,
		CreatedAt: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Transactions().Insert(ctx, row); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.Transactions().UpdateReason(ctx, row.ID, "manual top-up"); err != nil {
		t.Fatalf("UpdateReason failed: %v", err)
	}
	got, err := store.Transactions().GetByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Reason != "manual top-up" || got.Amount != row.Amount {
		t.Fatalf("expected only the reason to change, got %+v", got)
	}

	if err := store.Transactions().UpdateReason(ctx, uuid.New(), "x"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Fatalf("expected not found for unknown transaction, got %v", err)
	}
}
