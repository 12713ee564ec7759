package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// Rate-limit scopes for the money-moving operations.
const (
	ScopeWithdraw = "withdraw"
	ScopeTransfer = "transfer"
)

// EnsureAccount registers a zero-balance ledger account. Registering an
// existing account is a no-op returning the current row.
func (s *Service) EnsureAccount(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	if accountID == uuid.Nil {
		return domain.Account{}, fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}
	now := s.nowFn()
	account := domain.Account{ID: accountID, Balance: 0, CreatedAt: now, UpdatedAt: now}
	err := s.accounts.Create(ctx, account)
	if err == nil {
		return account, nil
	}
	if errors.Is(err, domain.ErrConflict) {
		return s.accounts.GetByID(ctx, accountID)
	}
	return domain.Account{}, err
}

// Deposit credits the account and writes one ledger row, optionally under an
// idempotency token.
func (s *Service) Deposit(ctx context.Context, params DepositParams) (TransactionResult, error) {
	kind := params.Kind
	if kind == "" {
		kind = domain.KindDeposit
	}
	if !depositKind(kind) {
		return TransactionResult{}, fmt.Errorf("%w: %q cannot credit an account", domain.ErrInvalidInput, kind)
	}
	if err := s.rules.CheckDeposit(params.Amount); err != nil {
		return TransactionResult{}, err
	}

	var record domain.LedgerTransaction
	err := s.guarded(ctx, params.IdempotencyToken, func(ctx context.Context) error {
		return s.uow.Execute(ctx, func(stores ports.LedgerStores) error {
			account, err := stores.Accounts.GetByIDForUpdate(ctx, params.AccountID)
			if err != nil {
				return err
			}
			now := s.nowFn()
			newBalance := account.Balance + params.Amount
			if err := stores.Accounts.UpdateBalance(ctx, account.ID, newBalance, now); err != nil {
				return err
			}
			record = domain.LedgerTransaction{
				ID:           uuid.New(),
				AccountID:    account.ID,
				Amount:       params.Amount,
				Kind:         kind,
				Links:        params.Links,
				Reason:       params.Reason,
				BalanceAfter: newBalance,
				CreatedAt:    now,
			}
			return stores.Transactions.Insert(ctx, record)
		})
	})
	if err != nil {
		return TransactionResult{}, s.fail(ctx, "deposit", params.AccountID, params.Amount, params.IdempotencyToken, err)
	}

	s.notify(ctx, eventFrom(record))
	s.logCommitted(ctx, "deposit", record)
	return resultFrom(record), nil
}

// Withdraw debits the account after the per-day rule checks and a live
// balance re-check, both inside the unit of work. Runs under the rate
// limiter scoped per account.
func (s *Service) Withdraw(ctx context.Context, params WithdrawParams) (TransactionResult, error) {
	if err := s.limited(ctx, ScopeWithdraw, params.AccountID); err != nil {
		return TransactionResult{}, err
	}

	var record domain.LedgerTransaction
	err := s.guarded(ctx, params.IdempotencyToken, func(ctx context.Context) error {
		return s.uow.Execute(ctx, func(stores ports.LedgerStores) error {
			account, err := stores.Accounts.GetByIDForUpdate(ctx, params.AccountID)
			if err != nil {
				return err
			}
			now := s.nowFn()
			recent, err := stores.Transactions.ListRecentByAccount(ctx, account.ID, now.Add(-domain.DailyWindow))
			if err != nil {
				return err
			}
			if err := s.rules.CheckWithdraw(now, params.Amount, recent); err != nil {
				return err
			}
			if account.Balance < params.Amount {
				return fmt.Errorf("%w: balance %d is below %d", domain.ErrInsufficientFunds, account.Balance, params.Amount)
			}
			newBalance := account.Balance - params.Amount
			if err := stores.Accounts.UpdateBalance(ctx, account.ID, newBalance, now); err != nil {
				return err
			}
			record = domain.LedgerTransaction{
				ID:           uuid.New(),
				AccountID:    account.ID,
				Amount:       -params.Amount,
				Kind:         domain.KindWithdraw,
				Reason:       params.Reason,
				BalanceAfter: newBalance,
				CreatedAt:    now,
			}
			return stores.Transactions.Insert(ctx, record)
		})
	})
	if err != nil {
		return TransactionResult{}, s.fail(ctx, "withdraw", params.AccountID, params.Amount, params.IdempotencyToken, err)
	}

	s.notify(ctx, eventFrom(record))
	s.logCommitted(ctx, "withdraw", record)
	return resultFrom(record), nil
}

// Transfer moves points between two accounts. Both legs share one transfer
// id and commit in the same unit of work, so neither is observable alone.
func (s *Service) Transfer(ctx context.Context, params TransferParams) (TransferResult, error) {
	if err := s.rules.CheckTransfer(params.SenderID, params.ReceiverID, params.Amount); err != nil {
		return TransferResult{}, err
	}
	if err := s.limited(ctx, ScopeTransfer, params.SenderID); err != nil {
		return TransferResult{}, err
	}

	var outLeg, inLeg domain.LedgerTransaction
	err := s.guarded(ctx, params.IdempotencyToken, func(ctx context.Context) error {
		return s.uow.Execute(ctx, func(stores ports.LedgerStores) error {
			// Lock the two rows in byte order of their ids so concurrent
			// opposing transfers cannot deadlock.
			firstID, secondID := params.SenderID, params.ReceiverID
			if bytes.Compare(secondID[:], firstID[:]) < 0 {
				firstID, secondID = secondID, firstID
			}
			first, err := stores.Accounts.GetByIDForUpdate(ctx, firstID)
			if err != nil {
				return err
			}
			second, err := stores.Accounts.GetByIDForUpdate(ctx, secondID)
			if err != nil {
				return err
			}
			sender, receiver := first, second
			if sender.ID != params.SenderID {
				sender, receiver = second, first
			}

			if sender.Balance < params.Amount {
				return fmt.Errorf("%w: balance %d is below %d", domain.ErrInsufficientFunds, sender.Balance, params.Amount)
			}

			now := s.nowFn()
			transferID := uuid.New()
			senderBalance := sender.Balance - params.Amount
			receiverBalance := receiver.Balance + params.Amount

			if err := stores.Accounts.UpdateBalance(ctx, sender.ID, senderBalance, now); err != nil {
				return err
			}
			if err := stores.Accounts.UpdateBalance(ctx, receiver.ID, receiverBalance, now); err != nil {
				return err
			}

			outLeg = domain.LedgerTransaction{
				ID:           uuid.New(),
				AccountID:    sender.ID,
				Amount:       -params.Amount,
				Kind:         domain.KindTransferOut,
				TransferID:   &transferID,
				Reason:       params.Reason,
				BalanceAfter: senderBalance,
				CreatedAt:    now,
			}
			inLeg = domain.LedgerTransaction{
				ID:           uuid.New(),
				AccountID:    receiver.ID,
				Amount:       params.Amount,
				Kind:         domain.KindTransferIn,
				TransferID:   &transferID,
				Reason:       params.Reason,
				BalanceAfter: receiverBalance,
				CreatedAt:    now,
			}
			if err := stores.Transactions.Insert(ctx, outLeg); err != nil {
				return err
			}
			return stores.Transactions.Insert(ctx, inLeg)
		})
	})
	if err != nil {
		return TransferResult{}, s.fail(ctx, "transfer", params.SenderID, params.Amount, params.IdempotencyToken, err)
	}

	s.notify(ctx, eventFrom(outLeg))
	s.notify(ctx, eventFrom(inLeg))
	s.logCommitted(ctx, "transfer", outLeg)
	return TransferResult{
		TransferID:            *outLeg.TransferID,
		SenderTransactionID:   outLeg.ID,
		ReceiverTransactionID: inLeg.ID,
		SenderBalance:         outLeg.BalanceAfter,
		ReceiverBalance:       inLeg.BalanceAfter,
	}, nil
}

// Adjust applies a signed administrative correction. Daily limits do not
// apply; the non-negative balance invariant always does.
func (s *Service) Adjust(ctx context.Context, params AdjustParams) (TransactionResult, error) {
	if strings.TrimSpace(params.Reason) == "" {
		return TransactionResult{}, fmt.Errorf("%w: adjustment reason is required", domain.ErrInvalidInput)
	}
	if err := s.rules.CheckAdjust(params.Amount); err != nil {
		return TransactionResult{}, err
	}

	var record domain.LedgerTransaction
	err := s.guarded(ctx, params.IdempotencyToken, func(ctx context.Context) error {
		return s.uow.Execute(ctx, func(stores ports.LedgerStores) error {
			account, err := stores.Accounts.GetByIDForUpdate(ctx, params.AccountID)
			if err != nil {
				return err
			}
			newBalance := account.Balance + params.Amount
			if newBalance < 0 {
				return fmt.Errorf("%w: adjustment would leave balance at %d", domain.ErrInsufficientFunds, newBalance)
			}
			now := s.nowFn()
			if err := stores.Accounts.UpdateBalance(ctx, account.ID, newBalance, now); err != nil {
				return err
			}
			record = domain.LedgerTransaction{
				ID:           uuid.New(),
				AccountID:    account.ID,
				Amount:       params.Amount,
				Kind:         domain.KindAdjustment,
				Reason:       params.Reason,
				BalanceAfter: newBalance,
				CreatedAt:    now,
			}
			return stores.Transactions.Insert(ctx, record)
		})
	})
	if err != nil {
		return TransactionResult{}, s.fail(ctx, "adjust", params.AccountID, params.Amount, params.IdempotencyToken, err)
	}

	s.notify(ctx, eventFrom(record))
	s.logCommitted(ctx, "adjust", record)
	return resultFrom(record), nil
}

// GetBalance returns the account's current balance.
func (s *Service) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// History lists the account's ledger rows newest first, optionally filtered
// by kind.
func (s *Service) History(ctx context.Context, query HistoryQuery) ([]domain.LedgerTransaction, error) {
	if query.Kind != nil && !query.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", domain.ErrInvalidInput, *query.Kind)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	if _, err := s.accounts.GetByID(ctx, query.AccountID); err != nil {
		return nil, err
	}
	return s.transactions.ListByAccount(ctx, query.AccountID, query.Kind, limit)
}

// Summary folds the account's ledger rows into per-direction totals.
func (s *Service) Summary(ctx context.Context, accountID uuid.UUID) (domain.BalanceSummary, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return domain.BalanceSummary{}, err
	}
	return s.transactions.Summarize(ctx, accountID)
}

// AnnotateTransaction amends the reason text of a committed row. Every other
// field stays frozen.
func (s *Service) AnnotateTransaction(ctx context.Context, transactionID uuid.UUID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	}
	return s.transactions.UpdateReason(ctx, transactionID, reason)
}
