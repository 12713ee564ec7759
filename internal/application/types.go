package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

type Config struct {
	ServiceName  string
	HistoryLimit int
}

// Service is the balance ledger. Every mutation runs inside one unit of
// work, writes exactly one immutable transaction row per touched account,
// and optionally registers a caller-supplied idempotency token first.
type Service struct {
	cfg          Config
	uow          ports.UnitOfWork
	accounts     ports.AccountRepository
	transactions ports.TransactionRepository
	rules        ports.RuleEvaluator
	guard        ports.IdempotencyGuard
	limiter      ports.RateLimiter
	notifier     ports.Notifier
	nowFn        func() time.Time
}

type Dependencies struct {
	Config       Config
	UnitOfWork   ports.UnitOfWork
	Accounts     ports.AccountRepository
	Transactions ports.TransactionRepository
	Rules        ports.RuleEvaluator
	Guard        ports.IdempotencyGuard
	Limiter      ports.RateLimiter
	Notifier     ports.Notifier
	NowFn        func() time.Time
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "boost-ledger"
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	nowFn := deps.NowFn
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:          cfg,
		uow:          deps.UnitOfWork,
		accounts:     deps.Accounts,
		transactions: deps.Transactions,
		rules:        deps.Rules,
		guard:        deps.Guard,
		limiter:      deps.Limiter,
		notifier:     deps.Notifier,
		nowFn:        nowFn,
	}
}

// DepositParams credit an account. Kind defaults to deposit; task_reward and
// referral_bonus mark reward flows and carry the links that produced them.
type DepositParams struct {
	AccountID        uuid.UUID
	Amount           int64
	Kind             domain.TransactionKind
	Reason           string
	Links            domain.TransactionLinks
	IdempotencyToken string
}

type WithdrawParams struct {
	AccountID        uuid.UUID
	Amount           int64
	Reason           string
	IdempotencyToken string
}

type TransferParams struct {
	SenderID         uuid.UUID
	ReceiverID       uuid.UUID
	Amount           int64
	Reason           string
	IdempotencyToken string
}

// AdjustParams apply a signed administrative correction. A reason is
// required; daily limits do not apply.
type AdjustParams struct {
	AccountID        uuid.UUID
	Amount           int64
	Reason           string
	IdempotencyToken string
}

type HistoryQuery struct {
	AccountID uuid.UUID
	Kind      *domain.TransactionKind
	Limit     int
}

// TransactionResult reports one committed single-account mutation.
type TransactionResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"new_balance"`
}

// TransferResult reports both committed legs of a transfer.
type TransferResult struct {
	TransferID            uuid.UUID `json:"transfer_id"`
	SenderTransactionID   uuid.UUID `json:"sender_transaction_id"`
	ReceiverTransactionID uuid.UUID `json:"receiver_transaction_id"`
	SenderBalance         int64     `json:"sender_balance"`
	ReceiverBalance       int64     `json:"receiver_balance"`
}

func resultFrom(record domain.LedgerTransaction) TransactionResult {
	return TransactionResult{
		TransactionID: record.ID,
		AccountID:     record.AccountID,
		Amount:        record.Amount,
		NewBalance:    record.BalanceAfter,
	}
}
