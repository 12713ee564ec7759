package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account holds a user's point balance. Balances are whole points and never
// go negative through a committed ledger operation.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceSummary is derived by folding an account's ledger rows.
type BalanceSummary struct {
	AccountID        uuid.UUID `json:"account_id"`
	TotalIn          int64     `json:"total_in"`
	TotalOut         int64     `json:"total_out"`
	Net              int64     `json:"net"`
	TransactionCount int       `json:"transaction_count"`
}
