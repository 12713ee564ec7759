package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEvent describes one committed mutation for downstream consumers.
// Delivery is fire-and-forget; a lost event never affects the ledger.
type LedgerEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	Kind          TransactionKind `json:"kind"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        int64           `json:"amount"`
	BalanceAfter  int64           `json:"balance_after"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	TransferID    *uuid.UUID      `json:"transfer_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
