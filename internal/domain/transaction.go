package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	KindDeposit       TransactionKind = "deposit"
	KindWithdraw      TransactionKind = "withdraw"
	KindTransferIn    TransactionKind = "transfer_in"
	KindTransferOut   TransactionKind = "transfer_out"
	KindAdjustment    TransactionKind = "adjustment"
	KindTaskReward    TransactionKind = "task_reward"
	KindReferralBonus TransactionKind = "referral_bonus"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdraw, KindTransferIn, KindTransferOut,
		KindAdjustment, KindTaskReward, KindReferralBonus:
		return true
	}
	return false
}

// Credit reports whether the kind funds an account.
func (k TransactionKind) Credit() bool {
	switch k {
	case KindDeposit, KindTaskReward, KindReferralBonus, KindTransferIn:
		return true
	}
	return false
}

// TransactionLinks tie a ledger row to the flow that produced it.
type TransactionLinks struct {
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	TaskID     *uuid.UUID `json:"task_id,omitempty"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	ReferralID *uuid.UUID `json:"referral_id,omitempty"`
}

// LedgerTransaction is one immutable balance mutation. After commit only the
// Reason text may be amended; every other field is frozen. The sum of an
// account's amounts equals its current balance.
type LedgerTransaction struct {
	ID           uuid.UUID        `json:"id"`
	AccountID    uuid.UUID        `json:"account_id"`
	Amount       int64            `json:"amount"`
	Kind         TransactionKind  `json:"kind"`
	TransferID   *uuid.UUID       `json:"transfer_id,omitempty"`
	Links        TransactionLinks `json:"links"`
	Reason       string           `json:"reason,omitempty"`
	BalanceAfter int64            `json:"balance_after"`
	CreatedAt    time.Time        `json:"created_at"`
}
