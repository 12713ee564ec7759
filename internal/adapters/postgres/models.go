package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/Uzinex/Boost/internal/domain"
)

type accountModel struct {
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey"`
	Balance   int64     `gorm:"column:balance"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "accounts" }

func (m accountModel) toDomain() domain.Account {
	return domain.Account{
		ID:        m.AccountID,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type transactionModel struct {
	TransactionID uuid.UUID  `gorm:"column:transaction_id;type:uuid;primaryKey"`
	AccountID     uuid.UUID  `gorm:"column:account_id"`
	Amount        int64      `gorm:"column:amount"`
	Kind          string     `gorm:"column:kind"`
	TransferID    *uuid.UUID `gorm:"column:transfer_id"`
	OrderID       *uuid.UUID `gorm:"column:order_id"`
	TaskID        *uuid.UUID `gorm:"column:task_id"`
	PaymentID     *uuid.UUID `gorm:"column:payment_id"`
	ReferralID    *uuid.UUID `gorm:"column:referral_id"`
	Reason        string     `gorm:"column:reason"`
	BalanceAfter  int64      `gorm:"column:balance_after"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (transactionModel) TableName() string { return "ledger_transactions" }

func (m transactionModel) toDomain() domain.LedgerTransaction {
	return domain.LedgerTransaction{
		ID:         m.TransactionID,
		AccountID:  m.AccountID,
		Amount:     m.Amount,
		Kind:       domain.TransactionKind(m.Kind),
		TransferID: m.TransferID,
		Links: domain.TransactionLinks{
			OrderID:    m.OrderID,
			TaskID:     m.TaskID,
			PaymentID:  m.PaymentID,
			ReferralID: m.ReferralID,
		},
		Reason:       m.Reason,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt,
	}
}

func transactionModelFrom(tx domain.LedgerTransaction) transactionModel {
	return transactionModel{
		TransactionID: tx.ID,
		AccountID:     tx.AccountID,
		Amount:        tx.Amount,
		Kind:          string(tx.Kind),
		TransferID:    tx.TransferID,
		OrderID:       tx.Links.OrderID,
		TaskID:        tx.Links.TaskID,
		PaymentID:     tx.Links.PaymentID,
		ReferralID:    tx.Links.ReferralID,
		Reason:        tx.Reason,
		BalanceAfter:  tx.BalanceAfter,
		CreatedAt:     tx.CreatedAt,
	}
}
