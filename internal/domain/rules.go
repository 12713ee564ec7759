package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuleLimits configure the balance rule checks. Zero fields fall back to the
// platform defaults.
type RuleLimits struct {
	MinDeposit            int64
	MinWithdraw           int64
	MaxWithdraw           int64
	MaxDailyWithdrawCount int
	MaxDailyWithdrawSum   int64
	WithdrawCooldown      time.Duration
	MinTransfer           int64
}

// DefaultRuleLimits returns the platform's standard point-currency limits.
func DefaultRuleLimits() RuleLimits {
	return RuleLimits{
		MinDeposit:            5_000,
		MinWithdraw:           10_000,
		MaxWithdraw:           5_000_000,
		MaxDailyWithdrawCount: 3,
		MaxDailyWithdrawSum:   10_000_000,
		WithdrawCooldown:      30 * time.Second,
		MinTransfer:           1_000,
	}
}

// DailyWindow is the span of recent history inspected by per-day checks.
const DailyWindow = 24 * time.Hour

// Rules evaluates balance mutation requests. A deny decision is a RuleError
// carrying a short user-facing reason; the ledger treats the outcome as an
// opaque pass/fail.
type Rules struct {
	limits RuleLimits
}

func NewRules(limits RuleLimits) *Rules {
	defaults := DefaultRuleLimits()
	if limits.MinDeposit <= 0 {
		limits.MinDeposit = defaults.MinDeposit
	}
	if limits.MinWithdraw <= 0 {
		limits.MinWithdraw = defaults.MinWithdraw
	}
	if limits.MaxWithdraw <= 0 {
		limits.MaxWithdraw = defaults.MaxWithdraw
	}
	if limits.MaxDailyWithdrawCount <= 0 {
		limits.MaxDailyWithdrawCount = defaults.MaxDailyWithdrawCount
	}
	if limits.MaxDailyWithdrawSum <= 0 {
		limits.MaxDailyWithdrawSum = defaults.MaxDailyWithdrawSum
	}
	if limits.WithdrawCooldown <= 0 {
		limits.WithdrawCooldown = defaults.WithdrawCooldown
	}
	if limits.MinTransfer <= 0 {
		limits.MinTransfer = defaults.MinTransfer
	}
	return &Rules{limits: limits}
}

func (r *Rules) CheckDeposit(amount int64) error {
	if amount <= 0 {
		return &RuleError{Reason: "deposit amount must be positive"}
	}
	if amount < r.limits.MinDeposit {
		return &RuleError{Reason: fmt.Sprintf("minimum deposit is %d points", r.limits.MinDeposit)}
	}
	// The per-operation cap is shared with withdrawals.
	if amount > r.limits.MaxWithdraw {
		return &RuleError{Reason: fmt.Sprintf("maximum deposit is %d points", r.limits.MaxWithdraw)}
	}
	return nil
}

// CheckWithdraw validates amount bounds, the per-day count and sum, and the
// cooldown since the account's last withdrawal. recent must cover at least
// the last 24 hours of the account's ledger rows.
func (r *Rules) CheckWithdraw(now time.Time, amount int64, recent []LedgerTransaction) error {
	if amount <= 0 {
		return &RuleError{Reason: "withdrawal amount must be positive"}
	}
	if amount < r.limits.MinWithdraw {
		return &RuleError{Reason: fmt.Sprintf("minimum withdrawal is %d points", r.limits.MinWithdraw)}
	}
	if amount > r.limits.MaxWithdraw {
		return &RuleError{Reason: fmt.Sprintf("maximum withdrawal is %d points", r.limits.MaxWithdraw)}
	}

	cutoff := now.Add(-DailyWindow)
	var (
		count    int
		sum      int64
		lastSeen time.Time
	)
	for _, tx := range recent {
		if tx.Kind != KindWithdraw || tx.CreatedAt.Before(cutoff) {
			continue
		}
		count++
		if tx.Amount < 0 {
			sum += -tx.Amount
		} else {
			sum += tx.Amount
		}
		if tx.CreatedAt.After(lastSeen) {
			lastSeen = tx.CreatedAt
		}
	}

	if count >= r.limits.MaxDailyWithdrawCount {
		return &RuleError{Reason: fmt.Sprintf("daily withdrawal limit of %d reached", r.limits.MaxDailyWithdrawCount)}
	}
	if sum+amount > r.limits.MaxDailyWithdrawSum {
		return &RuleError{Reason: fmt.Sprintf("daily withdrawal sum limit of %d points exceeded", r.limits.MaxDailyWithdrawSum)}
	}
	if !lastSeen.IsZero() {
		if elapsed := now.Sub(lastSeen); elapsed < r.limits.WithdrawCooldown {
			wait := r.limits.WithdrawCooldown - elapsed
			return &RuleError{Reason: fmt.Sprintf("withdrawal cooldown active, retry in %s", wait.Round(time.Second))}
		}
	}
	return nil
}

func (r *Rules) CheckTransfer(senderID, receiverID uuid.UUID, amount int64) error {
	if senderID == receiverID {
		return &RuleError{Reason: "cannot transfer to the same account"}
	}
	if amount <= 0 {
		return &RuleError{Reason: "transfer amount must be positive"}
	}
	if amount < r.limits.MinTransfer {
		return &RuleError{Reason: fmt.Sprintf("minimum transfer is %d points", r.limits.MinTransfer)}
	}
	return nil
}

// CheckAdjust validates administrative adjustments. Daily limits do not
// apply; the non-negative balance invariant is enforced by the ledger.
func (r *Rules) CheckAdjust(amount int64) error {
	if amount == 0 {
		return &RuleError{Reason: "adjustment amount must be non-zero"}
	}
	return nil
}
