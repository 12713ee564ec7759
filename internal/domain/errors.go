package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCacheUnavailable is returned after the networked store has exhausted
	// its bounded retries.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrCacheData marks a stored value that cannot be decoded.
	ErrCacheData = errors.New("malformed cache value")
	// ErrIdempotencyConflict means the token is locked by a live attempt.
	ErrIdempotencyConflict = errors.New("idempotency token already registered")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrRuleViolation       = errors.New("rule violation")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	// ErrAmbiguousCommit marks a commit whose outcome is unknown to the
	// caller. It must not be retried with the same idempotency token.
	ErrAmbiguousCommit = errors.New("commit outcome unknown")
)

// RateLimitError reports a breached window and the time until it resets.
type RateLimitError struct {
	Scope      string
	Identifier string
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s:%s (limit %d), retry after %s",
		e.Scope, e.Identifier, e.Limit, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RuleError is a denied rule check with a short user-facing reason.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return "rule violation: " + e.Reason }

func (e *RuleError) Unwrap() error { return ErrRuleViolation }

// AmbiguousCommitError carries the reconciliation context for a mutation
// whose commit outcome is unknown.
type AmbiguousCommitError struct {
	Operation string
	AccountID uuid.UUID
	Amount    int64
	Token     string
	Err       error
}

func (e *AmbiguousCommitError) Error() string {
	return fmt.Sprintf("%s commit outcome unknown (account %s, amount %d): %v",
		e.Operation, e.AccountID, e.Amount, e.Err)
}

func (e *AmbiguousCommitError) Unwrap() error { return ErrAmbiguousCommit }
