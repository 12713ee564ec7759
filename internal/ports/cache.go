package ports

import (
	"context"
	"time"
)

// KeyValueStore is the expiring key-value contract shared by the networked
// and in-memory cache implementations. Keys follow the
// <namespace>:<segment>[:<segment>...] shape; a zero ttl stores without
// expiry.
type KeyValueStore interface {
	// Get returns the stored text. Strings and byte slices round-trip
	// verbatim; other values come back as their compact JSON form.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// GetJSON decodes the stored value into out. A value that cannot be
	// decoded is reported as domain.ErrCacheData.
	GetJSON(ctx context.Context, key string, out any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) (removed int64, err error)
	Exists(ctx context.Context, key string) (bool, error)
	// Increment adds delta to the counter at key as one atomic step. The ttl
	// is applied only when the key carries no expiry yet, so a window's
	// lifetime is fixed by its first increment.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	// SetExpiry replaces the key's expiry. A non-positive ttl removes the
	// key. Returns false when the key does not exist.
	SetExpiry(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// RemainingTTL reports the time until expiry. known is false when the
	// key is absent or carries no expiry.
	RemainingTTL(ctx context.Context, key string) (ttl time.Duration, known bool, err error)
	Close() error
}

// IdempotencyGuard serializes logical attempts keyed by caller tokens. At
// most one registration of a token is live at a time.
type IdempotencyGuard interface {
	Check(ctx context.Context, token string) (bool, error)
	// Register locks token for ttl (the guard default when ttl <= 0). A live
	// registration fails with domain.ErrIdempotencyConflict.
	Register(ctx context.Context, token string, ttl time.Duration) error
	Release(ctx context.Context, token string) error
	// Run registers token, executes fn, and releases the token when fn fails
	// with anything but domain.ErrAmbiguousCommit. On success the token stays
	// registered until its TTL elapses.
	Run(ctx context.Context, token string, fn func(context.Context) error) error
}

// RateLimiter bounds how often a scope/identifier pair may proceed within a
// fixed window.
type RateLimiter interface {
	// Check counts one attempt and fails with domain.ErrRateLimited once the
	// window count exceeds the limit.
	Check(ctx context.Context, scope, identifier string) error
	Reset(ctx context.Context, scope, identifier string) error
	// AllowOnce reports whether this is the first attempt of the current
	// window.
	AllowOnce(ctx context.Context, scope, identifier string) (bool, error)
}
