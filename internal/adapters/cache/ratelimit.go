package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// NamespaceRateLimit prefixes window counter keys.
const NamespaceRateLimit = "ratelimit"

const (
	DefaultRateLimit  = int64(5)
	DefaultRateWindow = 10 * time.Second
)

// WindowLimiter is a fixed-window counter limiter over a KeyValueStore. The
// window TTL is set by the first increment only; counts reset solely through
// key expiry, so a boundary burst may pass up to twice the limit.
type WindowLimiter struct {
	store     ports.KeyValueStore
	namespace string
	limit     int64
	window    time.Duration
	failOpen  bool
}

type WindowLimiterOptions struct {
	Namespace string
	Limit     int64
	Window    time.Duration
	// FailOpen lets checks pass when the store is unreachable. The default
	// fail-closed mode rejects instead.
	FailOpen bool
}

func NewWindowLimiter(store ports.KeyValueStore, opts WindowLimiterOptions) *WindowLimiter {
	if opts.Namespace == "" {
		opts.Namespace = NamespaceRateLimit
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultRateLimit
	}
	if opts.Window <= 0 {
		opts.Window = DefaultRateWindow
	}
	return &WindowLimiter{
		store:     store,
		namespace: opts.Namespace,
		limit:     opts.Limit,
		window:    opts.Window,
		failOpen:  opts.FailOpen,
	}
}

var _ ports.RateLimiter = (*WindowLimiter)(nil)

func (l *WindowLimiter) key(scope, identifier string) string {
	return Key(l.namespace, scope, identifier)
}

// Check counts one attempt for scope/identifier and fails with a
// domain.RateLimitError once the window count exceeds the limit.
func (l *WindowLimiter) Check(ctx context.Context, scope, identifier string) error {
	key := l.key(scope, identifier)
	count, err := l.store.Increment(ctx, key, 1, l.window)
	if err != nil {
		if l.skipOnOutage(ctx, "check", scope, identifier, err) {
			return nil
		}
		return err
	}
	if count <= l.limit {
		return nil
	}
	retryAfter := l.window
	if ttl, known, ttlErr := l.store.RemainingTTL(ctx, key); ttlErr == nil && known {
		retryAfter = ttl
	}
	return &domain.RateLimitError{Scope: scope, Identifier: identifier, Limit: l.limit, RetryAfter: retryAfter}
}

// Reset clears the current window for scope/identifier.
func (l *WindowLimiter) Reset(ctx context.Context, scope, identifier string) error {
	_, err := l.store.Delete(ctx, l.key(scope, identifier))
	return err
}

// AllowOnce reports whether this is the first attempt of the current window.
func (l *WindowLimiter) AllowOnce(ctx context.Context, scope, identifier string) (bool, error) {
	count, err := l.store.Increment(ctx, l.key(scope, identifier), 1, l.window)
	if err != nil {
		if l.skipOnOutage(ctx, "allow_once", scope, identifier, err) {
			return true, nil
		}
		return false, err
	}
	return count == 1, nil
}

func (l *WindowLimiter) skipOnOutage(ctx context.Context, op, scope, identifier string, err error) bool {
	if !l.failOpen || !errors.Is(err, domain.ErrCacheUnavailable) {
		return false
	}
	slog.Default().WarnContext(ctx, "rate limit check skipped, store unreachable",
		"module", "cache",
		"layer", "adapter",
		"operation", op,
		"outcome", "fail_open",
		"scope", scope,
		"identifier", identifier,
		"error", err,
	)
	return true
}
