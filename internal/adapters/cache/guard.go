package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// NamespaceIdempotency prefixes idempotency token keys.
const NamespaceIdempotency = "idempotency"

// DefaultIdempotencyTTL bounds how long a successful attempt keeps its token
// locked against late duplicate submissions.
const DefaultIdempotencyTTL = 60 * time.Second

// TokenGuard implements ports.IdempotencyGuard over any KeyValueStore.
// Registration is an atomic increment-to-1, so two concurrent attempts on
// the same token cannot both win.
type TokenGuard struct {
	store     ports.KeyValueStore
	namespace string
	ttl       time.Duration
}

type TokenGuardOptions struct {
	Namespace string
	TTL       time.Duration
}

func NewTokenGuard(store ports.KeyValueStore, opts TokenGuardOptions) *TokenGuard {
	if opts.Namespace == "" {
		opts.Namespace = NamespaceIdempotency
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultIdempotencyTTL
	}
	return &TokenGuard{store: store, namespace: opts.Namespace, ttl: opts.TTL}
}

var _ ports.IdempotencyGuard = (*TokenGuard)(nil)

func (g *TokenGuard) key(token string) string {
	return Key(g.namespace, token)
}

// Check reports whether token is currently registered.
func (g *TokenGuard) Check(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("%w: empty idempotency token", domain.ErrInvalidInput)
	}
	return g.store.Exists(ctx, g.key(token))
}

// Register locks token until ttl elapses. A post-increment count above one
// means another attempt holds the token; the loser leaves the winner's entry
// and its expiry untouched.
func (g *TokenGuard) Register(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("%w: empty idempotency token", domain.ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = g.ttl
	}
	count, err := g.store.Increment(ctx, g.key(token), 1, ttl)
	if err != nil {
		return err
	}
	if count > 1 {
		return fmt.Errorf("%w: token %q", domain.ErrIdempotencyConflict, token)
	}
	return nil
}

// Release unconditionally frees the token.
func (g *TokenGuard) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, err := g.store.Delete(ctx, g.key(token))
	return err
}

// Run registers token, executes fn, and releases the token when fn fails so
// the caller may retry. A success keeps the token registered until TTL; so
// does an ambiguous commit, whose outcome must be reconciled before the
// token is reused.
func (g *TokenGuard) Run(ctx context.Context, token string, fn func(context.Context) error) error {
	if err := g.Register(ctx, token, g.ttl); err != nil {
		return err
	}
	err := fn(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrAmbiguousCommit) {
		if releaseErr := g.Release(ctx, token); releaseErr != nil {
			slog.Default().WarnContext(ctx, "idempotency token release failed",
				"module", "cache",
				"layer", "adapter",
				"operation", "release",
				"outcome", "failure",
				"token", token,
				"error", releaseErr,
			)
		}
	}
	return err
}
