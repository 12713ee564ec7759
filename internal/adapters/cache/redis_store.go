package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

const (
	defaultOpTimeout  = 3 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
)

// RedisStoreOptions tune the per-call timeout and the bounded retry loop.
type RedisStoreOptions struct {
	OpTimeout  time.Duration
	Attempts   int
	RetryDelay time.Duration
}

// RedisStore is the networked expiring key-value store. Transient
// connectivity failures are retried with linearly increasing backoff;
// exhausted retries surface as domain.ErrCacheUnavailable, server reply
// errors as domain.ErrCacheData.
type RedisStore struct {
	client *redis.Client
	opts   RedisStoreOptions
}

func NewRedisStore(client *redis.Client, opts RedisStoreOptions) *RedisStore {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	return &RedisStore{client: client, opts: opts}
}

var _ ports.KeyValueStore = (*RedisStore)(nil)

// do runs fn under the per-call timeout, retrying transient failures up to
// the configured attempt count.
func (s *RedisStore) do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.opts.Attempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
		err := fn(opCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			var replyErr redis.Error
			if errors.As(err, &replyErr) {
				return fmt.Errorf("%w: %s: %v", domain.ErrCacheData, op, err)
			}
			return err
		}
		lastErr = err
		if attempt == s.opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s interrupted: %v", domain.ErrCacheUnavailable, op, ctx.Err())
		case <-time.After(time.Duration(attempt) * s.opts.RetryDelay):
		}
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v", domain.ErrCacheUnavailable, op, s.opts.Attempts, lastErr)
}

// isTransient separates connectivity faults worth retrying from server
// replies and caller cancellation.
func isTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, redis.ErrClosed):
		return false
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, redis.ErrPoolTimeout),
		errors.Is(err, io.EOF):
		return true
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.do(ctx, "get", func(ctx context.Context) error {
		raw, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		value, found = raw, true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := decodeJSON(key, raw, out); err != nil {
		return true, err
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := encodeValue(value)
	if err != nil {
		return err
	}
	return s.do(ctx, "set", func(ctx context.Context) error {
		return s.client.Set(ctx, key, payload, ttl).Err()
	})
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	var removed int64
	err := s.do(ctx, "delete", func(ctx context.Context) error {
		n, err := s.client.Del(ctx, keys...).Result()
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	return removed, err
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.do(ctx, "exists", func(ctx context.Context) error {
		n, err := s.client.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		found = n > 0
		return nil
	})
	return found, err
}

// Increment pipelines INCRBY with EXPIRE NX so the counter mutation and the
// first-write TTL land as one atomic step.
func (s *RedisStore) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	var value int64
	err := s.do(ctx, "increment", func(ctx context.Context) error {
		var incr *redis.IntCmd
		_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			incr = p.IncrBy(ctx, key, delta)
			if ttl > 0 {
				p.ExpireNX(ctx, key, ttl)
			}
			return nil
		})
		if err != nil {
			return err
		}
		value = incr.Val()
		return nil
	})
	return value, err
}

func (s *RedisStore) SetExpiry(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var applied bool
	err := s.do(ctx, "set_expiry", func(ctx context.Context) error {
		ok, err := s.client.Expire(ctx, key, ttl).Result()
		if err != nil {
			return err
		}
		applied = ok
		return nil
	})
	return applied, err
}

func (s *RedisStore) RemainingTTL(ctx context.Context, key string) (time.Duration, bool, error) {
	var (
		ttl   time.Duration
		known bool
	)
	err := s.do(ctx, "remaining_ttl", func(ctx context.Context) error {
		d, err := s.client.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		// Negative answers mean no key or no expiry.
		if d >= 0 {
			ttl, known = d, true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return ttl, known, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
