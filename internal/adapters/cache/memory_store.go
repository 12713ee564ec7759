package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Uzinex/Boost/internal/domain"
	"github.com/Uzinex/Boost/internal/ports"
)

// MemoryStore is the in-process expiring key-value store used by tests and
// local runs. Expiry is checked lazily against the injected clock.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	nowFn   func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(func() time.Time { return time.Now().UTC() })
}

// NewMemoryStoreWithClock lets tests drive window expiry without sleeping.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), nowFn: now}
}

var _ ports.KeyValueStore = (*MemoryStore)(nil)

// live returns the entry at key, dropping it first if it has expired.
// Callers must hold mu.
func (s *MemoryStore) live(key string, now time.Time) (memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key, s.nowFn())
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := decodeJSON(key, raw, out); err != nil {
		return true, err
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := encodeValue(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{value: payload}
	if ttl > 0 {
		entry.expiresAt = s.nowFn().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	var removed int64
	for _, key := range keys {
		if _, ok := s.live(key, now); ok {
			removed++
		}
		delete(s.entries, key)
	}
	return removed, nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(key, s.nowFn())
	return ok, nil
}

func (s *MemoryStore) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	var current int64
	e, ok := s.live(key, now)
	if ok {
		parsed, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: counter at %s: %v", domain.ErrCacheData, key, err)
		}
		current = parsed
	}
	next := current + delta
	entry := memoryEntry{value: strconv.FormatInt(next, 10)}
	if ok {
		entry.expiresAt = e.expiresAt
	}
	if entry.expiresAt.IsZero() && ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	s.entries[key] = entry
	return next, nil
}

func (s *MemoryStore) SetExpiry(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	e, ok := s.live(key, now)
	if !ok {
		return false, nil
	}
	if ttl <= 0 {
		delete(s.entries, key)
		return true, nil
	}
	e.expiresAt = now.Add(ttl)
	s.entries[key] = e
	return true, nil
}

func (s *MemoryStore) RemainingTTL(_ context.Context, key string) (time.Duration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	e, ok := s.live(key, now)
	if !ok || e.expiresAt.IsZero() {
		return 0, false, nil
	}
	return e.expiresAt.Sub(now), true, nil
}

func (s *MemoryStore) Close() error { return nil }
