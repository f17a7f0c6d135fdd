// Package clientstate keeps per-browser state on the server: the provenance
// record and the gate counters that a browser would otherwise hold in its own
// storage. Everything is keyed by the client id cookie, plus the session id
// cookie for session-scoped flags.
package clientstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/naqd/naqd/internal/cache"
)

// Backend is a small key-value store. Get reports found=false for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// Memory is an in-process Backend. Entries with a TTL expire lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-process backend
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Backend
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set implements Backend
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Delete implements Backend
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Redis adapts the shared cache client to Backend
type Redis struct {
	cache *cache.Cache
}

// NewRedis wraps c. c must be enabled.
func NewRedis(c *cache.Cache) *Redis {
	return &Redis{cache: c}
}

// Get implements Backend
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements Backend
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.cache.Set(ctx, key, value, ttl)
}

// Delete implements Backend
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.cache.Delete(ctx, key)
}

// ForCache picks the Redis backend when the cache is enabled and falls back
// to process memory otherwise.
func ForCache(c *cache.Cache) Backend {
	if c.Enabled() {
		return NewRedis(c)
	}
	return NewMemory()
}
