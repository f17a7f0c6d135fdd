package api

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/naqd/naqd/internal/clientstate"
	"github.com/naqd/naqd/pkg/logging"
)

// Keys of cached responses. Every mutation drops all of them.
const (
	postListKey       = "responses:posts"
	latestCommentsKey = "responses:latest_comments"
)

var responseKeys = []string{postListKey, latestCommentsKey}

// ResponseCache memoizes shared listings, in Redis in production. A disabled
// cache loads every time. Cache failures never fail a request.
type ResponseCache struct {
	store  clientstate.Backend
	ttl    time.Duration
	logger *zap.Logger
}

// NewResponseCache creates a response cache. A nil store or a zero TTL disables it.
func NewResponseCache(store clientstate.Backend, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store:  store,
		ttl:    ttl,
		logger: logging.WithComponent("response-cache"),
	}
}

func (rc *ResponseCache) enabled() bool {
	return rc != nil && rc.store != nil && rc.ttl > 0
}

// fetchCached returns the cached value under key, or calls load on a miss
// and caches its result
func fetchCached[T any](ctx context.Context, rc *ResponseCache, key string, load func() (T, error)) (T, error) {
	if rc.enabled() {
		val, found, err := rc.store.Get(ctx, key)
		switch {
		case err != nil:
			rc.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		case found:
			var cached T
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
			rc.logger.Warn("Dropping undecodable cache entry", zap.String("key", key))
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if rc.enabled() {
		data, err := json.Marshal(value)
		if err == nil {
			err = rc.store.Set(ctx, key, string(data), rc.ttl)
		}
		if err != nil {
			rc.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

// Invalidate drops every cached listing
func (rc *ResponseCache) Invalidate(ctx context.Context) {
	if !rc.enabled() {
		return
	}
	for _, key := range responseKeys {
		if err := rc.store.Delete(ctx, key); err != nil {
			rc.logger.Warn("Cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}
