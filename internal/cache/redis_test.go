package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"posts"},
		},
		{
			name:  "multiple parts",
			parts: []string{"comments", "latest", "7"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}

	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("HashKey() should keep part boundaries apart")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "naqd:test",
		},
		{
			name:     "key with colon",
			key:      "client:abc:failedAttempts",
			expected: "naqd:client:abc:failedAttempts",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "naqd:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCache_NilIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if c.Enabled() {
		t.Error("nil cache should not be enabled")
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Get() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.Set(ctx, "k", "v", time.Second); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Set() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Delete() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
