package clientstate

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naqd/naqd/internal/cache"
	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/provenance"
)

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, m.Set(ctx, "b", "2", 0))

	val, found, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", val)

	now = now.Add(time.Minute)
	_, found, err = m.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = m.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, m.Delete(ctx, "b"))
	_, found, _ = m.Get(ctx, "b")
	assert.False(t, found)
}

func TestClientKey_HashesIDs(t *testing.T) {
	key := clientKey("evil:id", "failedAttempts")
	assert.Equal(t, "client:"+cache.HashKey("evil:id")+":failedAttempts", key)
	assert.NotEqual(t, key, clientKey("evil", "id:failedAttempts"))
}

func TestForCache_DisabledFallsBackToMemory(t *testing.T) {
	var c *cache.Cache
	_, ok := ForCache(c).(*Memory)
	assert.True(t, ok)
}

func TestRedis_ErrorsSurface(t *testing.T) {
	ctx := context.Background()
	c := cache.NewWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}))
	t.Cleanup(func() { _ = c.Close() })

	backend := ForCache(c)
	r, ok := backend.(*Redis)
	require.True(t, ok)

	val, found, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Empty(t, val)
	assert.Error(t, r.Set(ctx, "k", "v", time.Minute))
	assert.Error(t, r.Delete(ctx, "k"))

	// Stores built on it report the failure rather than an empty record.
	_, err = NewGateStore(r, "client", "session").LoadLockout(ctx, gate.ActionDelete)
	assert.Error(t, err)
}

func TestRedis_DisabledCache(t *testing.T) {
	ctx := context.Background()
	r := NewRedis(nil)

	_, found, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheDisabled)
	assert.False(t, found)
	assert.ErrorIs(t, r.Set(ctx, "k", "v", 0), cache.ErrCacheDisabled)
	assert.ErrorIs(t, r.Delete(ctx, "k"), cache.ErrCacheDisabled)
}

func TestProvenanceStore_PerClient(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()

	mine := provenance.NewTracker(NewProvenanceStore(backend, "client-a"))
	require.NoError(t, mine.RecordCreated(ctx, provenance.KindPost, "p1"))
	require.NoError(t, mine.RecordCreated(ctx, provenance.KindComment, "c1"))

	raw, found, err := backend.Get(ctx, clientKey("client-a", "user-content-storage"))
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"posts":["p1"],"comments":["c1"]}`, raw)

	// A tracker built later over the same client sees the record.
	reloaded := provenance.NewTracker(NewProvenanceStore(backend, "client-a"))
	ok, err := reloaded.WasCreatedByMe(ctx, provenance.KindPost, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	other := provenance.NewTracker(NewProvenanceStore(backend, "client-b"))
	ok, err = other.WasCreatedByMe(ctx, provenance.KindPost, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateStore_LockoutOutlivesSession(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	verifier := gate.NewSecretVerifier("write", "remove")

	first := gate.New(gate.ActionAuth, verifier, NewGateStore(backend, "c1", "s1"))
	res, err := first.Authenticate(ctx, "write")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	for i := 0; i < 2; i++ {
		_, err := first.Authenticate(ctx, "bad")
		require.NoError(t, err)
	}

	// Same session, fresh gate: still authenticated, two failures counted.
	same := gate.New(gate.ActionAuth, verifier, NewGateStore(backend, "c1", "s1"))
	status, err := same.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	assert.Equal(t, 2, status.FailedAttempts)

	// New session: the flag is gone, the counter is not.
	next := gate.New(gate.ActionAuth, verifier, NewGateStore(backend, "c1", "s2"))
	status, err = next.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Authenticated)
	assert.Equal(t, 2, status.FailedAttempts)

	_, err = next.Authenticate(ctx, "bad")
	require.NoError(t, err)

	val, _, err := backend.Get(ctx, clientKey("c1", "authDisabled"))
	require.NoError(t, err)
	assert.Equal(t, "true", val)
	val, _, err = backend.Get(ctx, clientKey("c1", "failedAttempts"))
	require.NoError(t, err)
	assert.Equal(t, "3", val)

	// Another browser is unaffected.
	stranger := gate.New(gate.ActionAuth, verifier, NewGateStore(backend, "c2", "s9"))
	disabled, err := stranger.IsDisabled(ctx)
	require.NoError(t, err)
	assert.False(t, disabled)
}

func TestGateStore_NoSessionID(t *testing.T) {
	ctx := context.Background()
	s := NewGateStore(NewMemory(), "c1", "")

	require.NoError(t, s.SetSession(ctx, gate.ActionAuth, true))
	ok, err := s.Session(ctx, gate.ActionAuth)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateStore_CorruptCounter(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.Set(ctx, clientKey("c1", "deleteFailedAttempts"), "many", 0))

	_, err := NewGateStore(backend, "c1", "s1").LoadLockout(ctx, gate.ActionDelete)
	assert.Error(t, err)
}
