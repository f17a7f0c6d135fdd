package provenance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	MemoryStore
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func (s *countingStore) Load(ctx context.Context) (Record, error) {
	s.loads++
	if s.loadErr != nil {
		return Record{}, s.loadErr
	}
	return s.MemoryStore.Load(ctx)
}

func (s *countingStore) Save(ctx context.Context, rec Record) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, rec)
}

func TestTracker_RecordThenQuery(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryStore())

	require.NoError(t, tracker.RecordCreated(ctx, KindPost, "p1"))

	mine, err := tracker.WasCreatedByMe(ctx, KindPost, "p1")
	require.NoError(t, err)
	assert.True(t, mine)

	mine, err = tracker.WasCreatedByMe(ctx, KindComment, "p1")
	require.NoError(t, err)
	assert.False(t, mine, "a post id must not register as a comment")

	mine, err = tracker.WasCreatedByMe(ctx, KindPost, "p2")
	require.NoError(t, err)
	assert.False(t, mine)
}

func TestTracker_CrossKind(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(NewMemoryStore())

	require.NoError(t, tracker.RecordCreated(ctx, KindComment, "c1"))

	tests := []struct {
		kind Kind
		id   string
		want bool
	}{
		{KindComment, "c1", true},
		{KindPost, "c1", false},
		{KindComment, "c2", false},
		{Kind("other"), "c1", false},
	}
	for _, tt := range tests {
		got, err := tracker.WasCreatedByMe(ctx, tt.kind, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.kind, tt.id)
	}
}

func TestTracker_DuplicatesAreKept(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tracker := NewTracker(store)

	require.NoError(t, tracker.RecordCreated(ctx, KindPost, "p1"))
	require.NoError(t, tracker.RecordCreated(ctx, KindPost, "p1"))

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p1"}, rec.Posts)
	assert.Empty(t, rec.Comments)
}

func TestTracker_LoadsOnceAndSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{}

	first := NewTracker(store)
	require.NoError(t, first.RecordCreated(ctx, KindPost, "p1"))
	require.NoError(t, first.RecordCreated(ctx, KindComment, "c1"))
	_, err := first.WasCreatedByMe(ctx, KindPost, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)
	assert.Equal(t, 2, store.saves)

	// A new tracker over the same store sees the persisted ids.
	second := NewTracker(store)
	mine, err := second.WasCreatedByMe(ctx, KindComment, "c1")
	require.NoError(t, err)
	assert.True(t, mine)
}

func TestTracker_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("storage unavailable")

	tracker := NewTracker(&countingStore{loadErr: boom})
	_, err := tracker.WasCreatedByMe(ctx, KindPost, "p1")
	assert.ErrorIs(t, err, boom)

	tracker = NewTracker(&countingStore{saveErr: boom})
	err = tracker.RecordCreated(ctx, KindPost, "p1")
	assert.ErrorIs(t, err, boom)

	err = tracker.RecordCreated(ctx, Kind("thread"), "x")
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	value, err := Encode(Record{Posts: []string{"p1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"posts":["p1"],"comments":[]}`, value)

	rec, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, rec.Posts)

	_, err = Decode("{not json")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Post ")
	require.NoError(t, err)
	assert.Equal(t, KindPost, k)

	_, err = ParseKind("reply")
	assert.Error(t, err)
}
