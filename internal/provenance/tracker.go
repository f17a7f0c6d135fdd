// Package provenance remembers which posts and comments were created from one
// client, so the interface can highlight "your" content. It is decoration
// only and must never be used to authorize anything.
package provenance

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StorageKey is the namespaced key the record is persisted under
const StorageKey = "user-content-storage"

// Kind tells posts and comments apart
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// ParseKind parses "post" or "comment"
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPost, KindComment:
		return k, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// Record is the persisted state: append-only id sequences per kind
type Record struct {
	Posts    []string `json:"posts" yaml:"posts"`
	Comments []string `json:"comments" yaml:"comments"`
}

func (r *Record) list(kind Kind) *[]string {
	if kind == KindPost {
		return &r.Posts
	}
	return &r.Comments
}

// Store persists a Record
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// Tracker answers "did I create this?" for one client. The record is loaded
// from the store once, on first use; every RecordCreated writes it back.
type Tracker struct {
	store Store

	mu     sync.Mutex
	loaded bool
	rec    Record
}

// NewTracker creates a tracker over the given store
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

func (t *Tracker) load(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	rec, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load provenance: %w", err)
	}
	t.rec = rec
	t.loaded = true
	return nil
}

// RecordCreated appends id to the sequence for kind. Duplicates are kept;
// only membership matters.
func (t *Tracker) RecordCreated(ctx context.Context, kind Kind, id string) error {
	if kind != KindPost && kind != KindComment {
		return fmt.Errorf("unknown content kind %q", kind)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return err
	}
	list := t.rec.list(kind)
	*list = append(*list, id)

	if err := t.store.Save(ctx, t.snapshot()); err != nil {
		return fmt.Errorf("failed to save provenance: %w", err)
	}
	return nil
}

// WasCreatedByMe reports whether id was recorded for kind. A post id never
// matches as a comment and the other way round.
func (t *Tracker) WasCreatedByMe(ctx context.Context, kind Kind, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return false, err
	}
	if kind != KindPost && kind != KindComment {
		return false, nil
	}
	for _, v := range *t.rec.list(kind) {
		if v == id {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot returns a copy of the current record
func (t *Tracker) Snapshot(ctx context.Context) (Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.load(ctx); err != nil {
		return Record{}, err
	}
	return t.snapshot(), nil
}

func (t *Tracker) snapshot() Record {
	return Record{
		Posts:    append([]string(nil), t.rec.Posts...),
		Comments: append([]string(nil), t.rec.Comments...),
	}
}
