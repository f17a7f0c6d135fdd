package provenance

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps the record in process memory
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored record
func (s *MemoryStore) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Record{
		Posts:    append([]string(nil), s.rec.Posts...),
		Comments: append([]string(nil), s.rec.Comments...),
	}, nil
}

// Save replaces the stored record
func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	return nil
}

// Encode serializes a record for key-value storage
func Encode(rec Record) (string, error) {
	if rec.Posts == nil {
		rec.Posts = []string{}
	}
	if rec.Comments == nil {
		rec.Comments = []string{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode provenance: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored record. An empty value is an empty record.
func Decode(value string) (Record, error) {
	var rec Record
	if value == "" {
		return rec, nil
	}
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode provenance: %w", err)
	}
	return rec, nil
}
