package gate

import (
	"context"
	"sync"
)

// MemoryStore keeps gate state in process memory
type MemoryStore struct {
	mu       sync.Mutex
	lockouts map[Action]Lockout
	sessions map[Action]bool
}

// NewMemoryStore creates an empty in-memory state store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lockouts: make(map[Action]Lockout),
		sessions: make(map[Action]bool),
	}
}

// LoadLockout implements StateStore
func (s *MemoryStore) LoadLockout(ctx context.Context, action Action) (Lockout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockouts[action], nil
}

// SaveLockout implements StateStore
func (s *MemoryStore) SaveLockout(ctx context.Context, action Action, lockout Lockout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockouts[action] = lockout
	return nil
}

// Session implements StateStore
func (s *MemoryStore) Session(ctx context.Context, action Action) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[action], nil
}

// SetSession implements StateStore
func (s *MemoryStore) SetSession(ctx context.Context, action Action, authenticated bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[action] = authenticated
	return nil
}

// EndSession forgets every session flag, as closing the browser would
func (s *MemoryStore) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[Action]bool)
}
