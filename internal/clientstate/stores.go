package clientstate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/naqd/naqd/internal/cache"
	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/provenance"
)

// SessionTTL bounds how long a session flag survives without a browser
// closing to clear it.
const SessionTTL = 12 * time.Hour

// Ids come from cookies and headers, so they are hashed before they become
// part of a key.
func clientKey(clientID, name string) string {
	return "client:" + cache.HashKey(clientID) + ":" + name
}

func sessionKey(sessionID, name string) string {
	return "session:" + cache.HashKey(sessionID) + ":" + name
}

// ProvenanceStore persists one client's provenance record
type ProvenanceStore struct {
	backend  Backend
	clientID string
}

// NewProvenanceStore creates a provenance.Store for clientID
func NewProvenanceStore(backend Backend, clientID string) *ProvenanceStore {
	return &ProvenanceStore{backend: backend, clientID: clientID}
}

// Load implements provenance.Store
func (s *ProvenanceStore) Load(ctx context.Context) (provenance.Record, error) {
	val, _, err := s.backend.Get(ctx, clientKey(s.clientID, provenance.StorageKey))
	if err != nil {
		return provenance.Record{}, err
	}
	return provenance.Decode(val)
}

// Save implements provenance.Store
func (s *ProvenanceStore) Save(ctx context.Context, rec provenance.Record) error {
	val, err := provenance.Encode(rec)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, clientKey(s.clientID, provenance.StorageKey), val, 0)
}

// GateStore persists one client's gate state. Lockouts are stored per client
// without expiry; the session flag is stored per session with SessionTTL.
type GateStore struct {
	backend   Backend
	clientID  string
	sessionID string
}

// NewGateStore creates a gate.StateStore for clientID and sessionID
func NewGateStore(backend Backend, clientID, sessionID string) *GateStore {
	return &GateStore{backend: backend, clientID: clientID, sessionID: sessionID}
}

// LoadLockout implements gate.StateStore
func (s *GateStore) LoadLockout(ctx context.Context, action gate.Action) (gate.Lockout, error) {
	disabledKey, attemptsKey := gate.Keys(action)

	var lockout gate.Lockout
	val, found, err := s.backend.Get(ctx, clientKey(s.clientID, disabledKey))
	if err != nil {
		return lockout, err
	}
	lockout.Disabled = found && val == "true"

	val, found, err = s.backend.Get(ctx, clientKey(s.clientID, attemptsKey))
	if err != nil {
		return lockout, err
	}
	if found {
		n, err := strconv.Atoi(val)
		if err != nil {
			return lockout, fmt.Errorf("bad %s value %q: %w", attemptsKey, val, err)
		}
		lockout.FailedAttempts = n
	}
	return lockout, nil
}

// SaveLockout implements gate.StateStore
func (s *GateStore) SaveLockout(ctx context.Context, action gate.Action, lockout gate.Lockout) error {
	disabledKey, attemptsKey := gate.Keys(action)
	if err := s.backend.Set(ctx, clientKey(s.clientID, attemptsKey), strconv.Itoa(lockout.FailedAttempts), 0); err != nil {
		return err
	}
	return s.backend.Set(ctx, clientKey(s.clientID, disabledKey), strconv.FormatBool(lockout.Disabled), 0)
}

// Session implements gate.StateStore
func (s *GateStore) Session(ctx context.Context, action gate.Action) (bool, error) {
	if s.sessionID == "" {
		return false, nil
	}
	val, found, err := s.backend.Get(ctx, sessionKey(s.sessionID, string(action)+":"+gate.SessionKey))
	if err != nil {
		return false, err
	}
	return found && val == "true", nil
}

// SetSession implements gate.StateStore
func (s *GateStore) SetSession(ctx context.Context, action gate.Action, authenticated bool) error {
	if s.sessionID == "" {
		return nil
	}
	key := sessionKey(s.sessionID, string(action)+":"+gate.SessionKey)
	if !authenticated {
		return s.backend.Delete(ctx, key)
	}
	return s.backend.Set(ctx, key, "true", SessionTTL)
}
