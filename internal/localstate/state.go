// Package localstate keeps the CLI's client-local state in a yaml file: the
// client id, the provenance record and the gate lockouts. The session flag is
// held in memory only, so it ends with the process.
package localstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/naqd/naqd/internal/gate"
	"github.com/naqd/naqd/internal/provenance"
)

// State is the persisted document
type State struct {
	ClientID             string            `yaml:"client_id"`
	Content              provenance.Record `yaml:"user-content-storage"`
	AuthDisabled         bool              `yaml:"authDisabled"`
	FailedAttempts       int               `yaml:"failedAttempts"`
	DeleteAuthDisabled   bool              `yaml:"deleteAuthDisabled"`
	DeleteFailedAttempts int               `yaml:"deleteFailedAttempts"`
}

// DefaultPath returns ~/.config/naqd/state.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "naqd", "state.yaml"), nil
}

// File is the state file of one device
type File struct {
	path string

	mu      sync.Mutex
	state   State
	session map[gate.Action]bool
}

// Open reads the state file at path, creating it with a fresh client id when
// it does not exist yet.
func Open(path string) (*File, error) {
	f := &File{path: path, session: make(map[gate.Action]bool)}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading state: %w", err)
	default:
		if err := yaml.Unmarshal(data, &f.state); err != nil {
			return nil, fmt.Errorf("parsing state: %w", err)
		}
	}

	if f.state.ClientID == "" {
		f.state.ClientID = uuid.NewString()
		if err := f.save(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Path returns the file location
func (f *File) Path() string {
	return f.path
}

// ClientID returns the persistent id of this device
func (f *File) ClientID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.ClientID
}

// Snapshot returns a copy of the state
func (f *File) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Content = provenance.Record{
		Posts:    append([]string(nil), f.state.Content.Posts...),
		Comments: append([]string(nil), f.state.Content.Comments...),
	}
	return s
}

// save writes the state; f.mu must be held or f not yet shared
func (f *File) save() error {
	data, err := yaml.Marshal(&f.state)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// Provenance returns the provenance.Store view of the file
func (f *File) Provenance() provenance.Store {
	return provenanceView{f}
}

type provenanceView struct {
	f *File
}

func (v provenanceView) Load(ctx context.Context) (provenance.Record, error) {
	return v.f.Snapshot().Content, nil
}

func (v provenanceView) Save(ctx context.Context, rec provenance.Record) error {
	v.f.mu.Lock()
	defer v.f.mu.Unlock()
	v.f.state.Content = rec
	return v.f.save()
}

func (f *File) lockoutFields(action gate.Action) (*bool, *int) {
	if action == gate.ActionDelete {
		return &f.state.DeleteAuthDisabled, &f.state.DeleteFailedAttempts
	}
	return &f.state.AuthDisabled, &f.state.FailedAttempts
}

// LoadLockout implements gate.StateStore
func (f *File) LoadLockout(ctx context.Context, action gate.Action) (gate.Lockout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	disabled, attempts := f.lockoutFields(action)
	return gate.Lockout{FailedAttempts: *attempts, Disabled: *disabled}, nil
}

// SaveLockout implements gate.StateStore
func (f *File) SaveLockout(ctx context.Context, action gate.Action, lockout gate.Lockout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	disabled, attempts := f.lockoutFields(action)
	*disabled = lockout.Disabled
	*attempts = lockout.FailedAttempts
	return f.save()
}

// Session implements gate.StateStore
func (f *File) Session(ctx context.Context, action gate.Action) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session[action], nil
}

// SetSession implements gate.StateStore
func (f *File) SetSession(ctx context.Context, action gate.Action, authenticated bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session[action] = authenticated
	return nil
}
