// Package gate implements the shared-password gates that guard writing and
// deleting. Each action class has its own gate with its own failure counter;
// too many failures disable the gate for that client permanently.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/naqd/naqd/pkg/logging"
	"github.com/naqd/naqd/pkg/telemetry"
)

// Action is the class of operation a gate protects
type Action string

const (
	// ActionAuth guards creating posts and comments
	ActionAuth Action = "auth"
	// ActionDelete guards deleting posts and comments
	ActionDelete Action = "delete"
)

// DefaultMaxAttempts is the number of failures that disables a gate
const DefaultMaxAttempts = 3

// Localized messages for failed attempts
const (
	MsgWrongPassword = "كلمة المرور غير صحيحة. %d محاولات متبقية"
	MsgLockedOut     = "تم تعطيل الوصول بشكل دائم بسبب تجاوز عدد المحاولات المسموح به."
)

var (
	// ErrDisabled is returned once a gate has been locked out. There is no way back.
	ErrDisabled = errors.New("gate: access permanently disabled")
	// ErrUnknownAction is returned for an action other than auth or delete
	ErrUnknownAction = errors.New("gate: unknown action")
)

// ParseAction parses "auth" or "delete"
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionAuth, ActionDelete:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Keys returns the storage keys of the permanent lockout state for action
func Keys(action Action) (disabledKey, attemptsKey string) {
	if action == ActionDelete {
		return "deleteAuthDisabled", "deleteFailedAttempts"
	}
	return "authDisabled", "failedAttempts"
}

// SessionKey is the storage key of the transient "authenticated" flag
const SessionKey = "isAuthenticated"

// Lockout is the permanent part of a gate's state
type Lockout struct {
	FailedAttempts int  `json:"failed_attempts" yaml:"failed_attempts"`
	Disabled       bool `json:"disabled" yaml:"disabled"`
}

// Verifier checks a password for an action
type Verifier interface {
	Verify(ctx context.Context, password string, action Action) (bool, error)
}

// VerifierFunc adapts a function to Verifier
type VerifierFunc func(ctx context.Context, password string, action Action) (bool, error)

// Verify calls f
func (f VerifierFunc) Verify(ctx context.Context, password string, action Action) (bool, error) {
	return f(ctx, password, action)
}

// StateStore persists gate state. Lockouts outlive sessions; the session
// flag does not.
type StateStore interface {
	LoadLockout(ctx context.Context, action Action) (Lockout, error)
	SaveLockout(ctx context.Context, action Action, lockout Lockout) error
	Session(ctx context.Context, action Action) (bool, error)
	SetSession(ctx context.Context, action Action, authenticated bool) error
}

// Result is the outcome of an authentication attempt
type Result struct {
	Valid          bool `json:"valid"`
	FailedAttempts int  `json:"failed_attempts"`
	Remaining      int  `json:"remaining"`
	Disabled       bool `json:"disabled"`
}

// Status is a snapshot of a gate
type Status struct {
	Action         Action `json:"action"`
	Authenticated  bool   `json:"authenticated"`
	Disabled       bool   `json:"disabled"`
	FailedAttempts int    `json:"failed_attempts"`
	Remaining      int    `json:"remaining"`
}

// Option configures a Gate
type Option func(*Gate)

// WithMaxAttempts overrides DefaultMaxAttempts
func WithMaxAttempts(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithLogger sets the gate logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// Gate is the state machine for one action class of one client:
// Unauthenticated -> Authenticated for the session, and a one-way Disabled
// state after too many failures.
type Gate struct {
	action      Action
	verifier    Verifier
	store       StateStore
	maxAttempts int
	logger      *zap.Logger

	mu            sync.Mutex
	loaded        bool
	lockout       Lockout
	authenticated bool
}

// New creates a gate for action
func New(action Action, verifier Verifier, store StateStore, opts ...Option) *Gate {
	g := &Gate{
		action:      action,
		verifier:    verifier,
		store:       store,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.WithComponent("gate")
	}
	g.logger = g.logger.With(zap.String("action", string(action)))
	return g
}

// Action returns the action class the gate protects
func (g *Gate) Action() Action {
	return g.action
}

// keepsSession reports whether a successful attempt unlocks the rest of the
// session. The delete gate asks for the password every time.
func (g *Gate) keepsSession() bool {
	return g.action == ActionAuth
}

func (g *Gate) load(ctx context.Context) error {
	if g.loaded {
		return nil
	}
	lockout, err := g.store.LoadLockout(ctx, g.action)
	if err != nil {
		return fmt.Errorf("failed to load %s lockout: %w", g.action, err)
	}
	if lockout.FailedAttempts >= g.maxAttempts {
		lockout.Disabled = true
	}
	g.lockout = lockout

	if g.keepsSession() {
		authenticated, err := g.store.Session(ctx, g.action)
		if err != nil {
			return fmt.Errorf("failed to load %s session: %w", g.action, err)
		}
		g.authenticated = authenticated
	}
	g.loaded = true
	return nil
}

// Authenticate checks password against the verifier. A verifier error counts
// as a failed attempt. Once disabled, the gate returns ErrDisabled without
// consulting the verifier, even for the right password.
func (g *Gate) Authenticate(ctx context.Context, password string) (Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "gate.authenticate")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(ctx); err != nil {
		return Result{}, err
	}
	if g.lockout.Disabled {
		return g.result(false), ErrDisabled
	}

	valid, err := g.verifier.Verify(ctx, password, g.action)
	if err != nil {
		g.logger.Warn("Password verification failed", zap.Error(err))
		valid = false
	}

	if valid {
		if g.keepsSession() {
			g.authenticated = true
			if err := g.store.SetSession(ctx, g.action, true); err != nil {
				return Result{}, fmt.Errorf("failed to save %s session: %w", g.action, err)
			}
		}
		return g.result(true), nil
	}

	g.lockout.FailedAttempts++
	if g.lockout.FailedAttempts >= g.maxAttempts {
		g.lockout.Disabled = true
	}
	if err := g.store.SaveLockout(ctx, g.action, g.lockout); err != nil {
		return Result{}, fmt.Errorf("failed to save %s lockout: %w", g.action, err)
	}

	attrs := attribute.String("action", string(g.action))
	telemetry.Count(ctx, "naqd.gate.failures", attrs)
	if g.lockout.Disabled {
		telemetry.Count(ctx, "naqd.gate.lockouts", attrs)
		g.logger.Warn("Gate disabled after repeated failures", zap.Int("failed_attempts", g.lockout.FailedAttempts))
	}

	return g.result(false), nil
}

// IsAuthenticated reports whether this session already passed the gate.
// It is always false for the delete gate and for a disabled gate.
func (g *Gate) IsAuthenticated(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(ctx); err != nil {
		return false, err
	}
	return g.authenticated && !g.lockout.Disabled, nil
}

// IsDisabled reports whether the gate is locked out
func (g *Gate) IsDisabled(ctx context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(ctx); err != nil {
		return false, err
	}
	return g.lockout.Disabled, nil
}

// Status returns a snapshot of the gate
func (g *Gate) Status(ctx context.Context) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.load(ctx); err != nil {
		return Status{}, err
	}
	return Status{
		Action:         g.action,
		Authenticated:  g.authenticated && !g.lockout.Disabled,
		Disabled:       g.lockout.Disabled,
		FailedAttempts: g.lockout.FailedAttempts,
		Remaining:      g.remaining(),
	}, nil
}

func (g *Gate) remaining() int {
	if g.lockout.Disabled {
		return 0
	}
	if r := g.maxAttempts - g.lockout.FailedAttempts; r > 0 {
		return r
	}
	return 0
}

func (g *Gate) result(valid bool) Result {
	return Result{
		Valid:          valid,
		FailedAttempts: g.lockout.FailedAttempts,
		Remaining:      g.remaining(),
		Disabled:       g.lockout.Disabled,
	}
}
