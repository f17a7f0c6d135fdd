package gate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrSecretNotConfigured is returned when no secret is set for an action
var ErrSecretNotConfigured = errors.New("gate: password not configured")

// SecretVerifier checks passwords against the configured secrets. A secret
// that looks like a bcrypt hash is compared as one; anything else is compared
// as plain text in constant time.
type SecretVerifier struct {
	secrets map[Action]string
}

// NewSecretVerifier creates a verifier for the auth and delete secrets
func NewSecretVerifier(authSecret, deleteSecret string) *SecretVerifier {
	return &SecretVerifier{
		secrets: map[Action]string{
			ActionAuth:   authSecret,
			ActionDelete: deleteSecret,
		},
	}
}

// Verify implements Verifier
func (v *SecretVerifier) Verify(ctx context.Context, password string, action Action) (bool, error) {
	secret, ok := v.secrets[action]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if secret == "" {
		return false, fmt.Errorf("%w for %s", ErrSecretNotConfigured, action)
	}
	if password == "" {
		return false, nil
	}

	if isBcryptHash(secret) {
		err := bcrypt.CompareHashAndPassword([]byte(secret), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to compare %s password: %w", action, err)
		}
		return true, nil
	}

	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1, nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
