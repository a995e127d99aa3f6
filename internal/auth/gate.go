// Package auth implements the login gate: a single shared secret, optionally
// stored as a bcrypt hash. There is no rate limiting or lockout.
package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/example/studybot/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrNoSecret is returned by NewGate when neither a secret nor a hash is configured.
var ErrNoSecret = errors.New("no login secret configured")

// Gate checks login attempts against the configured secret.
type Gate struct {
	secret []byte
	hash   []byte
}

// NewGate builds a gate from the auth configuration. SecretHash wins over Secret.
func NewGate(cfg config.AuthConfig) (*Gate, error) {
	if cfg.SecretHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.SecretHash)); err != nil {
			return nil, err
		}
		return &Gate{hash: []byte(cfg.SecretHash)}, nil
	}
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	return &Gate{secret: []byte(cfg.Secret)}, nil
}

// Check reports whether input matches the secret.
func (g *Gate) Check(input string) bool {
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(input)) == nil
	}
	return subtle.ConstantTimeCompare(g.secret, []byte(input)) == 1
}

// HashSecret returns a bcrypt hash suitable for AUTH_SECRET_HASH.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
