package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
)

// Manager owns the persisted credential slot and the login exchange. All
// operations mutate a single process-wide slot; no concurrent sessions are
// supported.
type Manager struct {
	store Store
	auth  AuthService
	log   zerolog.Logger
}

// NewManager creates a session manager over the given credential store and
// auth client.
func NewManager(store Store, auth AuthService, log zerolog.Logger) *Manager {
	return &Manager{store: store, auth: auth, log: log}
}

// Restore reads the persisted credential and rebuilds the user identity
// from its claims. A missing or malformed credential yields a nil user and
// no error: restore fails soft, and callers treat both cases as anonymous.
func (m *Manager) Restore() *domain.User {
	token, err := m.store.Read()
	if err != nil {
		m.log.Warn().Err(err).Msg("Could not read persisted session")
		return nil
	}
	if token == "" {
		return nil
	}

	claims, ok := DecodeClaims(token)
	if !ok {
		m.log.Warn().Msg("Persisted session credential is malformed, treating as anonymous")
		return nil
	}
	return claims.User(token)
}

// Login exchanges credentials for a token, persists it, and decodes it into
// the session user. Bad credentials return domain.ErrAuth.
func (m *Manager) Login(ctx context.Context, username, password string) (*domain.User, error) {
	token, err := m.auth.Authorize(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return nil, domain.ErrAuth
		}
		return nil, fmt.Errorf("Login: %w", err)
	}

	if err := m.store.Write(token); err != nil {
		return nil, fmt.Errorf("Login: persisting credential: %w", err)
	}

	claims, ok := DecodeClaims(token)
	if !ok {
		// The auth server handed us something unreadable; drop it rather
		// than keep a credential we cannot attribute to a user.
		_ = m.store.Clear()
		return nil, domain.ErrDecode
	}

	m.log.Info().Str("username", claims.Subject).Msg("Session established")
	return claims.User(token), nil
}

// Logout clears the persisted credential. Cached reference data tied to the
// session is the workflow controller's to drop; it calls Logout as part of
// its own teardown.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	m.log.Info().Msg("Session cleared")
	return nil
}

// Token returns the currently persisted credential, or "" when anonymous.
func (m *Manager) Token() string {
	token, err := m.store.Read()
	if err != nil {
		return ""
	}
	return token
}
