package domain

import "errors"

var (
	// ErrAuth means the auth service rejected the supplied credentials.
	ErrAuth = errors.New("invalid credentials")

	// ErrDecode means a persisted session credential was malformed. Callers
	// treat it identically to "no session".
	ErrDecode = errors.New("malformed session credential")

	// ErrNoSession means an operation that needs an active user ran without one.
	ErrNoSession = errors.New("no active session")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)
