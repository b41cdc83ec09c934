package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the single process-wide slot holding the persisted bearer
// credential. An empty string means no session.
type Store interface {
	// Read returns the persisted credential, or "" when none exists.
	Read() (string, error)

	// Write persists the credential, replacing any previous one.
	Write(token string) error

	// Clear removes the persisted credential.
	Clear() error
}

// FileStore persists the credential in a file, the CLI/server equivalent of
// the browser's session storage slot.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed credential store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read implements Store.
func (s *FileStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("Read: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Write implements Store. The credential file is owner-readable only.
func (s *FileStore) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Clear: %w", err)
	}
	return nil
}

// MemoryStore holds the credential in memory. Used by tests and by the API
// server, where the credential lives only as long as the process.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read implements Store.
func (s *MemoryStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

// Write implements Store.
func (s *MemoryStore) Write(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)
