package sdk

import "sync"

// CredentialStore persists at most one opaque bearer token.
// Get returns "" when no token is stored. Clear on an empty store is a no-op.
// Each call must replace or remove the token atomically.
type CredentialStore interface {
	Set(token string) error
	Get() (string, error)
	Clear() error
}

// MemoryStore is a CredentialStore that lives for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore returns a MemoryStore, optionally seeded with a token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
