package session

import (
	"errors"
	"sync"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/pkg/securestore"
)

// TokenKey is the fixed key the access token lives under
const TokenKey = "userToken"

var ErrNoToken = errors.New("no stored token")

// TokenStore persists the access token between process runs
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// SecureTokenStore keeps the token in the encrypted local key-value store
type SecureTokenStore struct {
	store *securestore.Store
}

func NewSecureTokenStore(store *securestore.Store) *SecureTokenStore {
	return &SecureTokenStore{store: store}
}

func (s *SecureTokenStore) Load() (string, error) {
	token, err := s.store.Get(TokenKey)
	if errors.Is(err, securestore.ErrNotFound) {
		return "", ErrNoToken
	}
	return token, err
}

func (s *SecureTokenStore) Save(token string) error { return s.store.Set(TokenKey, token) }

func (s *SecureTokenStore) Clear() error { return s.store.Delete(TokenKey) }

// MemoryTokenStore is a process-local TokenStore
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
