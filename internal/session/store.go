package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

var ErrEmptyToken = errors.New("token must not be empty")

// Store is the single source of truth for auth state.
// Readers use Token, User, IsAuthenticated and Changed; state only moves through
// Hydrate, Login, Refresh, SetUser, Logout and Expire.
type Store struct {
	tokens TokenStore

	mu       sync.RWMutex
	token    string
	user     *User
	changed  chan struct{}
	onLogout []func(reason string)

	hydrateOnce sync.Once
	hydrateErr  error
}

// NewStore creates a session store persisting through tokens
func NewStore(tokens TokenStore) *Store {
	return &Store{
		tokens:  tokens,
		changed: make(chan struct{}),
	}
}

// Hydrate loads the persisted token. It runs once per store; later calls return the first result.
func (s *Store) Hydrate(ctx context.Context) error {
	s.hydrateOnce.Do(func() {
		if err := ctx.Err(); err != nil {
			s.hydrateErr = err
			return
		}
		token, err := s.tokens.Load()
		if errors.Is(err, ErrNoToken) {
			return
		}
		if err != nil {
			s.hydrateErr = fmt.Errorf("failed to load token: %w", err)
			return
		}

		s.mu.Lock()
		s.token = token
		s.notifyLocked()
		s.mu.Unlock()
	})
	return s.hydrateErr
}

// Login stores a fresh token and, optionally, the user it belongs to
func (s *Store) Login(token string, user *User) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.tokens.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = copyUser(user)
	s.notifyLocked()
	return nil
}

// Refresh swaps the token while keeping the current user
func (s *Store) Refresh(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.tokens.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.notifyLocked()
	return nil
}

// SetUser replaces the current user, e.g. after a profile fetch or update
func (s *Store) SetUser(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyUser(user)
	s.notifyLocked()
}

// Logout ends the session on user request. It reports whether a session was active.
func (s *Store) Logout() bool {
	return s.clear("", ReasonUserLogout)
}

// EndSession ends the session for a reason other than a user logout or expiry
func (s *Store) EndSession(reason string) bool {
	return s.clear("", reason)
}

// Expire is the forced-logout entry point for 401 responses. It clears the session only
// when token is still the active one, so of many concurrent 401s exactly one acts.
func (s *Store) Expire(token string) bool {
	if token == "" {
		return false
	}
	return s.clear(token, ReasonExpired)
}

func (s *Store) clear(expected, reason string) bool {
	s.mu.Lock()
	if s.token == "" || (expected != "" && s.token != expected) {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	s.user = nil
	s.notifyLocked()
	listeners := append([]func(string){}, s.onLogout...)
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		log.Printf("session: failed to clear stored token: %v", err)
	}
	for _, fn := range listeners {
		fn(reason)
	}
	return true
}

// OnLogout registers fn to run after every effective logout
func (s *Store) OnLogout(fn func(reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Token returns the current access token, or "" when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// UserID returns the current user's id, or 0 when unknown
func (s *Store) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Changed returns a channel closed on the next state change
func (s *Store) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

func (s *Store) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
