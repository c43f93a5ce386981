// Package session holds the process-wide authentication state.
package session

import (
	"sync"

	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/notify"
	"github.com/bnema/teams-cli/internal/ports"
)

// Change is published after every session transition.
type Change struct {
	Previous domain.Session
	Current  domain.Session
}

// LoggedOut reports whether the change ended a logged-in session.
func (c Change) LoggedOut() bool {
	return c.Previous.LoggedIn && !c.Current.LoggedIn
}

// Store listeners must not call Login or Logout.
type Store struct {
	// writeMu orders whole transitions, publish included, so listeners see
	// changes in the order they happened.
	writeMu sync.Mutex
	mu      sync.RWMutex
	current domain.Session
	changes *notify.Hub[Change]
}

var _ ports.TokenSource = (*Store)(nil)

func NewStore() *Store {
	return &Store{changes: notify.NewHub[Change]()}
}

// Login replaces the session with token and user in one step. An empty token
// or a zero user id is rejected and the current session is left untouched.
func (s *Store) Login(token string, user domain.User) error {
	if token == "" || user.ID <= 0 {
		return domain.ErrInvalidSession
	}

	next := domain.Session{Token: token, UserID: user.ID, LoggedIn: true}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	previous := s.current
	s.current = next
	s.mu.Unlock()

	if previous != next {
		s.changes.Publish(Change{Previous: previous, Current: next})
	}
	return nil
}

// Logout clears the session. Logging out an empty session publishes nothing.
func (s *Store) Logout() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	previous := s.current
	s.current = domain.Session{}
	s.mu.Unlock()

	if previous.LoggedIn {
		s.changes.Publish(Change{Previous: previous, Current: domain.Session{}})
	}
}

func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Token() string {
	return s.Snapshot().Token
}

func (s *Store) Subscribe(listener func(Change)) func() {
	return s.changes.Subscribe(listener)
}
