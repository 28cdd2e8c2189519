package store

import (
	"errors"
	"sync"
)

// ErrIdentityBound is returned when code attempts to rebind a session's
// user identity. The binding is one-write: the auth layer sets it once
// during the handshake and it is immutable afterwards.
var ErrIdentityBound = errors.New("session identity already bound")

// Session is one live client connection. A user may hold several sessions
// at once; each carries its own session ID.
type Session struct {
	ID string

	mu          sync.Mutex
	userID      string
	isAnonymous bool
	bound       bool
	displayName string
	avatarTag   string
}

// NewSession creates an unbound session.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Bind attaches the authenticated identity to the session. It succeeds
// exactly once; later calls fail regardless of the value.
func (s *Session) Bind(userID string, isAnonymous bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound {
		return ErrIdentityBound
	}
	s.userID = userID
	s.isAnonymous = isAnonymous
	s.bound = true
	return nil
}

// UserID returns the bound user ID, or "" for guests and unbound sessions.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isAnonymous {
		return ""
	}
	return s.userID
}

// IsAnonymous reports whether the session belongs to a guest.
func (s *Session) IsAnonymous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.bound || s.isAnonymous
}

// SetProfile records the lobby profile. Unlike the identity binding it may
// be updated; players rename themselves between games.
func (s *Session) SetProfile(displayName, avatarTag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayName = displayName
	s.avatarTag = avatarTag
}

// Profile returns the display name and avatar set by join_game.
func (s *Session) Profile() (displayName, avatarTag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName, s.avatarTag
}

// HasProfile reports whether the session has completed join_game.
func (s *Session) HasProfile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName != ""
}
