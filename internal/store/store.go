// Package store holds the process-local state shared across rooms: the room
// registry, the session registry, and the per-user presence index. The maps
// are read-dominant and guarded by fine-grained locks; each Room serializes
// its own mutations with its own mutex.
package store

import (
	"crypto/rand"
	"errors"
	"sync"
)

// ErrRoomCodeSpace is returned when room code generation keeps colliding,
// which only happens when the code space is effectively full.
var ErrRoomCodeSpace = errors.New("could not allocate a unique room code")

// roomCodeChars is the 6-char upper alphanumeric room code alphabet.
const (
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength = 6
	codeRetries    = 100
)

// Store is the in-memory registry of rooms and sessions.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	sessions map[string]*Session
	memberOf map[string]string // session ID -> room ID
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		rooms:    make(map[string]*Room),
		sessions: make(map[string]*Session),
		memberOf: make(map[string]string),
	}
}

// AddSession registers a connected session.
func (s *Store) AddSession(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// RemoveSession drops a session from the registry.
func (s *Store) RemoveSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	delete(s.memberOf, sessionID)
}

// Session returns the session for an ID, or nil.
func (s *Store) Session(sessionID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

// CreateRoom allocates a fresh room code and registers the room under it.
func (s *Store) CreateRoom(build func(id string) *Room) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < codeRetries; i++ {
		id, err := newRoomCode()
		if err != nil {
			return nil, err
		}
		if _, taken := s.rooms[id]; taken {
			continue
		}
		room := build(id)
		s.rooms[id] = room
		return room, nil
	}
	return nil, ErrRoomCodeSpace
}

// Room returns the room for an ID, or nil.
func (s *Store) Room(roomID string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[roomID]
}

// DeleteRoom removes a room from the registry.
func (s *Store) DeleteRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

// Rooms returns a snapshot of all rooms.
func (s *Store) Rooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// SetMembership records which room a session is in.
func (s *Store) SetMembership(sessionID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberOf[sessionID] = roomID
}

// ClearMembership removes a session's room membership.
func (s *Store) ClearMembership(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberOf, sessionID)
}

// RoomOf returns the room a session is in, or nil.
func (s *Store) RoomOf(sessionID string) *Room {
	s.mu.RLock()
	roomID, ok := s.memberOf[sessionID]
	if !ok {
		s.mu.RUnlock()
		return nil
	}
	room := s.rooms[roomID]
	s.mu.RUnlock()
	return room
}

func newRoomCode() (string, error) {
	b := make([]byte, roomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
	}
	return string(b), nil
}
