package store

import (
	"sync"
	"time"

	"github.com/imposterparty/api/pkg/imposter"
)

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	StatusLobby   RoomStatus = "LOBBY"
	StatusPlaying RoomStatus = "PLAYING"
	StatusEnded   RoomStatus = "ENDED"
)

// Player is a session's membership in a room. A session belongs to at most
// one room at a time.
type Player struct {
	SessionID   string
	DisplayName string
	AvatarTag   string
	Ready       bool
	Eliminated  bool
	HasVoted    bool
}

// TimerHandle is a cancellable per-room timer owned by the scheduler.
type TimerHandle interface {
	Stop()
}

// Room is the server-owned game room. The embedded mutex serializes every
// mutation: client commands and scheduler ticks lock the room before
// touching the player list or game state, so no two mutations on the same
// room ever interleave. Fields are only safe to touch while holding Mu.
type Room struct {
	Mu sync.Mutex

	ID       string
	Name     string
	Password string // never leaves the server
	OwnerID  string // session ID, always a current player
	Status   RoomStatus
	Category string // configured category, "" = random per game
	Mode     imposter.Mode

	Players []*Player // insertion order; ownership transfers to the head

	Game          *imposter.State
	Timer         TimerHandle
	StartedAt     time.Time
	StatsRecorded bool
}

// FindPlayer returns the player for a session, or nil. Callers hold Mu.
func (r *Room) FindPlayer(sessionID string) *Player {
	for _, p := range r.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

// RemovePlayer deletes a session's player, preserving order. Callers hold Mu.
func (r *Room) RemovePlayer(sessionID string) bool {
	for i, p := range r.Players {
		if p.SessionID == sessionID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// Roster returns the engine's view of the current players. Callers hold Mu.
func (r *Room) Roster() []imposter.PlayerInfo {
	roster := make([]imposter.PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		roster[i] = imposter.PlayerInfo{ID: p.SessionID, Eliminated: p.Eliminated}
	}
	return roster
}

// AliveCount returns the number of non-eliminated players. Callers hold Mu.
func (r *Room) AliveCount() int {
	n := 0
	for _, p := range r.Players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

// StopTimer cancels the room's active timer, if any. Callers hold Mu.
func (r *Room) StopTimer() {
	if r.Timer != nil {
		r.Timer.Stop()
		r.Timer = nil
	}
}
