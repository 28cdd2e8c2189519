package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/imposterparty/api/internal/model"
	"github.com/imposterparty/api/internal/store"
	"github.com/imposterparty/api/pkg/imposter"
)

// recorder captures broadcast calls for assertions.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	scope  string // "session", "room", "user", "all"
	target string
	event  string
	data   any
}

func (r *recorder) record(scope, target, event string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{scope: scope, target: target, event: event, data: data})
}

func (r *recorder) ToSession(id, event string, data any) { r.record("session", id, event, data) }
func (r *recorder) ToRoom(id, event string, data any)    { r.record("room", id, event, data) }
func (r *recorder) ToUser(id, event string, data any)    { r.record("user", id, event, data) }
func (r *recorder) ToAll(event string, data any)         { r.record("all", "", event, data) }
func (r *recorder) JoinRoom(string, string)              {}
func (r *recorder) LeaveRoom(string, string)             {}

// find returns the recorded events matching scope/target/event.
func (r *recorder) find(scope, target, event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.scope == scope && e.target == target && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

// stubStats records game results and counts calls per game ID.
type stubStats struct {
	mu      sync.Mutex
	results []*model.GameResult
	err     error
}

func (s *stubStats) RecordGameEnd(_ context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, r := range s.results {
		if r.GameID == result.GameID {
			return nil // idempotent: already stored
		}
	}
	s.results = append(s.results, result)
	return nil
}

func (s *stubStats) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *stubStats) last() *model.GameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return nil
	}
	return s.results[len(s.results)-1]
}

// waitFor polls a condition; stats recording happens off the room lock.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// harness wires the services against in-memory fakes.
type harness struct {
	store *store.Store
	bc    *recorder
	stats *stubStats
	games *GameService
	rooms *RoomService
	cfg   imposter.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.New()
	bc := &recorder{}
	stats := &stubStats{}

	// Long durations so the 1 Hz clock cannot race test assertions.
	cfg := imposter.DefaultConfig()
	cfg.RoleRevealTime = 300
	cfg.HintTurnTime = 300
	cfg.DiscussionTime = 300
	cfg.VotingTime = 300
	cfg.VoteResultTime = 300

	games := NewGameService(st, bc, stats, cfg, 3, 8, newSeq(0.1, 0.3, 0.7, 0.2, 0.9, 0.5))
	rooms := NewRoomService(st, bc, games, 3, 8)
	return &harness{store: st, bc: bc, stats: stats, games: games, rooms: rooms, cfg: cfg}
}

// newSeq yields scripted rand values, cycling.
func newSeq(vals ...float64) imposter.RandFunc {
	i := 0
	var mu sync.Mutex
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		v := vals[i%len(vals)]
		i++
		return v
	}
}

// addSession registers a connected session with a lobby profile.
func (h *harness) addSession(t *testing.T, id, userID string) *store.Session {
	t.Helper()
	sess := store.NewSession(id)
	if err := sess.Bind(userID, userID == ""); err != nil {
		t.Fatalf("bind session %s: %v", id, err)
	}
	sess.SetProfile("name-"+id, "avatar-1")
	h.store.AddSession(sess)
	return sess
}

// lobbyRoom builds a LOBBY room with the given sessions as players. The
// first session owns the room.
func (h *harness) lobbyRoom(t *testing.T, mode imposter.Mode, sessionIDs ...string) *store.Room {
	t.Helper()
	players := make([]*store.Player, len(sessionIDs))
	for i, id := range sessionIDs {
		players[i] = &store.Player{SessionID: id, DisplayName: "name-" + id}
	}
	room, err := h.store.CreateRoom(func(id string) *store.Room {
		return &store.Room{
			ID:      id,
			Name:    "test room",
			OwnerID: sessionIDs[0],
			Status:  store.StatusLobby,
			Mode:    mode,
			Players: players,
		}
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for _, id := range sessionIDs {
		h.store.SetMembership(id, room.ID)
	}
	return room
}

// playingRoom builds a PLAYING room in the given phase with a hand-built
// game state. No timer is attached; tests drive ticks explicitly.
func (h *harness) playingRoom(t *testing.T, phase imposter.Phase, mode imposter.Mode, imposterID string, sessionIDs ...string) *store.Room {
	t.Helper()
	room := h.lobbyRoom(t, mode, sessionIDs...)
	room.Status = store.StatusPlaying
	room.StartedAt = time.Now()
	room.Game = &imposter.State{
		GameID:        "game-" + room.ID,
		Phase:         phase,
		Mode:          mode,
		Category:      "Animals",
		CitizenWord:   "Cat",
		ImposterWord:  "Dog",
		ImposterID:    imposterID,
		TurnOrder:     append([]string(nil), sessionIDs...),
		TurnTimeLeft:  h.cfg.HintTurnTime,
		PhaseTimeLeft: 300,
		RoundNumber:   1,
		Votes:         make(map[string]string),
		Hints:         make(map[string][]string),
	}
	return room
}
