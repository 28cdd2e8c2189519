package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/imposterparty/api/internal/logger"
	"github.com/imposterparty/api/internal/model"
	"github.com/imposterparty/api/internal/store"
	"github.com/imposterparty/api/pkg/imposter"
)

const (
	maxChatLength  = 200
	maxNameLength  = 24
	maxRoomNameLen = 40
)

// RoomService owns the room lifecycle: lobby profiles, create, join, leave,
// chat, and the disconnect cleanup that keeps live games consistent when a
// player drops.
type RoomService struct {
	store      *store.Store
	bc         Broadcaster
	games      *GameService
	minPlayers int
	maxPlayers int
	log        zerolog.Logger
}

func NewRoomService(st *store.Store, bc Broadcaster, games *GameService, minPlayers, maxPlayers int) *RoomService {
	return &RoomService{
		store:      st,
		bc:         bc,
		games:      games,
		minPlayers: minPlayers,
		maxPlayers: maxPlayers,
		log:        logger.Get().With().Str("service", "room").Logger(),
	}
}

// JoinLobby records the session's profile and sends it the current room
// list. Presence fanout for authenticated users is handled by the presence
// service on top of this.
func (s *RoomService) JoinLobby(sess *store.Session, name, avatar string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	sess.SetProfile(name, avatar)

	displayName, avatarTag := sess.Profile()
	s.bc.ToSession(sess.ID, EvtPlayerStatus, PlayerView{
		SessionID:   sess.ID,
		DisplayName: displayName,
		AvatarTag:   avatarTag,
	})
	s.SendRoomList(sess.ID)
	return nil
}

// SendRoomList sends the public room list to one session.
func (s *RoomService) SendRoomList(sessionID string) {
	s.bc.ToSession(sessionID, EvtRoomList, projectRoomList(s.store.Rooms(), s.maxPlayers))
}

// CreateRoom creates a room with the caller as owner and sole player.
func (s *RoomService) CreateRoom(sess *store.Session, name, password, category string, gameMode string) (*store.Room, error) {
	if !sess.HasProfile() {
		return nil, ErrNotAuthorized
	}
	if cur := s.store.RoomOf(sess.ID); cur != nil {
		s.LeaveRoom(sess)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		displayName, _ := sess.Profile()
		name = displayName + "'s room"
	}
	if runes := []rune(name); len(runes) > maxRoomNameLen {
		name = string(runes[:maxRoomNameLen])
	}
	mode := imposter.ModeClassic
	if imposter.Mode(gameMode) == imposter.ModeBlind {
		mode = imposter.ModeBlind
	}

	displayName, avatarTag := sess.Profile()
	room, err := s.store.CreateRoom(func(id string) *store.Room {
		return &store.Room{
			ID:       id,
			Name:     name,
			Password: password,
			OwnerID:  sess.ID,
			Status:   store.StatusLobby,
			Category: category,
			Mode:     mode,
			Players: []*store.Player{{
				SessionID:   sess.ID,
				DisplayName: displayName,
				AvatarTag:   avatarTag,
			}},
		}
	})
	if err != nil {
		s.log.Error().Err(err).Msg("room creation failed")
		return nil, ErrRoomNotFound
	}

	s.store.SetMembership(sess.ID, room.ID)
	s.bc.JoinRoom(sess.ID, room.ID)

	s.log.Info().Str("room", room.ID).Str("owner", sess.ID).Msg("room created")

	room.Mu.Lock()
	view := projectRoom(room, s.maxPlayers)
	room.Mu.Unlock()
	s.bc.ToRoom(room.ID, EvtRoomUpdate, view)
	s.games.BroadcastRoomList()
	return room, nil
}

// JoinRoom adds the caller to an existing lobby-state room.
func (s *RoomService) JoinRoom(sess *store.Session, roomID, password string) error {
	if !sess.HasProfile() {
		return ErrNotAuthorized
	}
	r := s.store.Room(roomID)
	if r == nil {
		return ErrRoomNotFound
	}
	if cur := s.store.RoomOf(sess.ID); cur != nil && cur.ID != roomID {
		s.LeaveRoom(sess)
	}

	displayName, avatarTag := sess.Profile()

	r.Mu.Lock()
	if r.FindPlayer(sess.ID) != nil {
		r.Mu.Unlock()
		return nil
	}
	if r.Password != "" && r.Password != password {
		r.Mu.Unlock()
		return ErrIncorrectPassword
	}
	if r.Status != store.StatusLobby {
		r.Mu.Unlock()
		return ErrGameAlreadyStarted
	}
	if len(r.Players) >= s.maxPlayers {
		r.Mu.Unlock()
		return ErrRoomFull
	}
	r.Players = append(r.Players, &store.Player{
		SessionID:   sess.ID,
		DisplayName: displayName,
		AvatarTag:   avatarTag,
	})
	view := projectRoom(r, s.maxPlayers)
	r.Mu.Unlock()

	s.store.SetMembership(sess.ID, roomID)
	s.bc.JoinRoom(sess.ID, roomID)
	s.bc.ToRoom(roomID, EvtRoomUpdate, view)
	s.games.BroadcastRoomList()
	return nil
}

// LeaveRoom removes the caller from its current room.
func (s *RoomService) LeaveRoom(sess *store.Session) error {
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return ErrRoomNotFound
	}
	s.removeFromRoom(r, sess.ID)
	s.bc.ToSession(sess.ID, EvtRoomUpdate, nil)
	return nil
}

// HandleDisconnect runs the room-side cleanup for a dropped session. The
// session itself is unregistered by the orchestrator.
func (s *RoomService) HandleDisconnect(sessionID string) {
	if r := s.store.RoomOf(sessionID); r != nil {
		s.removeFromRoom(r, sessionID)
	}
}

// SendMessage relays a chat line to the caller's room. Chat is ephemeral.
func (s *RoomService) SendMessage(sess *store.Session, text string) error {
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return ErrRoomNotFound
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if runes := []rune(text); len(runes) > maxChatLength {
		text = string(runes[:maxChatLength])
	}
	displayName, _ := sess.Profile()
	s.bc.ToRoom(r.ID, EvtRoomMessage, model.ChatMessage{
		SessionID:   sess.ID,
		DisplayName: displayName,
		Content:     text,
		SentAt:      time.Now(),
	})
	return nil
}

// removeFromRoom takes a session out of a room and repairs everything that
// referenced it: ownership, the live game state, and the room itself when
// it empties. Ends the game when the imposter leaves, and falls back to
// LOBBY when a live game drops below the player minimum.
func (s *RoomService) removeFromRoom(r *store.Room, sessionID string) {
	r.Mu.Lock()

	if !r.RemovePlayer(sessionID) {
		r.Mu.Unlock()
		return
	}
	s.store.ClearMembership(sessionID)
	s.bc.LeaveRoom(sessionID, r.ID)

	if len(r.Players) == 0 {
		r.StopTimer()
		r.Mu.Unlock()
		s.store.DeleteRoom(r.ID)
		s.log.Info().Str("room", r.ID).Msg("room deleted")
		s.games.BroadcastRoomList()
		return
	}

	if r.OwnerID == sessionID {
		r.OwnerID = r.Players[0].SessionID
	}

	if r.Status == store.StatusPlaying && r.Game != nil {
		s.scrubGameLocked(r, sessionID)
	}

	if r.Status == store.StatusPlaying && len(r.Players) < s.minPlayers {
		r.StopTimer()
		r.Game = nil
		r.Status = store.StatusLobby
		for _, p := range r.Players {
			p.Eliminated = false
			p.HasVoted = false
		}
		s.log.Info().Str("room", r.ID).Msg("too few players, game reset to lobby")
	}

	view := projectRoom(r, s.maxPlayers)
	r.Mu.Unlock()

	s.bc.ToRoom(r.ID, EvtRoomUpdate, view)
	r.Mu.Lock()
	s.games.broadcastGameLocked(r)
	r.Mu.Unlock()
	s.games.BroadcastRoomList()
}

// scrubGameLocked removes every trace of a departed session from the live
// game state. Callers hold the room lock.
func (s *RoomService) scrubGameLocked(r *store.Room, sessionID string) {
	g := r.Game

	for i, id := range g.TurnOrder {
		if id == sessionID {
			g.TurnOrder = append(g.TurnOrder[:i], g.TurnOrder[i+1:]...)
			if g.CurrentTurnIndex > i {
				g.CurrentTurnIndex--
			}
			break
		}
	}
	delete(g.Votes, sessionID)
	for voter, target := range g.Votes {
		if target == sessionID {
			delete(g.Votes, voter)
		}
	}
	delete(g.Hints, sessionID)

	if sessionID == g.ImposterID && g.Phase != imposter.PhaseGameOver {
		s.games.finishLocked(r, imposter.WinnerCitizens)
		return
	}

	if len(g.TurnOrder) > 0 && g.CurrentTurnIndex >= len(g.TurnOrder) {
		g.CurrentTurnIndex = g.CurrentTurnIndex % len(g.TurnOrder)
	}
}
