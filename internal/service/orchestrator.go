package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/imposterparty/api/internal/auth"
	"github.com/imposterparty/api/internal/logger"
	"github.com/imposterparty/api/internal/ratelimit"
	"github.com/imposterparty/api/internal/store"
)

// Envelope is the wire shape of every inbound and outbound event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Orchestrator is the single entry point for client events. For every
// inbound event it resolves the session, consults the rate limiter, and
// dispatches to the owning service. Validation failures go back to the
// offending client only, as an error event carrying the bare code.
type Orchestrator struct {
	store    *store.Store
	bc       Broadcaster
	limiter  ratelimit.Limiter
	rooms    *RoomService
	games    *GameService
	presence *PresenceService
	friends  *FriendService
	log      zerolog.Logger
}

func NewOrchestrator(st *store.Store, bc Broadcaster, limiter ratelimit.Limiter, rooms *RoomService, games *GameService, presence *PresenceService, friends *FriendService) *Orchestrator {
	return &Orchestrator{
		store:    st,
		bc:       bc,
		limiter:  limiter,
		rooms:    rooms,
		games:    games,
		presence: presence,
		friends:  friends,
		log:      logger.Get().With().Str("component", "orchestrator").Logger(),
	}
}

// Connect registers a fresh session with its handshake identity. The
// identity binding is one-write; it never changes for the session's life.
func (o *Orchestrator) Connect(sessionID string, ident auth.Identity) *store.Session {
	sess := store.NewSession(sessionID)
	if err := sess.Bind(ident.UserID, ident.IsAnonymous); err != nil {
		o.log.Error().Err(err).Str("session", sessionID).Msg("identity bind failed")
	}
	o.store.AddSession(sess)
	o.log.Info().Str("session", sessionID).Bool("guest", sess.IsAnonymous()).Msg("session connected")
	return sess
}

// Disconnect tears a session down: room cleanup, presence fanout, and
// removal from the registry.
func (o *Orchestrator) Disconnect(sessionID string) {
	sess := o.store.Session(sessionID)
	o.rooms.HandleDisconnect(sessionID)
	if sess != nil {
		o.presence.SessionOffline(sess)
	}
	o.store.RemoveSession(sessionID)
	o.log.Info().Str("session", sessionID).Msg("session disconnected")
}

type joinGamePayload struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type createRoomPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Category string `json:"category"`
	GameMode string `json:"gameMode"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type startGamePayload struct {
	Language string `json:"language"`
}

type friendTargetPayload struct {
	UserID string `json:"userId"`
}

type requestIDPayload struct {
	RequestID string `json:"requestId"`
}

type inviteResponsePayload struct {
	InviteID string `json:"inviteId"`
	Accept   bool   `json:"accept"`
}

// Dispatch routes one inbound event. Unknown events are logged and
// dropped; malformed payloads are treated as empty ones.
func (o *Orchestrator) Dispatch(sessionID string, env Envelope) {
	sess := o.store.Session(sessionID)
	if sess == nil {
		o.log.Warn().Str("session", sessionID).Str("event", env.Event).Msg("event from unknown session")
		return
	}

	if !o.limiter.Allow(context.Background(), env.Event, sess.ID, sess.UserID()) {
		o.bc.ToSession(sess.ID, EvtError, CodeRateLimited)
		return
	}

	switch env.Event {
	case EvtJoinGame:
		var p joinGamePayload
		unmarshal(env.Data, &p)
		o.sendErr(sess, o.rooms.JoinLobby(sess, p.Name, p.Avatar))
		o.presence.SessionOnline(sess)

	case EvtGetRooms:
		o.rooms.SendRoomList(sess.ID)

	case EvtCreateRoom:
		var p createRoomPayload
		unmarshal(env.Data, &p)
		_, err := o.rooms.CreateRoom(sess, p.Name, p.Password, p.Category, p.GameMode)
		o.sendErr(sess, err)

	case EvtJoinRoom:
		var p joinRoomPayload
		unmarshal(env.Data, &p)
		o.sendErr(sess, o.rooms.JoinRoom(sess, p.RoomID, p.Password))

	case EvtLeaveRoom:
		o.sendErr(sess, o.rooms.LeaveRoom(sess))

	case EvtStartGame:
		var p startGamePayload
		unmarshal(env.Data, &p)
		o.sendErr(sess, o.games.StartGame(sess, p.Language))

	case EvtSubmitHint:
		o.sendErr(sess, o.games.SubmitHint(sess, stringPayload(env.Data)))

	case EvtSubmitVote:
		o.sendErr(sess, o.games.SubmitVote(sess, stringPayload(env.Data)))

	case EvtPlayAgain:
		o.sendErr(sess, o.games.PlayAgain(sess))

	case EvtSendMessage:
		o.sendErr(sess, o.rooms.SendMessage(sess, stringPayload(env.Data)))

	case EvtSendFriendRequest:
		var p friendTargetPayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.SendRequest(sess, p.UserID))

	case EvtAcceptFriendRequest:
		var p requestIDPayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.AcceptRequest(sess, p.RequestID))

	case EvtDeclineFriendRequest:
		var p requestIDPayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.DeclineRequest(sess, p.RequestID))

	case EvtCancelFriendRequest:
		var p requestIDPayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.CancelRequest(sess, p.RequestID))

	case EvtRemoveFriend:
		var p friendTargetPayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.RemoveFriend(sess, p.UserID))

	case EvtSendRoomInvite:
		var p friendTargetPayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.SendRoomInvite(sess, p.UserID))

	case EvtRespondToInvite:
		var p inviteResponsePayload
		unmarshal(env.Data, &p)
		o.sendFriendErr(sess, o.friends.RespondToInvite(sess, p.InviteID, p.Accept))

	case EvtGetPendingInvites:
		o.sendFriendErr(sess, o.friends.SendPendingInvites(sess))

	case EvtGetPendingRequests:
		o.sendFriendErr(sess, o.friends.SendPendingRequests(sess))

	default:
		o.log.Warn().Str("event", env.Event).Str("session", sess.ID).Msg("unknown event")
	}
}

// sendErr surfaces a validation failure to the offending client as a bare
// code. Nil errors are a no-op.
func (o *Orchestrator) sendErr(sess *store.Session, err error) {
	if err == nil {
		return
	}
	o.bc.ToSession(sess.ID, EvtError, err.Error())
}

func (o *Orchestrator) sendFriendErr(sess *store.Session, ferr *FriendError) {
	if ferr == nil {
		return
	}
	o.bc.ToSession(sess.ID, EvtFriendError, ferr)
}

// unmarshal tolerates missing or malformed payloads; handlers validate the
// zero values themselves.
func unmarshal(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

// stringPayload accepts either a bare JSON string or a raw string payload.
func stringPayload(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(data)
}
