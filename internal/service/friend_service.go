package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/imposterparty/api/internal/logger"
	"github.com/imposterparty/api/internal/model"
	"github.com/imposterparty/api/internal/repository"
	"github.com/imposterparty/api/internal/store"
)

const (
	maxFriends    = 100
	friendTimeout = 5 * time.Second

	statusPending   = "pending"
	statusAccepted  = "accepted"
	statusDeclined  = "declined"
	statusCancelled = "cancelled"
)

// FriendError is a friend-operation failure delivered via the friend_error
// event. The code is one of the stable Friend* codes.
type FriendError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *FriendError) Error() string { return e.Code }

func friendErr(code string) *FriendError { return &FriendError{Code: code} }

// FriendService handles friendship requests, the friend list, and room
// invites. Everything here requires an authenticated (non-guest) caller;
// the persistent state lives in Postgres behind FriendRepository.
type FriendService struct {
	store   *store.Store
	bc      Broadcaster
	friends repository.FriendRepository
	users   repository.UserRepository
	log     zerolog.Logger
}

func NewFriendService(st *store.Store, bc Broadcaster, friends repository.FriendRepository, users repository.UserRepository) *FriendService {
	return &FriendService{
		store:   st,
		bc:      bc,
		friends: friends,
		users:   users,
		log:     logger.Get().With().Str("service", "friend").Logger(),
	}
}

func (s *FriendService) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), friendTimeout)
}

// caller resolves the session's user ID, rejecting guests.
func (s *FriendService) caller(sess *store.Session) (string, *FriendError) {
	if s.friends == nil || s.users == nil {
		return "", friendErr(FriendCodeDatabaseError)
	}
	userID := sess.UserID()
	if userID == "" {
		return "", friendErr(FriendCodeNotAuthorized)
	}
	return userID, nil
}

// SendRequest creates a pending friend request and notifies the recipient
// if they are online. A duplicate pending request in either direction is a
// silent no-op.
func (s *FriendService) SendRequest(sess *store.Session, toUserID string) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	if toUserID == "" {
		return friendErr(FriendCodeInvalidUserID)
	}
	if toUserID == userID {
		return friendErr(FriendCodeSelfRequest)
	}

	ctx, cancel := s.ctx()
	defer cancel()

	target, err := s.users.FindByID(ctx, toUserID)
	if err != nil {
		return s.db(err)
	}
	if target == nil {
		return friendErr(FriendCodeUserNotFound)
	}
	already, err := s.friends.AreFriends(ctx, userID, toUserID)
	if err != nil {
		return s.db(err)
	}
	if already {
		return friendErr(FriendCodeAlreadyFriends)
	}
	count, err := s.friends.FriendCount(ctx, userID)
	if err != nil {
		return s.db(err)
	}
	if count >= maxFriends {
		return friendErr(FriendCodeMaxFriendsReached)
	}
	for _, pair := range [][2]string{{userID, toUserID}, {toUserID, userID}} {
		pending, err := s.friends.HasPendingRequest(ctx, pair[0], pair[1])
		if err != nil {
			return s.db(err)
		}
		if pending {
			return nil
		}
	}

	req, err := s.friends.CreateRequest(ctx, userID, toUserID)
	if err != nil {
		return s.db(err)
	}
	s.bc.ToUser(toUserID, EvtFriendRequest, req)
	return nil
}

// AcceptRequest turns a pending request into a friendship.
func (s *FriendService) AcceptRequest(sess *store.Session, requestID string) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	ctx, cancel := s.ctx()
	defer cancel()

	req, err := s.friends.RequestByID(ctx, requestID)
	if err != nil {
		return s.db(err)
	}
	if req == nil {
		return friendErr(FriendCodeRequestNotFound)
	}
	if req.ToUserID != userID {
		return friendErr(FriendCodeNotAuthorized)
	}
	if req.Status != statusPending {
		return friendErr(FriendCodeRequestAlreadyHandled)
	}
	count, err := s.friends.FriendCount(ctx, userID)
	if err != nil {
		return s.db(err)
	}
	if count >= maxFriends {
		return friendErr(FriendCodeMaxFriendsReached)
	}

	if err := s.friends.UpdateRequestStatus(ctx, requestID, statusAccepted); err != nil {
		return s.db(err)
	}
	if err := s.friends.AddFriendship(ctx, req.FromUserID, req.ToUserID); err != nil {
		return s.db(err)
	}
	s.sendFriendList(ctx, req.FromUserID)
	s.sendFriendList(ctx, req.ToUserID)
	return nil
}

// DeclineRequest marks a pending request declined. Recipient-only.
func (s *FriendService) DeclineRequest(sess *store.Session, requestID string) *FriendError {
	return s.closeRequest(sess, requestID, statusDeclined, false)
}

// CancelRequest withdraws a pending request. Sender-only.
func (s *FriendService) CancelRequest(sess *store.Session, requestID string) *FriendError {
	return s.closeRequest(sess, requestID, statusCancelled, true)
}

func (s *FriendService) closeRequest(sess *store.Session, requestID, status string, bySender bool) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	ctx, cancel := s.ctx()
	defer cancel()

	req, err := s.friends.RequestByID(ctx, requestID)
	if err != nil {
		return s.db(err)
	}
	if req == nil {
		return friendErr(FriendCodeRequestNotFound)
	}
	owner := req.ToUserID
	if bySender {
		owner = req.FromUserID
	}
	if owner != userID {
		return friendErr(FriendCodeNotAuthorized)
	}
	if req.Status != statusPending {
		return friendErr(FriendCodeRequestAlreadyHandled)
	}
	if err := s.friends.UpdateRequestStatus(ctx, requestID, status); err != nil {
		return s.db(err)
	}
	return nil
}

// RemoveFriend dissolves a friendship and refreshes both friend lists.
func (s *FriendService) RemoveFriend(sess *store.Session, friendUserID string) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	if friendUserID == "" {
		return friendErr(FriendCodeInvalidUserID)
	}
	ctx, cancel := s.ctx()
	defer cancel()

	already, err := s.friends.AreFriends(ctx, userID, friendUserID)
	if err != nil {
		return s.db(err)
	}
	if !already {
		return friendErr(FriendCodeUserNotFound)
	}
	if err := s.friends.RemoveFriendship(ctx, userID, friendUserID); err != nil {
		return s.db(err)
	}
	s.sendFriendList(ctx, userID)
	s.sendFriendList(ctx, friendUserID)
	return nil
}

// SendRoomInvite invites a friend into the caller's current room.
func (s *FriendService) SendRoomInvite(sess *store.Session, toUserID string) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	if toUserID == "" {
		return friendErr(FriendCodeInvalidUserID)
	}
	r := s.store.RoomOf(sess.ID)
	if r == nil {
		return friendErr(FriendCodeNotAuthorized)
	}
	ctx, cancel := s.ctx()
	defer cancel()

	already, err := s.friends.AreFriends(ctx, userID, toUserID)
	if err != nil {
		return s.db(err)
	}
	if !already {
		return friendErr(FriendCodeNotAuthorized)
	}

	r.Mu.Lock()
	roomName := r.Name
	r.Mu.Unlock()
	invite, err := s.friends.CreateInvite(ctx, userID, toUserID, r.ID, roomName)
	if err != nil {
		return s.db(err)
	}
	s.bc.ToUser(toUserID, EvtRoomInvite, invite)
	return nil
}

// RespondToInvite resolves a pending room invite. Accepting returns the
// invite (with its room ID) to the caller, who then joins via join_room.
func (s *FriendService) RespondToInvite(sess *store.Session, inviteID string, accept bool) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	ctx, cancel := s.ctx()
	defer cancel()

	invite, err := s.friends.InviteByID(ctx, inviteID)
	if err != nil {
		return s.db(err)
	}
	if invite == nil {
		return friendErr(FriendCodeRequestNotFound)
	}
	if invite.ToUserID != userID {
		return friendErr(FriendCodeNotAuthorized)
	}
	if invite.Status != statusPending {
		return friendErr(FriendCodeRequestAlreadyHandled)
	}
	status := statusDeclined
	if accept {
		status = statusAccepted
	}
	if err := s.friends.UpdateInviteStatus(ctx, inviteID, status); err != nil {
		return s.db(err)
	}
	if accept {
		invite.Status = status
		s.bc.ToSession(sess.ID, EvtRoomInvite, invite)
	}
	return nil
}

// SendPendingInvites sends the caller their open room invites.
func (s *FriendService) SendPendingInvites(sess *store.Session) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	ctx, cancel := s.ctx()
	defer cancel()

	invites, err := s.friends.PendingInvites(ctx, userID)
	if err != nil {
		return s.db(err)
	}
	if invites == nil {
		invites = []model.RoomInvite{}
	}
	s.bc.ToSession(sess.ID, EvtRoomInvites, invites)
	return nil
}

// SendPendingRequests sends the caller their incoming friend requests.
func (s *FriendService) SendPendingRequests(sess *store.Session) *FriendError {
	userID, ferr := s.caller(sess)
	if ferr != nil {
		return ferr
	}
	ctx, cancel := s.ctx()
	defer cancel()

	reqs, err := s.friends.PendingRequests(ctx, userID)
	if err != nil {
		return s.db(err)
	}
	if reqs == nil {
		reqs = []model.FriendRequest{}
	}
	s.bc.ToSession(sess.ID, EvtFriendRequests, reqs)
	return nil
}

func (s *FriendService) sendFriendList(ctx context.Context, userID string) {
	list, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("friend list refresh failed")
		return
	}
	s.bc.ToUser(userID, EvtFriendList, list)
}

// db wraps a repository failure as DATABASE_ERROR.
func (s *FriendService) db(err error) *FriendError {
	s.log.Error().Err(err).Msg("friend repository error")
	return friendErr(FriendCodeDatabaseError)
}
