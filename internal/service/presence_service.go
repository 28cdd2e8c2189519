package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/imposterparty/api/internal/logger"
	"github.com/imposterparty/api/internal/repository"
	"github.com/imposterparty/api/internal/store"
)

const presenceTimeout = 5 * time.Second

// PresenceService tracks which users are online and fans presence changes
// out to their friends. A user with several open sessions counts as online
// until the last one closes; only the 0-to-1 and 1-to-0 transitions emit
// events. Friend lookups hit the database; failures degrade to no fanout
// and never affect gameplay.
type PresenceService struct {
	index   *store.PresenceIndex
	friends repository.FriendRepository
	bc      Broadcaster
	log     zerolog.Logger
}

func NewPresenceService(index *store.PresenceIndex, friends repository.FriendRepository, bc Broadcaster) *PresenceService {
	return &PresenceService{
		index:   index,
		friends: friends,
		bc:      bc,
		log:     logger.Get().With().Str("service", "presence").Logger(),
	}
}

// PresencePayload identifies a user in presence events.
type PresencePayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// SessionOnline registers a session under its user and notifies friends
// when the user just came online. Also sends the caller the list of their
// friends who are currently online. Guests have no presence.
func (s *PresenceService) SessionOnline(sess *store.Session) {
	userID := sess.UserID()
	if userID == "" {
		return
	}
	cameOnline := s.index.Add(userID, sess.ID)

	friends, err := s.listFriends(userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("friend lookup failed, skipping presence fanout")
		return
	}

	displayName, _ := sess.Profile()
	online := make([]PresencePayload, 0)
	for _, f := range friends {
		if s.index.IsOnline(f.UserID) {
			online = append(online, PresencePayload{UserID: f.UserID, DisplayName: f.DisplayName})
		}
		if cameOnline {
			s.bc.ToUser(f.UserID, EvtFriendOnline, PresencePayload{UserID: userID, DisplayName: displayName})
		}
	}
	s.bc.ToSession(sess.ID, EvtFriendsOnlineList, online)
}

// SessionOffline drops a session from the presence index and notifies
// friends when that was the user's last session.
func (s *PresenceService) SessionOffline(sess *store.Session) {
	userID := sess.UserID()
	if userID == "" {
		return
	}
	if !s.index.Remove(userID, sess.ID) {
		return
	}

	friends, err := s.listFriends(userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("friend lookup failed, skipping offline fanout")
		return
	}
	displayName, _ := sess.Profile()
	for _, f := range friends {
		s.bc.ToUser(f.UserID, EvtFriendOffline, PresencePayload{UserID: userID, DisplayName: displayName})
	}
}

func (s *PresenceService) listFriends(userID string) ([]presenceFriend, error) {
	if s.friends == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()
	list, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]presenceFriend, len(list))
	for i, f := range list {
		out[i] = presenceFriend{UserID: f.UserID, DisplayName: f.DisplayName}
	}
	return out, nil
}

type presenceFriend struct {
	UserID      string
	DisplayName string
}
