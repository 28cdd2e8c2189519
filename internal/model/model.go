package model

import "time"

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FriendRequest is a pending, accepted, or declined friendship request.
type FriendRequest struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	FromName   string    `json:"from_name,omitempty"`
	ToName     string    `json:"to_name,omitempty"`
	Status     string    `json:"status"` // pending, accepted, declined, cancelled
	CreatedAt  time.Time `json:"created_at"`
}

// Friend is one entry of a user's friend list.
type Friend struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	FriendsAt   time.Time `json:"friends_at"`
}

// RoomInvite invites a friend into a live room.
type RoomInvite struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	FromName   string    `json:"from_name,omitempty"`
	RoomID     string    `json:"room_id"`
	RoomName   string    `json:"room_name,omitempty"`
	Status     string    `json:"status"` // pending, accepted, declined
	CreatedAt  time.Time `json:"created_at"`
}

// GameResult is the persisted outcome of one finished game. GameID is the
// idempotency key: recording the same game twice stores exactly one row.
type GameResult struct {
	GameID          string             `json:"game_id"`
	RoomID          string             `json:"room_id,omitempty"`
	Winner          string             `json:"winner"`
	Category        string             `json:"category,omitempty"`
	DurationSeconds int                `json:"duration_seconds,omitempty"`
	Players         []GameResultPlayer `json:"players,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// GameResultPlayer records one participant of a finished game.
type GameResultPlayer struct {
	GameID      string `json:"game_id"`
	UserID      string `json:"user_id,omitempty"` // empty for guests
	DisplayName string `json:"display_name"`
	WasImposter bool   `json:"was_imposter"`
	Won         bool   `json:"won"`
}

// ChatMessage is a relayed room chat message. Chat is ephemeral; it is
// broadcast but never persisted.
type ChatMessage struct {
	SessionID   string    `json:"session_id"`
	DisplayName string    `json:"display_name"`
	Content     string    `json:"content"`
	SentAt      time.Time `json:"sent_at"`
}
