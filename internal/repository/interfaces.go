// Package repository defines the persistence collaborator interfaces. The
// core game loop is fully in-memory; these cover the long-lived side data
// (accounts, friendships, room invites) and end-of-game stats.
package repository

import (
	"context"

	"github.com/imposterparty/api/internal/model"
)

// UserRepository defines user account operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// FriendRepository defines friendship and room-invite operations.
type FriendRepository interface {
	CreateRequest(ctx context.Context, fromUserID, toUserID string) (*model.FriendRequest, error)
	RequestByID(ctx context.Context, id string) (*model.FriendRequest, error)
	HasPendingRequest(ctx context.Context, fromUserID, toUserID string) (bool, error)
	UpdateRequestStatus(ctx context.Context, id, status string) error
	PendingRequests(ctx context.Context, userID string) ([]model.FriendRequest, error)

	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	AddFriendship(ctx context.Context, userID, otherID string) error
	RemoveFriendship(ctx context.Context, userID, otherID string) error
	FriendCount(ctx context.Context, userID string) (int, error)
	ListFriends(ctx context.Context, userID string) ([]model.Friend, error)

	CreateInvite(ctx context.Context, fromUserID, toUserID, roomID, roomName string) (*model.RoomInvite, error)
	InviteByID(ctx context.Context, id string) (*model.RoomInvite, error)
	UpdateInviteStatus(ctx context.Context, id, status string) error
	PendingInvites(ctx context.Context, userID string) ([]model.RoomInvite, error)
}

// StatsRepository records finished games. RecordGameEnd must be idempotent
// on the game ID: recording the same game twice stores exactly one result.
type StatsRepository interface {
	RecordGameEnd(ctx context.Context, result *model.GameResult) error
}
