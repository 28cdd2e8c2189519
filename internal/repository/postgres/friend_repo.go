package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/imposterparty/api/internal/model"
)

// FriendRepo handles friendship and room-invite database operations.
// Friendships are stored as a single row per pair with user_a < user_b.
type FriendRepo struct {
	db *sql.DB
}

// NewFriendRepo creates a FriendRepo.
func NewFriendRepo(db *sql.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// CreateRequest inserts a pending friend request.
func (r *FriendRepo) CreateRequest(ctx context.Context, fromUserID, toUserID string) (*model.FriendRequest, error) {
	var fr model.FriendRequest
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO friend_requests (from_user_id, to_user_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id, from_user_id, to_user_id, status, created_at`,
		fromUserID, toUserID,
	).Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Status, &fr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}
	return &fr, nil
}

// RequestByID returns a friend request, or nil when it does not exist.
func (r *FriendRepo) RequestByID(ctx context.Context, id string) (*model.FriendRequest, error) {
	var fr model.FriendRequest
	err := r.db.QueryRowContext(ctx,
		`SELECT id, from_user_id, to_user_id, status, created_at
		 FROM friend_requests WHERE id = $1`, id,
	).Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Status, &fr.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find friend request: %w", err)
	}
	return &fr, nil
}

// HasPendingRequest reports whether a pending request already exists in
// either direction between two users.
func (r *FriendRepo) HasPendingRequest(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM friend_requests
		   WHERE status = 'pending'
		     AND ((from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1))
		 )`, fromUserID, toUserID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending request: %w", err)
	}
	return exists, nil
}

// UpdateRequestStatus moves a request to accepted/declined/cancelled.
func (r *FriendRepo) UpdateRequestStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update friend request: %w", err)
	}
	return nil
}

// PendingRequests lists requests awaiting the user's response, sender names included.
func (r *FriendRepo) PendingRequests(ctx context.Context, userID string) ([]model.FriendRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fr.id, fr.from_user_id, fr.to_user_id, u.display_name, fr.status, fr.created_at
		 FROM friend_requests fr
		 JOIN users u ON u.id = fr.from_user_id
		 WHERE fr.to_user_id = $1 AND fr.status = 'pending'
		 ORDER BY fr.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var result []model.FriendRequest
	for rows.Next() {
		var fr model.FriendRequest
		if err := rows.Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.FromName, &fr.Status, &fr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		result = append(result, fr)
	}
	return result, rows.Err()
}

// AreFriends reports whether two users share a friendship row.
func (r *FriendRepo) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	a, b := orderPair(userID, otherID)
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_a = $1 AND user_b = $2)`,
		a, b,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return exists, nil
}

// AddFriendship inserts the friendship pair; duplicate pairs are ignored.
func (r *FriendRepo) AddFriendship(ctx context.Context, userID, otherID string) error {
	a, b := orderPair(userID, otherID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO friendships (user_a, user_b) VALUES ($1, $2)
		 ON CONFLICT (user_a, user_b) DO NOTHING`, a, b)
	if err != nil {
		return fmt.Errorf("add friendship: %w", err)
	}
	return nil
}

// RemoveFriendship deletes the pair's friendship row.
func (r *FriendRepo) RemoveFriendship(ctx context.Context, userID, otherID string) error {
	a, b := orderPair(userID, otherID)
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_a = $1 AND user_b = $2`, a, b)
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	return nil
}

// FriendCount returns how many friends a user has.
func (r *FriendRepo) FriendCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM friendships WHERE user_a = $1 OR user_b = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count friends: %w", err)
	}
	return n, nil
}

// ListFriends returns the user's friends with display names.
func (r *FriendRepo) ListFriends(ctx context.Context, userID string) ([]model.Friend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.display_name, u.avatar_url, f.created_at
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.user_a = $1 THEN f.user_b ELSE f.user_a END
		 WHERE f.user_a = $1 OR f.user_b = $1
		 ORDER BY u.display_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var result []model.Friend
	for rows.Next() {
		var f model.Friend
		var avatar sql.NullString
		if err := rows.Scan(&f.UserID, &f.DisplayName, &avatar, &f.FriendsAt); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		f.AvatarURL = avatar.String
		result = append(result, f)
	}
	return result, rows.Err()
}

// CreateInvite inserts a pending room invite.
func (r *FriendRepo) CreateInvite(ctx context.Context, fromUserID, toUserID, roomID, roomName string) (*model.RoomInvite, error) {
	var inv model.RoomInvite
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO room_invites (from_user_id, to_user_id, room_id, room_name, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING id, from_user_id, to_user_id, room_id, room_name, status, created_at`,
		fromUserID, toUserID, roomID, roomName,
	).Scan(&inv.ID, &inv.FromUserID, &inv.ToUserID, &inv.RoomID, &inv.RoomName, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create room invite: %w", err)
	}
	return &inv, nil
}

// InviteByID returns a room invite, or nil when it does not exist.
func (r *FriendRepo) InviteByID(ctx context.Context, id string) (*model.RoomInvite, error) {
	var inv model.RoomInvite
	err := r.db.QueryRowContext(ctx,
		`SELECT id, from_user_id, to_user_id, room_id, room_name, status, created_at
		 FROM room_invites WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.FromUserID, &inv.ToUserID, &inv.RoomID, &inv.RoomName, &inv.Status, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find room invite: %w", err)
	}
	return &inv, nil
}

// UpdateInviteStatus moves an invite to accepted/declined.
func (r *FriendRepo) UpdateInviteStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE room_invites SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update room invite: %w", err)
	}
	return nil
}

// PendingInvites lists a user's open room invites, sender names included.
func (r *FriendRepo) PendingInvites(ctx context.Context, userID string) ([]model.RoomInvite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ri.id, ri.from_user_id, u.display_name, ri.to_user_id, ri.room_id, ri.room_name, ri.status, ri.created_at
		 FROM room_invites ri
		 JOIN users u ON u.id = ri.from_user_id
		 WHERE ri.to_user_id = $1 AND ri.status = 'pending'
		 ORDER BY ri.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	defer rows.Close()

	var result []model.RoomInvite
	for rows.Next() {
		var inv model.RoomInvite
		if err := rows.Scan(&inv.ID, &inv.FromUserID, &inv.FromName, &inv.ToUserID, &inv.RoomID, &inv.RoomName, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room invite: %w", err)
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}
