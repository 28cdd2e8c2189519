package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/imposterparty/api/internal/model"
)

// StatsRepo persists finished game results.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo creates a StatsRepo.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// RecordGameEnd stores a game result. The insert is idempotent on game_id:
// a forced ending racing a normal one records exactly once, and the player
// rows are only written by the insert that wins.
func (r *StatsRepo) RecordGameEnd(ctx context.Context, result *model.GameResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO game_results (game_id, room_id, winner, category, duration_seconds)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (game_id) DO NOTHING`,
		result.GameID, result.RoomID, result.Winner, result.Category, result.DurationSeconds)
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("game result rows affected: %w", err)
	}
	if inserted == 0 {
		// Already recorded by an earlier call with the same game ID.
		return nil
	}

	for _, p := range result.Players {
		var userID any
		if p.UserID != "" {
			userID = p.UserID
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_result_players (game_id, user_id, display_name, was_imposter, won)
			 VALUES ($1, $2, $3, $4, $5)`,
			result.GameID, userID, p.DisplayName, p.WasImposter, p.Won)
		if err != nil {
			return fmt.Errorf("insert game result player: %w", err)
		}
	}

	return tx.Commit()
}
