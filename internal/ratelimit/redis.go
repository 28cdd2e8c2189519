package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisLimiter counts events in fixed Redis windows (INCR + EXPIRE), so
// limits hold across server restarts and, later, across processes.
type RedisLimiter struct {
	rdb     *redis.Client
	windows map[string]Window
}

// NewRedisLimiter creates a RedisLimiter with the given per-event windows.
func NewRedisLimiter(rdb *redis.Client, windows map[string]Window) *RedisLimiter {
	if windows == nil {
		windows = DefaultWindows()
	}
	return &RedisLimiter{rdb: rdb, windows: windows}
}

// Allow increments the event's window counter and checks it against the cap.
func (l *RedisLimiter) Allow(ctx context.Context, event, sessionID, userID string) bool {
	w := windowFor(l.windows, event)
	key := "rl:" + event + ":" + subject(sessionID, userID)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, w.Period)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("Rate limiter backend error, allowing event")
		return true
	}
	return incr.Val() <= int64(w.Max)
}

// ensure interface compliance
var _ Limiter = (*RedisLimiter)(nil)

// Ping verifies the Redis backend is reachable.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return l.rdb.Ping(ctx).Err()
}
