package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter counts events in in-process fixed windows. Used in tests
// and when no Redis is configured.
type MemoryLimiter struct {
	windows map[string]Window
	now     func() time.Time

	mu     sync.Mutex
	counts map[string]*windowCount
}

type windowCount struct {
	start time.Time
	n     int
}

// NewMemoryLimiter creates a MemoryLimiter with the given per-event windows.
func NewMemoryLimiter(windows map[string]Window) *MemoryLimiter {
	if windows == nil {
		windows = DefaultWindows()
	}
	return &MemoryLimiter{
		windows: windows,
		now:     time.Now,
		counts:  make(map[string]*windowCount),
	}
}

// Allow increments the event's window counter and checks it against the cap.
func (l *MemoryLimiter) Allow(_ context.Context, event, sessionID, userID string) bool {
	w := windowFor(l.windows, event)
	key := event + ":" + subject(sessionID, userID)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.counts[key]
	if !ok || now.Sub(wc.start) >= w.Period {
		wc = &windowCount{start: now}
		l.counts[key] = wc
	}
	wc.n++
	return wc.n <= w.Max
}

var _ Limiter = (*MemoryLimiter)(nil)
