// Package ratelimit implements the per-event rate-limit collaborator.
// Windows are counted per user when the session is authenticated, per
// session otherwise. A limiter failure never blocks gameplay: on backend
// errors the event is allowed through.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether an inbound event may proceed.
type Limiter interface {
	Allow(ctx context.Context, event, sessionID, userID string) bool
}

// Window caps an event at Max occurrences per Period.
type Window struct {
	Max    int
	Period time.Duration
}

// DefaultWindows are the per-event limits. Events without an entry fall
// back to defaultWindow.
func DefaultWindows() map[string]Window {
	return map[string]Window{
		"join_game":           {Max: 3, Period: time.Minute},
		"create_room":         {Max: 5, Period: time.Minute},
		"join_room":           {Max: 10, Period: time.Minute},
		"start_game":          {Max: 5, Period: time.Minute},
		"submit_hint":         {Max: 20, Period: time.Minute},
		"submit_vote":         {Max: 20, Period: time.Minute},
		"send_message":        {Max: 30, Period: time.Minute},
		"get_rooms":           {Max: 30, Period: time.Minute},
		"send_friend_request": {Max: 10, Period: time.Minute},
		"send_room_invite":    {Max: 10, Period: time.Minute},
	}
}

var defaultWindow = Window{Max: 60, Period: time.Minute}

func windowFor(windows map[string]Window, event string) Window {
	if w, ok := windows[event]; ok {
		return w
	}
	return defaultWindow
}

// subject picks the identity a window is counted against.
func subject(sessionID, userID string) string {
	if userID != "" {
		return "u:" + userID
	}
	return "s:" + sessionID
}
