package service

import (
	"sync"
	"time"

	"github.com/imposterparty/api/internal/store"
	"github.com/imposterparty/api/pkg/imposter"
)

// roomTimer is the cancellable 1 Hz clock a PLAYING room owns. Stop is
// idempotent and safe to call while a tick is in flight; the goroutine
// also exits on its own when it notices it is no longer the room's timer.
type roomTimer struct {
	stop chan struct{}
	once sync.Once
}

func (t *roomTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// startTimerLocked replaces the room's timer with a fresh one. Callers
// hold the room lock.
func (s *GameService) startTimerLocked(r *store.Room) {
	r.StopTimer()
	t := &roomTimer{stop: make(chan struct{})}
	r.Timer = t
	go s.runTimer(r, t)
}

func (s *GameService) runTimer(r *store.Room, t *roomTimer) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if !s.tick(r, t) {
				return
			}
		}
	}
}

// tick advances the room by one second. Returns false when the timer
// should die: the room ended, emptied, or was superseded by a new timer.
func (s *GameService) tick(r *store.Room, t *roomTimer) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Timer != t || r.Status != store.StatusPlaying || r.Game == nil {
		return false
	}

	g := r.Game
	switch g.Phase {
	case imposter.PhaseHintRound:
		g.TurnTimeLeft--
		if g.TurnTimeLeft <= 0 {
			s.turnTimeoutLocked(r)
		}
	case imposter.PhaseRoleReveal:
		g.PhaseTimeLeft--
		if g.PhaseTimeLeft <= 0 {
			s.transitionLocked(r, imposter.PhaseHintRound)
			s.skipEliminatedLocked(r)
		}
	case imposter.PhaseDiscussion:
		g.PhaseTimeLeft--
		if g.PhaseTimeLeft <= 0 {
			s.transitionLocked(r, imposter.PhaseVoting)
			for _, p := range r.Players {
				p.HasVoted = false
			}
			s.broadcastRoomLocked(r)
		}
	case imposter.PhaseVoting:
		g.PhaseTimeLeft--
		if g.PhaseTimeLeft <= 0 {
			s.resolveVotesLocked(r)
		}
	case imposter.PhaseVoteResult:
		g.PhaseTimeLeft--
		if g.PhaseTimeLeft <= 0 {
			s.completeVoteResultLocked(r)
		}
	default:
		return false
	}

	s.broadcastGameLocked(r)
	return r.Status == store.StatusPlaying
}

// turnTimeoutLocked handles a speaker running out of time. A submitted
// hint advances the turn immediately, so an expiring turn always means no
// hint this pass; the sentinel keeps the hint list aligned with the pass
// count.
func (s *GameService) turnTimeoutLocked(r *store.Room) {
	g := r.Game
	if g.CurrentTurnIndex < len(g.TurnOrder) {
		speaker := g.TurnOrder[g.CurrentTurnIndex]
		g.Hints[speaker] = append(g.Hints[speaker], timeoutHintMarker)
	}
	s.advanceTurnLocked(r)
}
