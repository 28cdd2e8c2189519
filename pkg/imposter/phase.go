package imposter

// legalTransitions is the edge set of the phase state machine. LOBBY is
// initial; GAME_OVER is terminal within one match (play-again resets the
// whole state rather than transitioning out of it).
var legalTransitions = map[Phase][]Phase{
	PhaseLobby:      {PhaseRoleReveal},
	PhaseRoleReveal: {PhaseHintRound},
	PhaseHintRound:  {PhaseDiscussion},
	PhaseDiscussion: {PhaseVoting},
	PhaseVoting:     {PhaseVoteResult},
	PhaseVoteResult: {PhaseGameOver, PhaseHintRound},
}

// CanTransition reports whether from -> to is a legal phase edge.
func CanTransition(from, to Phase) bool {
	for _, p := range legalTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// NextPhase returns the phase that normally follows the given one. The
// VOTE_RESULT successor depends on the win check, so callers decide between
// GAME_OVER and HINT_ROUND there; this returns the continue-playing edge.
func NextPhase(p Phase) Phase {
	switch p {
	case PhaseLobby:
		return PhaseRoleReveal
	case PhaseRoleReveal:
		return PhaseHintRound
	case PhaseHintRound:
		return PhaseDiscussion
	case PhaseDiscussion:
		return PhaseVoting
	case PhaseVoting:
		return PhaseVoteResult
	case PhaseVoteResult:
		return PhaseHintRound
	}
	return PhaseGameOver
}

// PhaseDuration returns the configured duration in seconds for a phase.
// LOBBY and GAME_OVER are untimed and return 0.
func PhaseDuration(cfg Config, p Phase) int {
	switch p {
	case PhaseRoleReveal:
		return cfg.RoleRevealTime
	case PhaseHintRound:
		return cfg.HintTurnTime
	case PhaseDiscussion:
		return cfg.DiscussionTime
	case PhaseVoting:
		return cfg.VotingTime
	case PhaseVoteResult:
		return cfg.VoteResultTime
	}
	return 0
}

// ApplyPhaseTransition returns a copy of the state moved to target, with
// the phase timer reset and phase-specific fields cleared:
//
//   - VOTING clears the vote map.
//   - HINT_ROUND resets the turn index and turn timer.
//   - GAME_OVER leaves all fields untouched (winner is already set).
//
// Returns ErrInvalidTransition when the edge is not in the state machine.
// The input state is never mutated.
func ApplyPhaseTransition(s *State, target Phase, cfg Config) (*State, error) {
	if !CanTransition(s.Phase, target) {
		return nil, ErrInvalidTransition
	}
	next := s.Clone()
	next.Phase = target
	next.PhaseTimeLeft = PhaseDuration(cfg, target)
	switch target {
	case PhaseVoting:
		next.Votes = make(map[string]string)
	case PhaseHintRound:
		next.CurrentTurnIndex = 0
		next.TurnTimeLeft = cfg.HintTurnTime
	}
	return next, nil
}
