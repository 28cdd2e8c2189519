// Package imposter implements the pure rules engine for the hidden-word
// social deduction game: phase transitions, vote tallying, word and turn
// selection, and win conditions. All functions are deterministic given their
// inputs; randomness is injected as a RandFunc and wall-clock time never
// enters the package.
package imposter

import "errors"

// Phase is one node of the round state machine.
type Phase string

const (
	PhaseLobby      Phase = "LOBBY"
	PhaseRoleReveal Phase = "ROLE_REVEAL"
	PhaseHintRound  Phase = "HINT_ROUND"
	PhaseDiscussion Phase = "DISCUSSION"
	PhaseVoting     Phase = "VOTING"
	PhaseVoteResult Phase = "VOTE_RESULT"
	PhaseGameOver   Phase = "GAME_OVER"
)

// Mode selects how much the imposter learns at game start.
type Mode string

const (
	// ModeClassic gives the imposter no word and tells them their role.
	ModeClassic Mode = "CLASSIC"
	// ModeBlind gives the imposter a decoy word and hides their role.
	ModeBlind Mode = "BLIND"
)

// Winner identifies the side that won a finished game.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerCitizens Winner = "CITIZENS"
	WinnerImposter Winner = "IMPOSTER"
)

// RandFunc returns a float in [0,1). Production passes the system PRNG;
// tests pass a scripted sequence.
type RandFunc func() float64

// Rule violations surfaced to clients. The error message is the stable
// client-facing code.
var (
	ErrGameNotStarted    = errors.New("GAME_NOT_STARTED")
	ErrWrongPhase        = errors.New("WRONG_PHASE")
	ErrCannotVoteSelf    = errors.New("CANNOT_VOTE_SELF")
	ErrInvalidTarget     = errors.New("INVALID_TARGET")
	ErrInvalidTransition = errors.New("INVALID_TRANSITION")

	// ErrAlreadyVoted is defined but never raised: vote overwrite is allowed
	// until the voting phase ends. Reserved for future rules.
	ErrAlreadyVoted = errors.New("ALREADY_VOTED")
)

// Config holds the tunable game constants. Durations are whole seconds
// because the scheduler ticks at 1 Hz.
type Config struct {
	RoleRevealTime int
	HintTurnTime   int
	HintRounds     int
	DiscussionTime int
	VotingTime     int
	VoteResultTime int

	// ImposterFirstSpeakerWeight biases first-speaker selection away from
	// the imposter. Non-imposters carry weight 1.0.
	ImposterFirstSpeakerWeight float64
}

// DefaultConfig returns the standard timing constants.
func DefaultConfig() Config {
	return Config{
		RoleRevealTime:             5,
		HintTurnTime:               30,
		HintRounds:                 2,
		DiscussionTime:             90,
		VotingTime:                 30,
		VoteResultTime:             5,
		ImposterFirstSpeakerWeight: 0.5,
	}
}

// PlayerInfo is the subset of player state the engine needs.
type PlayerInfo struct {
	ID         string
	Eliminated bool
}

// State is the canonical game state for one match. The engine never mutates
// a State in place; transition functions return copies.
type State struct {
	GameID           string              `json:"game_id"`
	Phase            Phase               `json:"phase"`
	Mode             Mode                `json:"mode"`
	Category         string              `json:"category"`
	CitizenWord      string              `json:"citizen_word"`
	ImposterWord     string              `json:"imposter_word,omitempty"` // BLIND only
	ImposterID       string              `json:"imposter_id"`
	TurnOrder        []string            `json:"turn_order"`
	CurrentTurnIndex int                 `json:"current_turn_index"`
	TurnTimeLeft     int                 `json:"turn_time_left"`
	PhaseTimeLeft    int                 `json:"phase_time_left"`
	RoundNumber      int                 `json:"round_number"`
	Votes            map[string]string   `json:"votes"` // voter -> target
	Hints            map[string][]string `json:"hints"` // player -> hints in order
	EliminatedID     string              `json:"eliminated_id,omitempty"`
	Winner           Winner              `json:"winner,omitempty"`
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	cp := *s
	cp.TurnOrder = append([]string(nil), s.TurnOrder...)
	cp.Votes = make(map[string]string, len(s.Votes))
	for k, v := range s.Votes {
		cp.Votes[k] = v
	}
	cp.Hints = make(map[string][]string, len(s.Hints))
	for k, v := range s.Hints {
		cp.Hints[k] = append([]string(nil), v...)
	}
	return &cp
}
