package imposter

import "sort"

// ValidateVote checks a vote command against the current state and player
// roster. Rules, in order: game must exist and be in VOTING, a voter cannot
// target themselves, and the target must be a present, non-eliminated
// player. Changing an existing vote is allowed (last write wins), so a
// repeat voter passes validation.
func ValidateVote(s *State, players []PlayerInfo, voter, target string) error {
	if s == nil || s.Phase == PhaseLobby {
		return ErrGameNotStarted
	}
	if s.Phase != PhaseVoting {
		return ErrWrongPhase
	}
	if voter == target {
		return ErrCannotVoteSelf
	}
	for _, p := range players {
		if p.ID == target {
			if p.Eliminated {
				return ErrInvalidTarget
			}
			return nil
		}
	}
	return ErrInvalidTarget
}

// ApplyVote returns a new vote map with the voter's choice set, leaving the
// input untouched.
func ApplyVote(votes map[string]string, voter, target string) map[string]string {
	next := make(map[string]string, len(votes)+1)
	for k, v := range votes {
		next[k] = v
	}
	next[voter] = target
	return next
}

// CalculateEliminated tallies the vote map and returns the player with
// strictly the most votes, or "" on an empty map or a top tie (a tie means
// nobody is eliminated and play continues).
func CalculateEliminated(votes map[string]string) string {
	if len(votes) == 0 {
		return ""
	}
	tally := make(map[string]int)
	for _, target := range votes {
		tally[target]++
	}
	type count struct {
		id string
		n  int
	}
	counts := make([]count, 0, len(tally))
	for id, n := range tally {
		counts = append(counts, count{id, n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].n > counts[j].n })
	if len(counts) > 1 && counts[0].n == counts[1].n {
		return ""
	}
	return counts[0].id
}
