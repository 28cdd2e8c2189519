package imposter

// CheckWinCondition evaluates the roster after an elimination. Citizens win
// the moment the imposter is eliminated (or gone from the roster). The
// imposter wins when at most one citizen remains standing. Otherwise the
// game continues.
func CheckWinCondition(players []PlayerInfo, imposterID string) Winner {
	imposterAlive := false
	aliveCitizens := 0
	for _, p := range players {
		if p.ID == imposterID {
			imposterAlive = !p.Eliminated
			continue
		}
		if !p.Eliminated {
			aliveCitizens++
		}
	}
	if !imposterAlive {
		return WinnerCitizens
	}
	if aliveCitizens <= 1 {
		return WinnerImposter
	}
	return WinnerNone
}
