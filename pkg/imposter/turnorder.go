package imposter

// SelectTurnOrder picks the speaking order for a hint round. The first
// speaker is drawn by weighted sampling where the imposter carries
// imposterWeight and everyone else 1.0, so the imposter speaks first less
// often. The remaining players follow in a Fisher-Yates shuffle driven by
// the same rand source.
func SelectTurnOrder(players []string, imposterID string, imposterWeight float64, rand RandFunc) []string {
	if len(players) == 0 {
		return nil
	}

	total := 0.0
	for _, p := range players {
		total += weightOf(p, imposterID, imposterWeight)
	}

	r := rand() * total
	first := len(players) - 1
	for i, p := range players {
		r -= weightOf(p, imposterID, imposterWeight)
		if r <= 0 {
			first = i
			break
		}
	}

	rest := make([]string, 0, len(players)-1)
	rest = append(rest, players[:first]...)
	rest = append(rest, players[first+1:]...)
	for i := len(rest) - 1; i > 0; i-- {
		j := drawIndex(i+1, rand)
		rest[i], rest[j] = rest[j], rest[i]
	}

	order := make([]string, 0, len(players))
	order = append(order, players[first])
	return append(order, rest...)
}

func weightOf(player, imposterID string, imposterWeight float64) float64 {
	if player == imposterID {
		return imposterWeight
	}
	return 1.0
}
