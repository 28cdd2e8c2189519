package imposter

// SelectWordsForMode draws the secret words for a new game. CLASSIC draws a
// single citizen word; the imposter gets none. BLIND additionally draws a
// decoy imposter word, redrawing until its index differs from the citizen
// word's, so with two words the decoy is always the other one. A
// single-word list degenerates to both sides holding the same word.
func SelectWordsForMode(mode Mode, words []string, rand RandFunc) (citizenWord, imposterWord string) {
	if len(words) == 0 {
		return "", ""
	}
	ci := drawIndex(len(words), rand)
	citizenWord = words[ci]
	if mode != ModeBlind {
		return citizenWord, ""
	}
	if len(words) == 1 {
		return citizenWord, citizenWord
	}
	ii := ci
	for ii == ci {
		ii = drawIndex(len(words), rand)
	}
	return citizenWord, words[ii]
}

func drawIndex(n int, rand RandFunc) int {
	i := int(rand() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
