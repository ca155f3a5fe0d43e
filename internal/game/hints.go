package game

// Hints holds the best mark seen so far for every letter A–Z.
type Hints [26]Mark

// Of returns the hint for letter; anything outside A–Z is unmarked.
func (h Hints) Of(letter byte) Mark {
	if !isUpper(letter) {
		return MarkUnmarked
	}
	return h[letter-'A']
}

// Promote raises the hint for letter to m when m ranks higher. It never lowers a hint.
func (h *Hints) Promote(letter byte, m Mark) {
	if !isUpper(letter) {
		return
	}
	if m > h[letter-'A'] {
		h[letter-'A'] = m
	}
}
