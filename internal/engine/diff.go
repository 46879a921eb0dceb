// Package engine implements the typing session: diffing, keystroke handling, and scoring.
package engine

// CharState classifies one target position against the input.
type CharState uint8

const (
	Untyped CharState = iota
	Correct
	Incorrect
)

func (s CharState) String() string {
	switch s {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "untyped"
	}
}

// Diff returns one state per target rune. Input runes past the end of target are ignored.
func Diff(target, input []rune) []CharState {
	out := make([]CharState, len(target))
	for i := range target {
		switch {
		case i >= len(input):
			out[i] = Untyped
		case input[i] == target[i]:
			out[i] = Correct
		default:
			out[i] = Incorrect
		}
	}
	return out
}

// CountCorrect returns the number of positions where input matches target.
func CountCorrect(target, input []rune) int {
	n := len(input)
	if n > len(target) {
		n = len(target)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if input[i] == target[i] {
			correct++
		}
	}
	return correct
}
