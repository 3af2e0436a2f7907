package text

import "strings"

// Verdict classifies a free-text guess against the answer.
type Verdict int

const (
	// VerdictIgnore means the guess is too different in length to even be
	// considered a guess (no feedback at all).
	VerdictIgnore Verdict = iota
	VerdictWrong
	VerdictClose
	VerdictCorrect
)

// maxLengthDelta cheaply rejects wildly mismatched guesses before any
// distance is computed.
const maxLengthDelta = 5

// EvaluateGuess applies the two guess policies: correct is a case-insensitive
// match within one edit, close is within three edits of the answer as-is.
// The close comparison keeps the answer's original casing; that asymmetry is
// intentional and load-bearing for existing player expectations.
func EvaluateGuess(guess, answer string) Verdict {
	guess = strings.ToLower(strings.TrimSpace(guess))

	delta := len([]rune(guess)) - len([]rune(answer))
	if delta < 0 {
		delta = -delta
	}
	if delta > maxLengthDelta {
		return VerdictIgnore
	}

	if Distance(guess, strings.ToLower(answer)) <= 1 {
		return VerdictCorrect
	}
	if Distance(guess, answer) <= 3 {
		return VerdictClose
	}
	return VerdictWrong
}
