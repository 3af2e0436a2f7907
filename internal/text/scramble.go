// Package text holds the puzzle text utilities: the answer scrambler and the
// fuzzy guess matcher.
package text

import (
	"math/rand"
	"strings"

	"github.com/hbollon/go-edlib"
)

// ScrambleOptions controls the scrambler. The zero value is not useful; use
// DefaultScrambleOptions.
type ScrambleOptions struct {
	PreserveWords   bool
	MinimumDistance int
	MaxAttempts     int
}

func DefaultScrambleOptions() ScrambleOptions {
	return ScrambleOptions{
		PreserveWords:   true,
		MinimumDistance: 2,
		MaxAttempts:     50,
	}
}

// Scramble returns a shuffled rendering of s. With PreserveWords each
// space-delimited token is permuted independently. The result is re-rolled
// until it is at least MinimumDistance edits away from the input; after
// MaxAttempts the last attempt is accepted as-is, since short or low-entropy
// strings may never clear the bar.
func Scramble(rng *rand.Rand, s string, opts ScrambleOptions) string {
	run := func() string {
		if opts.PreserveWords {
			words := strings.Split(s, " ")
			for i, w := range words {
				words[i] = shuffleRunes(rng, w)
			}
			return strings.Join(words, " ")
		}
		return shuffleRunes(rng, s)
	}

	scrambled := run()
	for attempts := 0; Distance(s, scrambled) < opts.MinimumDistance && attempts < opts.MaxAttempts; attempts++ {
		scrambled = run()
	}
	return scrambled
}

// shuffleRunes is a Fisher-Yates permutation over code points.
func shuffleRunes(rng *rand.Rand, s string) string {
	runes := []rune(s)
	for i := len(runes) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// Distance is the Levenshtein edit distance over code points.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}
