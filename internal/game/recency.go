package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"
)

// RecencyWindow is how long a selected answer stays excluded from re-selection
// for the same user and category.
const RecencyWindow = 24 * time.Hour

type recencyEntry struct {
	key string
	at  time.Time
}

// RecencyFilter keeps a rolling per-user, per-category window of recently
// selected answer keys. Entries are pruned lazily on access and nothing is
// persisted; the window resets with the process.
type RecencyFilter struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[int64]map[Category][]recencyEntry
	now     func() time.Time
}

func NewRecencyFilter(window time.Duration) *RecencyFilter {
	if window <= 0 {
		window = RecencyWindow
	}
	return &RecencyFilter{
		window:  window,
		entries: make(map[int64]map[Category][]recencyEntry),
		now:     time.Now,
	}
}

// Record appends a timestamped entry for the user and category.
func (f *RecencyFilter) Record(userID int64, cat Category, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byCat, ok := f.entries[userID]
	if !ok {
		byCat = make(map[Category][]recencyEntry)
		f.entries[userID] = byCat
	}
	byCat[cat] = append(f.prune(byCat[cat]), recencyEntry{key: key, at: f.now()})
}

// ActiveKeys returns the keys recorded within the window, pruning expired
// entries as a side effect.
func (f *RecencyFilter) ActiveKeys(userID int64, cat Category) map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make(map[string]bool)
	byCat, ok := f.entries[userID]
	if !ok {
		return keys
	}
	byCat[cat] = f.prune(byCat[cat])
	for _, e := range byCat[cat] {
		keys[e.key] = true
	}
	return keys
}

// prune assumes f.mu is held.
func (f *RecencyFilter) prune(entries []recencyEntry) []recencyEntry {
	now := f.now()
	kept := entries[:0]
	for _, e := range entries {
		if now.Sub(e.at) <= f.window {
			kept = append(kept, e)
		}
	}
	return kept
}

// Select picks a candidate weighted by playcount^exponent, preferring
// candidates outside the user's recency window. If every candidate is recent
// the restriction is dropped rather than blocking selection. The picked
// candidate's key is recorded.
func (f *RecencyFilter) Select(rng *rand.Rand, items []Candidate, exponent float64, userID int64, cat Category) (Candidate, bool) {
	if len(items) == 0 {
		return Candidate{}, false
	}

	recent := f.ActiveKeys(userID, cat)
	candidates := lo.Filter(items, func(c Candidate, _ int) bool {
		return !recent[c.Key()]
	})
	if len(candidates) == 0 {
		candidates = items
	}

	picked, ok := PickWeighted(rng, candidates, func(c Candidate) float64 {
		return float64(c.Playcount)
	}, exponent)
	if ok {
		f.Record(userID, cat, picked.Key())
	}
	return picked, ok
}
