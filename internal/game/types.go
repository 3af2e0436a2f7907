// Package game implements the guessing-game core: answer selection, the
// session registry, the session state machine and hint synthesis.
package game

import (
	"image"
	"math/rand"
	"sync"
	"time"
)

// Mode is the puzzle rendering variant.
type Mode string

const (
	// ModeJumble relies on the scrambled text as the puzzle.
	ModeJumble Mode = "jumble"
	// ModePixel relies on a pixelated image; the scrambled text is a
	// secondary overlay.
	ModePixel Mode = "pixel"
)

// Category is the kind of music entity being guessed. CategoryMix resolves
// to one of the three concrete categories at game start.
type Category string

const (
	CategoryArtist Category = "artist"
	CategoryAlbum  Category = "album"
	CategoryTrack  Category = "track"
	CategoryMix    Category = "mix"
)

// ParseCategory maps user input to a category, defaulting per mode.
func ParseCategory(s string, fallback Category) Category {
	switch Category(s) {
	case CategoryArtist, CategoryAlbum, CategoryTrack, CategoryMix:
		return Category(s)
	}
	return fallback
}

// ResolveMix turns CategoryMix into a uniformly chosen concrete category.
func ResolveMix(rng *rand.Rand, cat Category) Category {
	if cat != CategoryMix {
		return cat
	}
	concrete := []Category{CategoryArtist, CategoryAlbum, CategoryTrack}
	return concrete[rng.Intn(len(concrete))]
}

// Presentation accent colors, by outcome and by category.
const (
	ColorGiveUp  = 0xE74C3C
	ColorStartUp = 0x3498DB
	ColorCorrect = 0x57F287
	ColorTimeout = 0x95A5A6
)

var categoryColors = map[Category]int{
	CategoryArtist: 0x9B59B6,
	CategoryAlbum:  0xE67E22,
	CategoryTrack:  0x1ABC9C,
	CategoryMix:    0xF1C40F,
}

// Candidate is one item of a user's listening history, normalized from the
// upstream provider.
type Candidate struct {
	Name      string
	Artist    string // empty for artist candidates
	Playcount int
	ImageURL  string // best usable image, empty when none
	Tags      []string
	MBID      string
}

// Key is the identity used by the recency filter: a composite of the
// secondary and primary names.
func (c Candidate) Key() string {
	return c.Artist + "::" + c.Name
}

// Hints is the reveal state of a session's hint pool. Revealed is a
// subsequence of Pool in reveal order; the pool never shrinks.
type Hints struct {
	Revealed []string
	Pool     []string
}

// NewHints draws the initial random subset (without replacement) to show on
// first presentation.
func NewHints(rng *rand.Rand, pool []string, initial int) Hints {
	return Hints{
		Pool:     pool,
		Revealed: PickSubset(rng, pool, initial, nil),
	}
}

// RevealOne reveals one previously-unrevealed hint. Reports whether anything
// was revealed.
func (h *Hints) RevealOne(rng *rand.Rand) bool {
	if h.Exhausted() {
		return false
	}
	more := PickSubset(rng, h.Pool, 1, h.Revealed)
	if len(more) == 0 {
		return false
	}
	h.Revealed = append(h.Revealed, more...)
	return true
}

func (h *Hints) Exhausted() bool {
	return len(h.Revealed) >= len(h.Pool)
}

// Session is one active or just-terminated game. Mutations go through the
// session mutex; terminal transitions additionally go through finish so that
// racing timers, give-ups and guesses settle on exactly one winner.
type Session struct {
	mu sync.Mutex

	ID       string
	Mode     Mode
	Category Category
	Mix      bool

	Answer string
	By     string // attribution artist for album/track games

	Hints     Hints
	Scrambled string
	Color     int

	ChannelID int64
	MessageID int64
	StartedAt time.Time
	Answered  bool

	// Pixel mode only.
	Image      image.Image
	PixelLevel float64
}

// finish marks the session terminal. Reports false when it already was, which
// makes every terminal path idempotent under races.
func (s *Session) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Answered {
		return false
	}
	s.Answered = true
	return true
}

func (s *Session) answered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Answered
}
