package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tallypaws/scrambl/internal/text"
)

// InitialHintCount is how many hints a fresh game shows before anyone presses
// Add Hint.
const InitialHintCount = 3

// ArtistFacts, AlbumFacts and TrackFacts are the metadata slices the hint
// builders understand. Zero-valued fields mean the upstream record lacked
// them; the corresponding facts are silently skipped.
type ArtistFacts struct {
	Country        string
	Disambiguation string
	Type           string
	Born           time.Time
	Died           time.Time
	Tags           []string
}

type AlbumFacts struct {
	Released   time.Time
	Tags       []string
	TrackNames []string
	Listeners  int
}

type TrackFacts struct {
	Released   time.Time
	AlbumTitle string
	Tags       []string
	Duration   time.Duration
}

// BuildArtistHints assembles the ordered candidate pool for an artist game.
func BuildArtistHints(f ArtistFacts, name string, plays int, now time.Time) []string {
	var hints []string
	if f.Country != "" {
		hints = append(hints, fmt.Sprintf("Their country is %s %s", countryFlag(f.Country), strings.ToUpper(f.Country)))
	}
	if f.Disambiguation != "" {
		hints = append(hints, fmt.Sprintf("They might be described as *%s*", f.Disambiguation))
	}
	hints = append(hints, fmt.Sprintf("You have %s on this artist", plural(plays, "play")))
	if tags := filterTags(f.Tags, name); len(tags) > 0 {
		hints = append(hints, "Some of their tags are "+strings.Join(tags, ", "))
	}
	if !f.Born.IsZero() {
		hints = append(hints, fmt.Sprintf("They were born *%s*", relativeTime(f.Born, now)))
	}
	if !f.Died.IsZero() {
		hints = append(hints, fmt.Sprintf("They passed away *%s*", relativeTime(f.Died, now)))
	}
	if f.Type != "" {
		hints = append(hints, fmt.Sprintf("They are a *%s*", f.Type))
	}
	return hints
}

// BuildAlbumHints assembles the ordered candidate pool for an album game.
// Tracks whose names are too similar to the album's own are dropped, so the
// hint does not give the answer away; one of the rest is chosen at random.
func BuildAlbumHints(rng *rand.Rand, f AlbumFacts, album string, plays int, now time.Time) []string {
	var hints []string
	if !f.Released.IsZero() {
		hints = append(hints, fmt.Sprintf("It was released *%s*", relativeTime(f.Released, now)))
	}
	if tags := filterTags(f.Tags, album); len(tags) > 0 {
		hints = append(hints, "Some of its tags are "+strings.Join(tags, ", "))
	}
	distinct := lo.Filter(f.TrackNames, func(t string, _ int) bool {
		return !namesTooSimilar(album, t)
	})
	if len(distinct) > 0 {
		hints = append(hints, fmt.Sprintf("One of its tracks is %q", distinct[rng.Intn(len(distinct))]))
	}
	if f.Listeners > 0 {
		hints = append(hints, fmt.Sprintf("It has %s listeners", formatCount(f.Listeners)))
	}
	if plays > 0 {
		hints = append(hints, fmt.Sprintf("You have %s on this album", plural(plays, "play")))
	}
	return hints
}

// BuildTrackHints assembles the ordered candidate pool for a track game. The
// album attribution is dropped when album and track names are too similar.
func BuildTrackHints(f TrackFacts, track string, plays int, now time.Time) []string {
	var hints []string
	if !f.Released.IsZero() {
		hints = append(hints, fmt.Sprintf("It was released *%s*", relativeTime(f.Released, now)))
	}
	if f.AlbumTitle != "" && !namesTooSimilar(f.AlbumTitle, track) && !namesTooSimilar(track, f.AlbumTitle) {
		hints = append(hints, fmt.Sprintf("It is from the album %q", f.AlbumTitle))
	}
	if tags := filterTags(f.Tags, track); len(tags) > 0 {
		hints = append(hints, "Some of its tags are "+strings.Join(tags, ", "))
	}
	if f.Duration > 0 {
		hints = append(hints, "Its duration is "+humanDuration(f.Duration))
	}
	if plays > 0 {
		hints = append(hints, fmt.Sprintf("You have %s on this track", plural(plays, "play")))
	}
	return hints
}

// filterTags drops tags that contain the answer's own name.
func filterTags(tags []string, name string) []string {
	lowered := strings.ToLower(name)
	return lo.Filter(tags, func(t string, _ int) bool {
		return !strings.Contains(strings.ToLower(t), lowered)
	})
}

// namesTooSimilar reports whether candidate would give away name: within
// three edits, within a quarter of the longer length, or a substring match.
func namesTooSimilar(name, candidate string) bool {
	a := strings.ToLower(name)
	b := strings.ToLower(candidate)
	dist := text.Distance(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	relative := 0.0
	if maxLen > 0 {
		relative = float64(dist) / float64(maxLen)
	}
	return dist <= 3 || relative <= 0.25 || strings.Contains(b, a)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// formatCount renders 1234567 as "1,234,567".
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if n < 0 {
		return "-" + b.String()
	}
	return b.String()
}

// relativeTime renders a past timestamp as "about N years ago" style text.
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}

	var amount string
	switch {
	case d >= 365*24*time.Hour:
		amount = plural(int(d/(365*24*time.Hour)), "year")
	case d >= 30*24*time.Hour:
		amount = plural(int(d/(30*24*time.Hour)), "month")
	case d >= 24*time.Hour:
		amount = plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour:
		amount = plural(int(d/time.Hour), "hour")
	default:
		amount = plural(int(d/time.Minute), "minute")
	}

	if future {
		return "in about " + amount
	}
	return "about " + amount + " ago"
}

func humanDuration(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	var parts []string
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 {
		parts = append(parts, plural(s, "second"))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}

// countryFlag maps an ISO country code to its emoji flag.
func countryFlag(code string) string {
	code = strings.ToUpper(code)
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(rune(0x1F1E6 + (r - 'A')))
	}
	return b.String()
}
