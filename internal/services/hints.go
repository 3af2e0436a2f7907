package services

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tallypaws/scrambl/internal/fm"
	"github.com/tallypaws/scrambl/internal/game"
	"github.com/tallypaws/scrambl/internal/musicbrainz"
)

// MetadataHinter builds hint pools from Last.fm and MusicBrainz metadata.
// Missing or failing metadata degrades the pool instead of failing the game;
// only the primary lookup for the category is fatal.
type MetadataHinter struct {
	fm *fm.Client
	mb *musicbrainz.Client

	rngMu sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
}

func NewMetadataHinter(fmClient *fm.Client, mbClient *musicbrainz.Client) *MetadataHinter {
	return &MetadataHinter{
		fm:  fmClient,
		mb:  mbClient,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

func (h *MetadataHinter) HintsFor(ctx context.Context, cat game.Category, c game.Candidate) ([]string, error) {
	switch cat {
	case game.CategoryAlbum:
		return h.albumHints(ctx, c)
	case game.CategoryTrack:
		return h.trackHints(ctx, c)
	default:
		return h.artistHints(ctx, c)
	}
}

func (h *MetadataHinter) artistHints(ctx context.Context, c game.Candidate) ([]string, error) {
	info, err := h.fm.ArtistInfo(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	facts := game.ArtistFacts{Tags: info.Tags.TagNames()}

	mbid := c.MBID
	if mbid == "" {
		mbid = info.MBID
	}
	if mbid == "" {
		if mbid, err = h.mb.ArtistIDByName(ctx, c.Name); err != nil {
			log.Warn().Err(err).Str("artist", c.Name).Msg("musicbrainz search failed")
		}
	}
	if mbid != "" {
		artist, err := h.mb.ArtistInfo(ctx, mbid)
		if err != nil {
			log.Warn().Err(err).Str("mbid", mbid).Msg("musicbrainz lookup failed")
		} else {
			facts.Country = artist.Country
			facts.Disambiguation = artist.Disambiguation
			facts.Type = artist.Type
			facts.Born = parseMusicBrainzDate(artist.LifeSpan.Begin)
			facts.Died = parseMusicBrainzDate(artist.LifeSpan.End)
		}
	}
	return game.BuildArtistHints(facts, c.Name, c.Playcount, h.now()), nil
}

func (h *MetadataHinter) albumHints(ctx context.Context, c game.Candidate) ([]string, error) {
	info, err := h.fm.AlbumInfo(ctx, c.Artist, c.Name)
	if err != nil {
		return nil, err
	}

	facts := game.AlbumFacts{
		Tags:      info.Tags.TagNames(),
		Listeners: parseCount(info.Listeners),
	}
	for _, t := range info.Tracks.Track {
		facts.TrackNames = append(facts.TrackNames, t.Name)
	}
	if info.Wiki != nil {
		facts.Released = parseLastfmDate(info.Wiki.Published)
	}

	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return game.BuildAlbumHints(h.rng, facts, c.Name, c.Playcount, h.now()), nil
}

func (h *MetadataHinter) trackHints(ctx context.Context, c game.Candidate) ([]string, error) {
	info, err := h.fm.TrackInfo(ctx, c.Artist, c.Name)
	if err != nil {
		return nil, err
	}

	facts := game.TrackFacts{Tags: info.TopTags.TagNames()}
	if info.Album != nil {
		facts.AlbumTitle = info.Album.Title
	}
	if info.Wiki != nil {
		facts.Released = parseLastfmDate(info.Wiki.Published)
	}
	if ms, err := strconv.Atoi(info.Duration); err == nil && ms > 0 {
		facts.Duration = time.Duration(ms) * time.Millisecond
	}
	return game.BuildTrackHints(facts, c.Name, c.Playcount, h.now()), nil
}

// parseMusicBrainzDate handles the partial dates MusicBrainz serves: a full
// date, a year-month, or a bare year.
func parseMusicBrainzDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseLastfmDate handles the wiki publish format, e.g. "26 Sep 2008, 15:04".
func parseLastfmDate(s string) time.Time {
	for _, layout := range []string{"02 Jan 2006, 15:04", "2 Jan 2006, 15:04", "02 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
