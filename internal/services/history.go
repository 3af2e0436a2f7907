package services

import (
	"context"
	"strconv"

	"github.com/tallypaws/scrambl/internal/fm"
	"github.com/tallypaws/scrambl/internal/game"
)

// HistoryService adapts Last.fm charts into game candidates.
type HistoryService struct {
	fm *fm.Client
}

func NewHistoryService(client *fm.Client) *HistoryService {
	return &HistoryService{fm: client}
}

func (s *HistoryService) TopArtists(ctx context.Context, user string) ([]game.Candidate, error) {
	artists, err := s.fm.TopArtists(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]game.Candidate, 0, len(artists))
	for _, a := range artists {
		out = append(out, game.Candidate{
			Name:      a.Name,
			Playcount: parseCount(a.Playcount),
			ImageURL:  a.Images.Best(),
			MBID:      a.MBID,
		})
	}
	return out, nil
}

func (s *HistoryService) TopAlbums(ctx context.Context, user string) ([]game.Candidate, error) {
	albums, err := s.fm.TopAlbums(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]game.Candidate, 0, len(albums))
	for _, a := range albums {
		out = append(out, game.Candidate{
			Name:      a.Name,
			Artist:    a.Artist.Name,
			Playcount: parseCount(a.Playcount),
			ImageURL:  a.Images.Best(),
			MBID:      a.MBID,
		})
	}
	return out, nil
}

func (s *HistoryService) TopTracks(ctx context.Context, user string) ([]game.Candidate, error) {
	tracks, err := s.fm.TopTracks(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]game.Candidate, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, game.Candidate{
			Name:      t.Name,
			Artist:    t.Artist.Name,
			Playcount: parseCount(t.Playcount),
			ImageURL:  t.Images.Best(),
			MBID:      t.MBID,
		})
	}
	return out, nil
}

// parseCount tolerates the string-typed numbers Last.fm serves.
func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
