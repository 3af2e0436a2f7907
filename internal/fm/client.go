// Package fm is a typed client for the Last.fm API: per-user charts plus
// album, track and artist metadata. Responses are memoized for a few minutes
// since games in a busy channel hammer the same user's charts.
package fm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tallypaws/scrambl/internal/cache"
)

const DefaultBaseURL = "http://ws.audioscrobbler.com/2.0/"

// Last.fm error code for an unknown user.
const errCodeUserNotFound = 6

var ErrUserNotFound = errors.New("last.fm user not found")

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	topArtists  *cache.Cache[[]TopArtist]
	topAlbums   *cache.Cache[[]TopAlbum]
	topTracks   *cache.Cache[[]TopTrack]
	albumInfos  *cache.Cache[AlbumInfo]
	trackInfos  *cache.Cache[TrackInfo]
	artistInfos *cache.Cache[ArtistInfo]
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},

		topArtists:  cache.New[[]TopArtist](0, 0),
		topAlbums:   cache.New[[]TopAlbum](0, 0),
		topTracks:   cache.New[[]TopTrack](0, 0),
		albumInfos:  cache.New[AlbumInfo](0, 0),
		trackInfos:  cache.New[TrackInfo](0, 0),
		artistInfos: cache.New[ArtistInfo](0, 0),
	}
}

func (c *Client) request(ctx context.Context, method string, params map[string]string, out interface{}) error {
	q := url.Values{}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	// Errors come back as JSON bodies, often alongside a non-200 status.
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Code != 0 {
		if apiErr.Code == errCodeUserNotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("last.fm %s: %s", method, apiErr.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("last.fm %s: status %d", method, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

func (c *Client) TopArtists(ctx context.Context, user string) ([]TopArtist, error) {
	return c.topArtists.Fetch("topartists:"+user, func() ([]TopArtist, error) {
		var env topArtistsEnvelope
		if err := c.request(ctx, "user.gettopartists", map[string]string{"user": user}, &env); err != nil {
			return nil, err
		}
		return env.TopArtists.Artist, nil
	})
}

func (c *Client) TopAlbums(ctx context.Context, user string) ([]TopAlbum, error) {
	return c.topAlbums.Fetch("topalbums:"+user, func() ([]TopAlbum, error) {
		var env topAlbumsEnvelope
		if err := c.request(ctx, "user.gettopalbums", map[string]string{"user": user}, &env); err != nil {
			return nil, err
		}
		return env.TopAlbums.Album, nil
	})
}

func (c *Client) TopTracks(ctx context.Context, user string) ([]TopTrack, error) {
	return c.topTracks.Fetch("toptracks:"+user, func() ([]TopTrack, error) {
		var env topTracksEnvelope
		if err := c.request(ctx, "user.gettoptracks", map[string]string{"user": user}, &env); err != nil {
			return nil, err
		}
		return env.TopTracks.Track, nil
	})
}

func (c *Client) AlbumInfo(ctx context.Context, artist, album string) (AlbumInfo, error) {
	return c.albumInfos.Fetch("albuminfo:"+artist+"::"+album, func() (AlbumInfo, error) {
		var env albumInfoEnvelope
		err := c.request(ctx, "album.getinfo", map[string]string{"artist": artist, "album": album}, &env)
		return env.Album, err
	})
}

func (c *Client) TrackInfo(ctx context.Context, artist, track string) (TrackInfo, error) {
	return c.trackInfos.Fetch("trackinfo:"+artist+"::"+track, func() (TrackInfo, error) {
		var env trackInfoEnvelope
		err := c.request(ctx, "track.getinfo", map[string]string{"artist": artist, "track": track}, &env)
		return env.Track, err
	})
}

func (c *Client) ArtistInfo(ctx context.Context, artist string) (ArtistInfo, error) {
	return c.artistInfos.Fetch("artistinfo:"+artist, func() (ArtistInfo, error) {
		var env artistInfoEnvelope
		err := c.request(ctx, "artist.getinfo", map[string]string{"artist": artist}, &env)
		return env.Artist, err
	})
}
