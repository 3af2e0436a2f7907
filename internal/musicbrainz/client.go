// Package musicbrainz is a minimal client for the MusicBrainz web service,
// used to look up artist facts for hints. MusicBrainz requires an identifying
// User-Agent; responses are memoized to stay friendly to their rate limits.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tallypaws/scrambl/internal/cache"
)

const (
	DefaultBaseURL = "https://musicbrainz.org/ws/2/"
	userAgent      = "scrambl music guessing bot (https://github.com/tallypaws/scrambl)"
)

// Artist is the subset of a MusicBrainz artist record the hint builders use.
type Artist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Country        string `json:"country"`
	Disambiguation string `json:"disambiguation"`
	Type           string `json:"type"`
	LifeSpan       struct {
		Begin string `json:"begin"`
		End   string `json:"end"`
	} `json:"life-span"`
}

type searchResult struct {
	Artists []Artist `json:"artists"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	ids     *cache.Cache[string]
	artists *cache.Cache[Artist]
}

func NewClient() *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		ids:        cache.New[string](0, 0),
		artists:    cache.New[Artist](0, 0),
	}
}

func (c *Client) request(ctx context.Context, path string, params map[string]string, out interface{}) error {
	q := url.Values{}
	q.Set("fmt", "json")
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz %s: status %d", path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}

// ArtistIDByName searches for an artist and returns the best match's MBID,
// or "" when the search comes back empty.
func (c *Client) ArtistIDByName(ctx context.Context, name string) (string, error) {
	return c.ids.Fetch("id:"+name, func() (string, error) {
		var result searchResult
		err := c.request(ctx, "artist", map[string]string{"query": name, "limit": "1"}, &result)
		if err != nil {
			return "", err
		}
		if len(result.Artists) == 0 {
			return "", nil
		}
		return result.Artists[0].ID, nil
	})
}

// ArtistInfo fetches the full artist record by MBID.
func (c *Client) ArtistInfo(ctx context.Context, mbid string) (Artist, error) {
	return c.artists.Fetch("artist:"+mbid, func() (Artist, error) {
		var artist Artist
		err := c.request(ctx, "artist/"+mbid, nil, &artist)
		return artist, err
	})
}
