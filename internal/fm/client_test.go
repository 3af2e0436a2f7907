package fm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestImagesBestPrefersLargest(t *testing.T) {
	imgs := Images{
		{URL: "http://img/medium.png", Size: "medium"},
		{URL: "http://img/extralarge.png", Size: "extralarge"},
		{URL: "http://img/large.png", Size: "large"},
	}
	if got := imgs.Best(); got != "http://img/extralarge.png" {
		t.Fatalf("Best() = %q", got)
	}
}

func TestImagesBestSkipsPlaceholder(t *testing.T) {
	imgs := Images{
		{URL: "http://img/2a96cbd8b46e442fc41c2b86b821562f.png", Size: "extralarge"},
		{URL: "http://img/real.png", Size: "medium"},
	}
	if got := imgs.Best(); got != "http://img/real.png" {
		t.Fatalf("Best() = %q, want the non-placeholder image", got)
	}
}

func TestImagesBestEmpty(t *testing.T) {
	imgs := Images{
		{URL: "", Size: "extralarge"},
		{URL: "http://img/2a96cbd8b46e442fc41c2b86b821562f.png", Size: "large"},
	}
	if got := imgs.Best(); got != "" {
		t.Fatalf("Best() = %q, want none", got)
	}
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient("key")
	c.baseURL = srv.URL + "/"
	c.httpClient = srv.Client()
	return c, srv
}

func TestTopArtists(t *testing.T) {
	var calls int32
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if got := r.URL.Query().Get("method"); got != "user.gettopartists" {
			t.Errorf("method = %q", got)
		}
		if got := r.URL.Query().Get("user"); got != "alice" {
			t.Errorf("user = %q", got)
		}
		w.Write([]byte(`{"topartists":{"artist":[{"name":"Queen","playcount":"321"}]}}`))
	})
	defer srv.Close()

	artists, err := c.TopArtists(context.Background(), "alice")
	if err != nil {
		t.Fatalf("TopArtists: %v", err)
	}
	if len(artists) != 1 || artists[0].Name != "Queen" || artists[0].Playcount != "321" {
		t.Fatalf("unexpected artists: %+v", artists)
	}

	// second call is served from the memo cache
	if _, err := c.TopArtists(context.Background(), "alice"); err != nil {
		t.Fatalf("cached TopArtists: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("upstream called %d times, want 1", n)
	}
}

func TestUserNotFound(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":6,"message":"User not found"}`))
	})
	defer srv.Close()

	_, err := c.TopAlbums(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestAlbumInfo(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"album":{"name":"Abbey Road","artist":"The Beatles","listeners":"99",` +
			`"tracks":{"track":[{"name":"Come Together","duration":259}]},` +
			`"tags":{"tag":[{"name":"rock"}]},"wiki":{"published":"26 Sep 1969, 00:00"}}}`))
	})
	defer srv.Close()

	info, err := c.AlbumInfo(context.Background(), "The Beatles", "Abbey Road")
	if err != nil {
		t.Fatalf("AlbumInfo: %v", err)
	}
	if info.Artist != "The Beatles" || len(info.Tracks.Track) != 1 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := info.Tags.TagNames(); len(got) != 1 || got[0] != "rock" {
		t.Fatalf("tags = %v", got)
	}
	if info.Wiki == nil || info.Wiki.Published != "26 Sep 1969, 00:00" {
		t.Fatalf("wiki = %+v", info.Wiki)
	}
}
