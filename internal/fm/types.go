package fm

import (
	"encoding/json"
	"strings"
)

// Last.fm serves a known placeholder graphic for entities without real art.
// Its URL contains this hash; such images are useless as puzzles.
const placeholderImageHash = "2a96cbd8b46e442fc41c2b86b821562f"

type Image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type Images []Image

var imageSizePreference = []string{"mega", "extralarge", "large", "medium"}

// Best returns the largest usable image URL, skipping empty entries and the
// placeholder graphic. Returns "" when nothing usable remains.
func (is Images) Best() string {
	usable := func(url string) bool {
		return url != "" && !strings.Contains(url, placeholderImageHash)
	}
	for _, size := range imageSizePreference {
		for _, img := range is {
			if img.Size == size && usable(img.URL) {
				return img.URL
			}
		}
	}
	for _, img := range is {
		if usable(img.URL) {
			return img.URL
		}
	}
	return ""
}

type ArtistRef struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
}

type TopArtist struct {
	Name      string `json:"name"`
	MBID      string `json:"mbid"`
	Playcount string `json:"playcount"`
	Images    Images `json:"image"`
}

type TopAlbum struct {
	Name      string    `json:"name"`
	MBID      string    `json:"mbid"`
	Playcount string    `json:"playcount"`
	Artist    ArtistRef `json:"artist"`
	Images    Images    `json:"image"`
}

type TopTrack struct {
	Name      string    `json:"name"`
	MBID      string    `json:"mbid"`
	Playcount string    `json:"playcount"`
	Duration  string    `json:"duration"`
	Artist    ArtistRef `json:"artist"`
	Images    Images    `json:"image"`
}

type Tag struct {
	Name string `json:"name"`
}

type tagList struct {
	Tag []Tag `json:"tag"`
}

// Wiki carries the editorial blob; only the publish date is used.
type Wiki struct {
	Published string `json:"published"`
}

type AlbumTrack struct {
	Name string `json:"name"`
	// Sometimes a number, sometimes a string on the wire.
	Duration json.Number `json:"duration"`
}

type AlbumInfo struct {
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	Listeners string `json:"listeners"`
	Playcount string `json:"playcount"`
	Images    Images `json:"image"`
	Tracks    struct {
		Track []AlbumTrack `json:"track"`
	} `json:"tracks"`
	Tags tagList `json:"tags"`
	Wiki *Wiki   `json:"wiki"`
}

type TrackAlbum struct {
	Title  string `json:"title"`
	Images Images `json:"image"`
}

type TrackInfo struct {
	Name      string      `json:"name"`
	Duration  string      `json:"duration"` // milliseconds
	Listeners string      `json:"listeners"`
	Playcount string      `json:"playcount"`
	Artist    ArtistRef   `json:"artist"`
	Album     *TrackAlbum `json:"album"`
	TopTags   tagList     `json:"toptags"`
	Wiki      *Wiki       `json:"wiki"`
}

type ArtistInfo struct {
	Name string  `json:"name"`
	MBID string  `json:"mbid"`
	Tags tagList `json:"tags"`
}

// TagNames flattens a tag list for the hint builders.
func (t tagList) TagNames() []string {
	names := make([]string, 0, len(t.Tag))
	for _, tag := range t.Tag {
		names = append(names, tag.Name)
	}
	return names
}

type topArtistsEnvelope struct {
	TopArtists struct {
		Artist []TopArtist `json:"artist"`
	} `json:"topartists"`
}

type topAlbumsEnvelope struct {
	TopAlbums struct {
		Album []TopAlbum `json:"album"`
	} `json:"topalbums"`
}

type topTracksEnvelope struct {
	TopTracks struct {
		Track []TopTrack `json:"track"`
	} `json:"toptracks"`
}

type albumInfoEnvelope struct {
	Album AlbumInfo `json:"album"`
}

type trackInfoEnvelope struct {
	Track TrackInfo `json:"track"`
}

type artistInfoEnvelope struct {
	Artist ArtistInfo `json:"artist"`
}

type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}
