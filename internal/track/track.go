// Package track defines the data structures for catalog tracks.
package track

import (
	"fmt"
	"image"
	"strings"
	"time"
)

// Track is one catalog entry as the playback core sees it.
type Track struct {
	ID         string
	Title      string
	Artist     string // Primary artist
	AlbumID    string
	Duration   time.Duration
	PreviewURL string // Empty when the catalog has no preview for the track
}

// HasPreview reports whether the track can be streamed.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// Album holds the album name and kind ("album", "single", "compilation").
type Album struct {
	Name string
	Kind string
}

// Details is the full metadata shown for the current track.
type Details struct {
	Track
	Artists   []string
	Album     Album
	CoverURLs []string // Largest first
	Cover     image.Image
}

// LargestCoverURL returns the highest resolution cover URL, or "".
func (d Details) LargestCoverURL() string {
	if len(d.CoverURLs) == 0 {
		return ""
	}
	return d.CoverURLs[0]
}

// ArtistLine joins all credited artists, falling back to the primary artist.
func (d Details) ArtistLine() string {
	if len(d.Artists) == 0 {
		return d.Artist
	}
	return strings.Join(d.Artists, ", ")
}

// AlbumLine formats the album as "Name (kind)".
func (d Details) AlbumLine() string {
	if d.Album.Name == "" {
		return ""
	}
	if d.Album.Kind == "" {
		return d.Album.Name
	}
	return fmt.Sprintf("%s (%s)", d.Album.Name, d.Album.Kind)
}

// FormatDuration renders a duration as zero-padded mm:ss. Minutes are not
// wrapped into hours.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
