// Package catalog reads the local track catalog populated by the sync tool.
// The store is opened read-only; nothing here writes to the database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/glebovdev/exospot/internal/track"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	queryTracks = `SELECT id, title, artist, album, duration, preview_url
		FROM spt_songs ORDER BY RANDOM()`

	queryArtists = `SELECT spt_artists.name
		FROM spt_songs_spt_artists
		INNER JOIN spt_artists ON spt_songs_spt_artists.spt_artist_id = spt_artists.id
		WHERE spt_songs_spt_artists.spt_song_id = ?
		ORDER BY spt_artists.name`

	queryAlbum = `SELECT name, kind FROM spt_albums WHERE id = ?`

	queryCovers = `SELECT url FROM spt_albums_covers WHERE album_id = ? ORDER BY height DESC`
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store is a read-only handle on the sqlite catalog.
type Store struct {
	db *sql.DB
}

// Open opens the catalog at path in read-only mode and checks it is reachable.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("Catalog opened")
	return &Store{db: db}, nil
}

// readOnlyDSN builds a sqlite file: URI for path with mode=ro.
func readOnlyDSN(path string) string {
	return (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Tracks returns every track in random order.
func (s *Store) Tracks(ctx context.Context) ([]track.Track, error) {
	rows, err := s.db.QueryContext(ctx, queryTracks)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		var (
			t          track.Track
			durationMs int64
			preview    sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.AlbumID, &durationMs, &preview); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		t.Duration = time.Duration(durationMs) * time.Millisecond
		if preview.Valid {
			t.PreviewURL = preview.String
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}

	return tracks, nil
}

// Artists returns the names of every artist credited on the track.
func (s *Store) Artists(ctx context.Context, trackID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryArtists, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists for %s: %w", trackID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) Album(ctx context.Context, albumID string) (track.Album, error) {
	var album track.Album
	err := s.db.QueryRowContext(ctx, queryAlbum, albumID).Scan(&album.Name, &album.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return album, fmt.Errorf("album %s: %w", albumID, ErrNotFound)
	}
	if err != nil {
		return album, fmt.Errorf("failed to query album %s: %w", albumID, err)
	}
	return album, nil
}

// CoverURLs returns the album cover URLs ordered from the largest image down.
func (s *Store) CoverURLs(ctx context.Context, albumID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryCovers, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to query covers for %s: %w", albumID, err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan cover: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
