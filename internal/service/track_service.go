// Package service provides the business logic layer over the track catalog.
package service

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/glebovdev/exospot/internal/cache"
	"github.com/glebovdev/exospot/internal/track"
	"github.com/rs/zerolog/log"
)

const coverLoadTimeout = 15 * time.Second

// Catalog is the read side of the track store.
type Catalog interface {
	Tracks(ctx context.Context) ([]track.Track, error)
	Artists(ctx context.Context, trackID string) ([]string, error)
	Album(ctx context.Context, albumID string) (track.Album, error)
	CoverURLs(ctx context.Context, albumID string) ([]string, error)
}

// CoverFetcher downloads cover images.
type CoverFetcher interface {
	FetchImage(ctx context.Context, url string) (image.Image, error)
}

// TrackService holds the shuffled track list and resolves per-track details.
type TrackService struct {
	catalog    Catalog
	covers     CoverFetcher
	coverCache *cache.Cache
	tracks     []track.Track
	mu         sync.RWMutex
}

// NewTrackService creates a TrackService. covers and coverCache may be nil,
// in which case details come without a cover image.
func NewTrackService(catalog Catalog, covers CoverFetcher, coverCache *cache.Cache) *TrackService {
	if coverCache != nil {
		go func() {
			if _, err := coverCache.CleanExpired(); err != nil {
				log.Debug().Err(err).Msg("Failed to clean expired covers")
			}
		}()
	}

	return &TrackService{
		catalog:    catalog,
		covers:     covers,
		coverCache: coverCache,
	}
}

// LoadTracks reads the catalog once; the catalog decides the order.
func (s *TrackService) LoadTracks(ctx context.Context) ([]track.Track, error) {
	tracks, err := s.catalog.Tracks(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tracks = tracks
	s.mu.Unlock()

	log.Debug().Int("count", len(tracks)).Msg("Tracks loaded")
	return s.Tracks(), nil
}

// Tracks returns a copy of the loaded track list.
func (s *TrackService) Tracks() []track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]track.Track, len(s.tracks))
	copy(result, s.tracks)
	return result
}

func (s *TrackService) TrackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Details resolves artists, album and cover for t. Lookup failures are
// logged and leave the corresponding field empty.
func (s *TrackService) Details(ctx context.Context, t track.Track) track.Details {
	details := track.Details{Track: t}

	artists, err := s.catalog.Artists(ctx, t.ID)
	if err != nil {
		log.Warn().Err(err).Str("track", t.ID).Msg("Failed to load artists")
	}
	details.Artists = artists

	if t.AlbumID == "" {
		return details
	}

	album, err := s.catalog.Album(ctx, t.AlbumID)
	if err != nil {
		log.Warn().Err(err).Str("album", t.AlbumID).Msg("Failed to load album")
	}
	details.Album = album

	urls, err := s.catalog.CoverURLs(ctx, t.AlbumID)
	if err != nil {
		log.Warn().Err(err).Str("album", t.AlbumID).Msg("Failed to load cover URLs")
	}
	details.CoverURLs = urls

	if url := details.LargestCoverURL(); url != "" {
		img, err := s.LoadCover(ctx, url)
		if err != nil {
			log.Debug().Err(err).Str("url", url).Msg("Cover unavailable")
		}
		details.Cover = img
	}

	return details
}

// LoadCover returns the cover at url from the disk cache or the network.
func (s *TrackService) LoadCover(ctx context.Context, url string) (image.Image, error) {
	if s.coverCache != nil {
		if img := s.coverCache.Cover(url); img != nil {
			log.Debug().Str("url", url).Msg("Cover loaded from cache")
			return img, nil
		}
	}

	if s.covers == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, coverLoadTimeout)
	defer cancel()

	img, err := s.covers.FetchImage(ctx, url)
	if err != nil {
		return nil, err
	}

	if s.coverCache != nil {
		go func() {
			if err := s.coverCache.StoreCover(url, img); err != nil {
				log.Debug().Err(err).Str("url", url).Msg("Failed to cache cover")
			} else {
				log.Debug().Str("url", url).Msg("Cover cached")
			}
		}()
	}

	return img, nil
}
