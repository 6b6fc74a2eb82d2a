// Package cache keeps decoded album covers on disk between runs.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultExpiry is how long a cached cover stays valid (7 days).
	DefaultExpiry = 7 * 24 * time.Hour
	// CoverSubdir holds the cover files under the cache directory.
	CoverSubdir = "covers"
	// AppName names the cache directory.
	AppName = "exospot"
	// DebugLogName is the file the -debug flag logs to.
	DebugLogName = "debug.log"
)

// Cache stores covers as PNG files keyed by a hash of their URL.
type Cache struct {
	baseDir string
	expiry  time.Duration
}

// NewCache creates a cache in the user cache directory.
func NewCache() (*Cache, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return nil, err
	}
	return NewCacheAt(cacheDir, DefaultExpiry), nil
}

// NewCacheAt creates a cache rooted at dir. Non-positive expiry falls back to DefaultExpiry.
func NewCacheAt(dir string, expiry time.Duration) *Cache {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Cache{baseDir: dir, expiry: expiry}
}

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(userCacheDir, AppName), nil
}

// DebugLogPath returns where debug logging is written, creating the directory.
func DebugLogPath() (string, error) {
	dir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return filepath.Join(dir, DebugLogName), nil
}

func hashURL(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) coverDir() string {
	return filepath.Join(c.baseDir, CoverSubdir)
}

func (c *Cache) coverPath(url string) string {
	return filepath.Join(c.coverDir(), hashURL(url)+".png")
}

// Cover returns the cached cover for url, or nil when missing or expired.
func (c *Cache) Cover(url string) image.Image {
	path := c.coverPath(url)

	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	if time.Since(info.ModTime()) > c.expiry {
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Failed to remove expired cover")
		}
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		log.Debug().Err(err).Str("file", path).Msg("Failed to decode cached cover")
		return nil
	}
	return img
}

// StoreCover writes img for url. The file appears atomically so a concurrent
// Cover never reads a partial PNG.
func (c *Cache) StoreCover(url string, img image.Image) error {
	dir := c.coverDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cover directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "cover-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cover file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode cover: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cover: %w", err)
	}

	if err := os.Rename(tmpPath, c.coverPath(url)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to store cover: %w", err)
	}
	return nil
}

// CleanExpired removes covers older than the expiry and returns how many were removed.
func (c *Cache) CleanExpired() (int, error) {
	dir := c.coverDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cover directory: %w", err)
	}

	now := time.Now()
	var removed, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("Failed to get file info")
			continue
		}

		if now.Sub(info.ModTime()) <= c.expiry {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Failed to remove expired cover")
			failed++
			continue
		}
		removed++
	}

	if removed > 0 || failed > 0 {
		log.Debug().Int("removed", removed).Int("failed", failed).Msg("Cover cleanup completed")
	}
	return removed, nil
}
