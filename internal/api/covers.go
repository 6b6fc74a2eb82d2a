// Package api provides the HTTP client for album cover images.
package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/go-resty/resty/v2"
)

const requestTimeout = 15 * time.Second

// CoverClient downloads and decodes album cover images.
type CoverClient struct {
	client *resty.Client
}

// NewCoverClient creates a cover client that identifies itself with userAgent.
func NewCoverClient(userAgent string) *CoverClient {
	return &CoverClient{
		client: resty.New().
			SetTimeout(requestTimeout).
			SetHeader("User-Agent", userAgent),
	}
}

// FetchImage downloads the image at url and decodes it as JPEG or PNG.
func (c *CoverClient) FetchImage(ctx context.Context, url string) (image.Image, error) {
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover %s: %w", url, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("cover server returned status %d: %s", resp.StatusCode(), resp.Status())
	}

	img, format, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover %s: %w", url, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("cover %s (%s) is empty", url, format)
	}

	return img, nil
}
