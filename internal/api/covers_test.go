package api

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func setupTestServer(handler http.HandlerFunc) (*httptest.Server, *CoverClient) {
	server := httptest.NewServer(handler)
	client := &CoverClient{
		client: resty.New().SetTimeout(time.Second),
	}
	return server, client
}

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func TestFetchImage(t *testing.T) {
	tests := []struct {
		name   string
		encode func(*bytes.Buffer, image.Image) error
		ctype  string
	}{
		{
			name:   "png",
			encode: func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) },
			ctype:  "image/png",
		},
		{
			name:   "jpeg",
			encode: func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) },
			ctype:  "image/jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			if err := tt.encode(&body, createTestImage(16, 12)); err != nil {
				t.Fatalf("encode error = %v", err)
			}

			server, client := setupTestServer(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/image/abc" {
					t.Errorf("Expected path /image/abc, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", tt.ctype)
				_, _ = w.Write(body.Bytes())
			})
			defer server.Close()

			img, err := client.FetchImage(context.Background(), server.URL+"/image/abc")
			if err != nil {
				t.Fatalf("FetchImage() error = %v", err)
			}

			bounds := img.Bounds()
			if bounds.Dx() != 16 || bounds.Dy() != 12 {
				t.Errorf("FetchImage() bounds = %v, want 16x12", bounds)
			}
		})
	}
}

func TestFetchImageHTTPError(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	_, err := client.FetchImage(context.Background(), server.URL+"/missing")
	if err == nil {
		t.Error("FetchImage() should return error for 404")
	}
}

func TestFetchImageInvalidBody(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("not an image"))
	})
	defer server.Close()

	_, err := client.FetchImage(context.Background(), server.URL)
	if err == nil {
		t.Error("FetchImage() should return error for undecodable body")
	}
}

func TestFetchImageCancelled(t *testing.T) {
	server, client := setupTestServer(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{})
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchImage(ctx, server.URL)
	if err == nil {
		t.Error("FetchImage() should fail with a cancelled context")
	}
}

func TestNewCoverClient(t *testing.T) {
	client := NewCoverClient("exospot/test")
	if client.client == nil {
		t.Fatal("NewCoverClient() returned client without resty client")
	}
	if got := client.client.Header.Get("User-Agent"); got != "exospot/test" {
		t.Errorf("User-Agent = %q, want exospot/test", got)
	}
}
