// Package stream fetches preview audio over HTTP as a sequence of byte chunks
// and adapts that sequence into a blocking reader for the decoder.
package stream

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// ChunkSize is the largest read taken from the response body at once.
	ChunkSize = 4096
	// ChunkQueue bounds how many chunks wait between the network and the decoder.
	ChunkQueue = 16

	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 15 * time.Second
)

// Chunk is one piece of the response body, or the error that ended it.
type Chunk struct {
	Data []byte
	Err  error
}

// Fetcher opens preview URLs. There is no overall request timeout; a
// stream runs until the body ends or the caller closes it.
type Fetcher struct {
	client    *resty.Client
	userAgent string
}

func NewFetcher(userAgent string) *Fetcher {
	httpClient := &http.Client{
		Timeout: 0,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: dialTimeout,
			}).DialContext,
			TLSHandshakeTimeout:   tlsHandshakeTimeout,
			ResponseHeaderTimeout: responseHeaderTimeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    true,
		},
	}

	return &Fetcher{
		client:    resty.NewWithClient(httpClient),
		userAgent: userAgent,
	}
}

// Open issues the GET and starts pumping the body into a ChunkStream.
// A transport failure or a non-200 status is returned as *FetchError.
func (f *Fetcher) Open(ctx context.Context, url string) (*ChunkStream, error) {
	ctx, cancel := context.WithCancel(ctx)

	log.Debug().Msgf("Connecting to preview: %s", url)

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("User-Agent", f.userAgent).
		Get(url)
	if err != nil {
		cancel()
		return nil, &FetchError{URL: url, Err: err}
	}

	body := resp.RawBody()
	log.Debug().Msgf("Preview response status: %d, Content-Type: %s", resp.StatusCode(), resp.Header().Get("Content-Type"))

	if resp.StatusCode() != http.StatusOK {
		if body != nil {
			body.Close()
		}
		cancel()
		return nil, &FetchError{URL: url, Err: &StatusError{StatusCode: resp.StatusCode(), Status: resp.Status()}}
	}

	s := &ChunkStream{
		url:    url,
		body:   body,
		chunks: make(chan Chunk, ChunkQueue),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.pump()
	return s, nil
}

// ChunkStream is an in-flight fetch. Chunks arrive in body order; the
// channel closes after the last chunk or after a terminal error chunk.
type ChunkStream struct {
	url    string
	body   io.ReadCloser
	chunks chan Chunk
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *ChunkStream) pump() {
	defer func() {
		s.body.Close()
		close(s.chunks)
		close(s.done)
		log.Debug().Str("url", s.url).Msg("Preview fetch stopped")
	}()

	for {
		buf := make([]byte, ChunkSize)
		n, err := s.body.Read(buf)
		if n > 0 {
			select {
			case s.chunks <- Chunk{Data: buf[:n]}:
			case <-s.ctx.Done():
				return
			}
		}

		if err == io.EOF {
			return
		}
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("url", s.url).Msg("Preview read failed")
			select {
			case s.chunks <- Chunk{Err: &FetchError{URL: s.url, Err: err}}:
			case <-s.ctx.Done():
			}
			return
		}
	}
}

// Reader wraps the stream in a blocking io.Reader. Closing the reader closes the stream.
func (s *ChunkStream) Reader() *Reader {
	return NewReader(s.ctx, s.chunks, s.Close)
}

// Close cancels the fetch and waits for the body to be released. Safe to call more than once.
func (s *ChunkStream) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}
