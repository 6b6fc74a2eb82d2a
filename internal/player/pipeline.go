package player

import (
	"context"

	"github.com/glebovdev/exospot/internal/decode"
	"github.com/glebovdev/exospot/internal/stream"
)

// Opener builds a playable source for a preview URL.
type Opener interface {
	Open(ctx context.Context, url, hint string) (Source, error)
}

// Pipeline chains the fetcher, the blocking reader and the decoder.
// Cancelling ctx aborts the fetch at any stage, including after Open returns.
type Pipeline struct {
	fetcher *stream.Fetcher
}

func NewPipeline(fetcher *stream.Fetcher) *Pipeline {
	return &Pipeline{fetcher: fetcher}
}

func (p *Pipeline) Open(ctx context.Context, url, hint string) (Source, error) {
	chunks, err := p.fetcher.Open(ctx, url)
	if err != nil {
		return nil, err
	}

	src, err := decode.Probe(chunks.Reader(), hint)
	if err != nil {
		return nil, err
	}
	return src, nil
}
