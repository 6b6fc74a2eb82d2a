package stream

import (
	"context"
	"io"
	"sync"
)

// Reader turns a chunk channel into a blocking io.ReadCloser. Read must be
// called from one goroutine; Close may be called from any.
type Reader struct {
	ctx     context.Context
	chunks  <-chan Chunk
	release func()

	pending []byte
	err     error

	closeOnce sync.Once
}

// NewReader reads chunks until the channel closes or ctx is done. release,
// if set, runs once on Close.
func NewReader(ctx context.Context, chunks <-chan Chunk, release func()) *Reader {
	return &Reader{
		ctx:     ctx,
		chunks:  chunks,
		release: release,
	}
}

// Read copies at most len(p) bytes of the next available data, holding any
// remainder for the next call. It returns io.EOF only once the channel is
// closed and drained; after that, every call returns the same error.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}

		select {
		case chunk, ok := <-r.chunks:
			switch {
			case !ok:
				r.err = io.EOF
			case chunk.Err != nil:
				r.err = chunk.Err
			default:
				r.pending = chunk.Data
			}
		case <-r.ctx.Done():
			r.err = r.ctx.Err()
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// Seek always fails.
func (r *Reader) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

// Len reports the total length, which is never known up front.
func (r *Reader) Len() int64 {
	return -1
}

func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		if r.release != nil {
			r.release()
		}
	})
	return nil
}
