// Package decode identifies a preview stream and decodes it into PCM frames
// on a worker goroutine.
package decode

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/rs/zerolog/log"
)

const (
	// FrameSize is the number of stereo samples per decoded frame.
	FrameSize = 1024
	// FrameQueue bounds how many frames the worker decodes ahead of playback.
	FrameQueue = 64

	sniffLen = 3
)

// Frame is a block of interleaved-by-pair stereo samples in [-1, 1].
type Frame [][2]float64

// forwardOnly hides any Seek method so the MP3 decoder never tries to
// scan the stream for its length.
type forwardOnly struct {
	io.Reader
	io.Closer
}

// Probe inspects the head of r and builds a decoder for it. hint is the
// expected codec; "" and "mp3" are accepted. Probe takes ownership of r and
// closes it on failure.
func Probe(r io.ReadCloser, hint string) (*FrameSource, error) {
	codec := strings.ToLower(strings.TrimSpace(hint))
	if codec != "" && codec != "mp3" {
		r.Close()
		return nil, &ProbeError{Hint: hint, Err: ErrUnsupportedCodec}
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(sniffLen)
	if err != nil && len(head) == 0 {
		r.Close()
		if errors.Is(err, io.EOF) {
			err = ErrUnrecognizedFormat
		}
		return nil, &ProbeError{Hint: hint, Err: err}
	}

	if !looksLikeMP3(head) {
		r.Close()
		return nil, &ProbeError{Hint: hint, Err: ErrUnrecognizedFormat}
	}

	streamer, format, err := mp3.Decode(forwardOnly{Reader: br, Closer: r})
	if err != nil {
		r.Close()
		return nil, &ProbeError{Hint: hint, Err: err}
	}

	log.Debug().Msgf("Decoder ready: %d Hz, %d channels", format.SampleRate, format.NumChannels)

	ctx, cancel := context.WithCancel(context.Background())
	s := &FrameSource{
		streamer: streamer,
		input:    r,
		format:   format,
		frames:   make(chan Frame, FrameQueue),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.decodeLoop()
	return s, nil
}

// looksLikeMP3 accepts an ID3v2 tag or an MPEG audio frame sync.
func looksLikeMP3(head []byte) bool {
	if len(head) >= 3 && string(head[:3]) == "ID3" {
		return true
	}
	return len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0
}

// FrameSource is a finite, non-restartable sequence of decoded frames.
type FrameSource struct {
	streamer beep.StreamSeekCloser
	input    io.Closer
	format   beep.Format

	frames chan Frame
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	err     error
	decoded atomic.Int64

	closeOnce sync.Once
}

func (s *FrameSource) decodeLoop() {
	defer func() {
		close(s.frames)
		close(s.done)
		log.Debug().Int64("samples", s.Decoded()).Msg("Decoder stopped")
	}()

	for {
		buf := make(Frame, FrameSize)
		n, ok := s.streamer.Stream(buf)
		if n > 0 {
			s.decoded.Add(int64(n))
			select {
			case s.frames <- buf[:n]:
			case <-s.ctx.Done():
				return
			}
		}

		if !ok {
			if err := s.streamer.Err(); err != nil && s.ctx.Err() == nil {
				log.Error().Err(err).Msg("Stream decoding error")
				s.mu.Lock()
				s.err = &DecodeError{Err: err}
				s.mu.Unlock()
			}
			return
		}
	}
}

// Format is the PCM format frames are produced in.
func (s *FrameSource) Format() beep.Format {
	return s.format
}

// Frames is closed after the last frame or on error.
func (s *FrameSource) Frames() <-chan Frame {
	return s.frames
}

// Err returns the *DecodeError that ended the sequence early, if any.
func (s *FrameSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Decoded is the number of samples produced so far.
func (s *FrameSource) Decoded() int64 {
	return s.decoded.Load()
}

// Close stops the worker and releases the decoder and its input.
func (s *FrameSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		s.input.Close()
		<-s.done
		err = s.streamer.Close()
	})
	return err
}
