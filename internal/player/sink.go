package player

import (
	"errors"
	"sync"

	"github.com/glebovdev/exospot/internal/decode"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/rs/zerolog/log"
)

const resampleQuality = 4

// ErrSinkClosed is returned by Append after Close.
var ErrSinkClosed = errors.New("sink closed")

// Source is a decoded frame sequence the sink can play.
type Source interface {
	Format() beep.Format
	Frames() <-chan decode.Frame
	Err() error
	Close() error
}

// decodedCounter is implemented by sources that count what they produced.
type decodedCounter interface {
	Decoded() int64
}

type entry struct {
	src    Source
	volume *effects.Volume
}

// Sink is one track's playback queue on the shared output. It is registered
// with the output mixer on creation and streams its queued sources in order.
// The mixer callback never blocks: when no decoded frame is ready it plays
// silence.
type Sink struct {
	out Output

	mu            sync.Mutex
	queue         []*entry
	volumePercent int
	closed        bool
	onError       func(error)

	wg sync.WaitGroup
}

// NewSink opens out and registers a new sink on it.
func NewSink(out Output, volumePercent int) (*Sink, error) {
	if err := out.Open(); err != nil {
		var devErr *DeviceError
		if !errors.As(err, &devErr) {
			err = &DeviceError{Err: err}
		}
		return nil, err
	}

	s := &Sink{out: out, volumePercent: volumePercent}
	out.Play(s)
	return s, nil
}

// OnSourceError sets the callback for sources that end with an error.
func (s *Sink) OnSourceError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// Append queues src behind anything already playing. The sink owns src
// from here on, including on error.
func (s *Sink) Append(src Source) error {
	format := src.Format()

	var st beep.Streamer = &framePuller{frames: src.Frames()}
	if rate := s.out.SampleRate(); format.SampleRate != rate {
		log.Debug().Msgf("Resampling %d Hz -> %d Hz", format.SampleRate, rate)
		st = beep.Resample(resampleQuality, format.SampleRate, rate, st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.release(src, false)
		return ErrSinkClosed
	}

	e := &entry{
		src: src,
		volume: &effects.Volume{
			Streamer: st,
			Base:     2,
			Volume:   percentToExponent(float64(s.volumePercent)),
			Silent:   s.volumePercent <= 0,
		},
	}
	s.queue = append(s.queue, e)
	return nil
}

// Stop discards every queued and playing source.
func (s *Sink) Stop() {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	for _, e := range queue {
		s.release(e.src, false)
	}
	s.mu.Unlock()

	if len(queue) > 0 {
		log.Debug().Int("sources", len(queue)).Msg("Sink stopped")
	}
}

// IsEmpty reports whether nothing is queued or playing.
func (s *Sink) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0
}

// Close stops the sink and removes it from the output mixer. It waits for
// released sources to finish closing.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	queue := s.queue
	s.queue = nil
	for _, e := range queue {
		s.release(e.src, false)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Stream is called by the output mixer.
func (s *Sink) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false
	}

	filled := 0
	for filled < len(samples) && len(s.queue) > 0 {
		head := s.queue[0]
		want := len(samples) - filled
		n, ok := head.volume.Stream(samples[filled:])
		filled += n
		if !ok || n < want {
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.release(head.src, true)
		}
	}

	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (s *Sink) Err() error {
	return nil
}

// release closes src off the calling goroutine. Must be called with s.mu held.
func (s *Sink) release(src Source, finished bool) {
	onError := s.onError
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if finished {
			event := log.Debug()
			if dc, ok := src.(decodedCounter); ok {
				event = event.Int64("samples", dc.Decoded())
			}
			event.Msg("Preview source finished")

			if err := src.Err(); err != nil {
				log.Warn().Err(err).Msg("Source ended with error")
				if onError != nil {
					onError(err)
				}
			}
		}
		if err := src.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close source")
		}
	}()
}

// framePuller adapts a frame channel to beep.Streamer without blocking.
type framePuller struct {
	frames  <-chan decode.Frame
	cur     decode.Frame
	pos     int
	drained bool
}

func (p *framePuller) Stream(samples [][2]float64) (int, bool) {
	if p.drained {
		return 0, false
	}

	n := 0
	for n < len(samples) {
		if p.pos >= len(p.cur) {
			select {
			case f, ok := <-p.frames:
				if !ok {
					p.drained = true
					return n, n > 0
				}
				p.cur, p.pos = f, 0
				continue
			default:
				// Underrun: pad with silence and keep the source queued.
				for i := n; i < len(samples); i++ {
					samples[i] = [2]float64{}
				}
				return len(samples), true
			}
		}

		c := copy(samples[n:], p.cur[p.pos:])
		n += c
		p.pos += c
	}
	return n, true
}

func (p *framePuller) Err() error {
	return nil
}
