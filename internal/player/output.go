package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	SpeakerBufferSize = time.Millisecond * 250
)

// Output is the audio device the sink plays into.
type Output interface {
	Open() error
	Play(s beep.Streamer)
	SampleRate() beep.SampleRate
}

// DeviceError is a failure to open or use the audio device.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Speaker is the process-wide beep speaker. It is initialized on the first
// Open; a failed initialization is remembered and returned from every later Open.
type Speaker struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	buffer      time.Duration
	initialized bool
	err         error
}

func NewSpeaker(rate beep.SampleRate, buffer time.Duration) *Speaker {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if buffer <= 0 {
		buffer = SpeakerBufferSize
	}
	return &Speaker{rate: rate, buffer: buffer}
}

func (s *Speaker) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.err != nil {
		return s.err
	}

	if err := speaker.Init(s.rate, s.rate.N(s.buffer)); err != nil {
		s.err = &DeviceError{Err: fmt.Errorf("failed to initialize speaker: %w", err)}
		return s.err
	}

	s.initialized = true
	log.Debug().Msgf("Speaker initialized with sample rate: %d Hz, buffer: %v", s.rate, s.buffer)
	return nil
}

func (s *Speaker) Play(st beep.Streamer) {
	speaker.Play(st)
}

func (s *Speaker) SampleRate() beep.SampleRate {
	return s.rate
}

// Close releases the device. Only called at process exit.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		speaker.Clear()
		speaker.Close()
		s.initialized = false
	}
}
