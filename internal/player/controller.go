package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ControllerState is derived from the pending attempt and the sink.
type ControllerState int

const (
	StateIdle ControllerState = iota
	StateBuffering
	StatePlaying
)

func (s ControllerState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateBuffering:
		return "BUFFERING"
	case StatePlaying:
		return "PLAYING"
	default:
		return "UNKNOWN"
	}
}

// ReplayMode decides what a play request does while a preview is busy.
type ReplayMode int

const (
	// ReplayRestart stops the current preview and starts it again.
	ReplayRestart ReplayMode = iota
	// ReplayToggle stops the current preview; the next request starts it.
	ReplayToggle
)

func (m ReplayMode) String() string {
	switch m {
	case ReplayRestart:
		return "restart"
	case ReplayToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// ParseReplayMode accepts "restart" or "toggle" in any case; "" means restart.
func ParseReplayMode(s string) (ReplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "restart":
		return ReplayRestart, nil
	case "toggle":
		return ReplayToggle, nil
	default:
		return ReplayRestart, fmt.Errorf("unknown replay mode %q", s)
	}
}

type ControllerConfig struct {
	URL       string
	Hint      string
	Opener    Opener
	Sink      *Sink
	Replay    ReplayMode
	OnFailure func(error)
}

// Controller plays one track's preview on request. Requests are handled on
// the controller goroutine; each attempt to build the pipeline runs on its own
// goroutine so a slow server never delays a stop.
type Controller struct {
	cfg ControllerConfig

	intents chan struct{}
	stops   chan struct{}
	quit    chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	gen      uint64
	pending  context.CancelFunc
	active   context.CancelFunc
	attempts int

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewController starts the controller goroutine. The controller owns cfg.Sink.
func NewController(cfg ControllerConfig) *Controller {
	c := &Controller{
		cfg:     cfg,
		intents: make(chan struct{}, 1),
		stops:   make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	cfg.Sink.OnSourceError(c.report)

	go c.run()
	return c
}

// Play requests playback. Requests made while one is still pending collapse into it.
func (c *Controller) Play() {
	c.signal(c.intents)
}

// Stop aborts any attempt and silences the sink regardless of replay mode.
func (c *Controller) Stop() {
	c.signal(c.stops)
}

func (c *Controller) signal(ch chan struct{}) {
	select {
	case <-c.quit:
		return
	default:
	}

	select {
	case ch <- struct{}{}:
	default:
	}
}

func (c *Controller) run() {
	defer close(c.done)

	for {
		select {
		case <-c.quit:
			return
		case <-c.intents:
			c.handlePlay()
		case <-c.stops:
			c.abort()
		}
	}
}

func (c *Controller) handlePlay() {
	c.mu.Lock()
	busy := c.pending != nil
	c.mu.Unlock()

	if busy || !c.cfg.Sink.IsEmpty() {
		log.Debug().Str("mode", c.cfg.Replay.String()).Msg("Preview busy, stopping")
		c.abort()
		if c.cfg.Replay == ReplayToggle {
			return
		}
	}

	c.start()
}

// abort supersedes every attempt, cancels the feeding fetch and empties the sink.
func (c *Controller) abort() {
	c.mu.Lock()
	c.gen++
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
	if c.active != nil {
		c.active()
		c.active = nil
	}
	c.mu.Unlock()

	c.cfg.Sink.Stop()
}

func (c *Controller) start() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.active != nil {
		c.active()
		c.active = nil
	}
	c.pending = cancel
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()

	log.Debug().Int("attempt", attempt).Str("url", c.cfg.URL).Msg("Starting preview")

	c.wg.Add(1)
	go c.attempt(ctx, cancel, gen)
}

func (c *Controller) attempt(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	defer c.wg.Done()

	src, err := c.cfg.Opener.Open(ctx, c.cfg.URL, c.cfg.Hint)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		cancel()
		if src != nil {
			src.Close()
		}
		log.Debug().Msg("Superseded preview attempt discarded")
		return
	}
	c.pending = nil

	if err != nil {
		c.mu.Unlock()
		cancel()
		c.report(err)
		return
	}

	if err := c.cfg.Sink.Append(src); err != nil {
		c.mu.Unlock()
		cancel()
		c.report(err)
		return
	}
	c.active = cancel
	c.mu.Unlock()

	log.Debug().Msg("Preview playing")
}

func (c *Controller) report(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	log.Warn().Err(err).Str("kind", Classify(err).String()).Str("url", c.cfg.URL).Msg("Preview failed")
	if c.cfg.OnFailure != nil {
		c.cfg.OnFailure(err)
	}
}

// State reports BUFFERING while an attempt is being built, PLAYING while the
// sink holds audio, and IDLE otherwise.
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	pending := c.pending != nil
	c.mu.Unlock()

	if pending {
		return StateBuffering
	}
	if !c.cfg.Sink.IsEmpty() {
		return StatePlaying
	}
	return StateIdle
}

// Attempts is the number of pipelines started so far.
func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Close stops playback, waits for every attempt, and closes the sink.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		<-c.done
		c.abort()
		c.wg.Wait()
		c.cfg.Sink.Close()
		log.Debug().Str("url", c.cfg.URL).Msg("Preview controller closed")
	})
}
