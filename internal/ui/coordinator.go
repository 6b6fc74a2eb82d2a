package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/exospot/internal/config"
	"github.com/glebovdev/exospot/internal/external"
	"github.com/glebovdev/exospot/internal/terminal"
	"github.com/glebovdev/exospot/internal/track"
	"github.com/rs/zerolog/log"
)

// Previewer plays one track's preview. Close must not return before the
// preview is silent.
type Previewer interface {
	Play()
	Stop()
	Close()
}

// TrackSource supplies the playlist and per-track metadata.
type TrackSource interface {
	Tracks() []track.Track
	Details(ctx context.Context, t track.Track) track.Details
}

type Options struct {
	Terminal *terminal.Terminal
	Tracks   TrackSource
	// NewPreviewer is called once per track that has a preview. It may
	// return nil when no audio output is available.
	NewPreviewer func(t track.Track, onFailure func(error)) Previewer
	Open         func(url string) error
	SearchURL    string
	Colors       Colors
	QueueSize    int
}

// Coordinator runs the terminal session: an input goroutine, a render
// goroutine and the track loop on the caller's goroutine.
type Coordinator struct {
	opts     Options
	screen   tcell.Screen
	renderer *Renderer
	tracks   []track.Track

	list   *SharedList[ListItem]
	state  *Cell[State]
	resize *Cell[Size]
	events chan *tcell.EventKey

	acceptMu  sync.Mutex
	accepting bool

	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.QueueSize <= 0 {
		opts.QueueSize = config.DefaultInputQueue
	}
	if opts.SearchURL == "" {
		opts.SearchURL = config.DefaultSearchURL
	}
	if opts.Open == nil {
		opts.Open = external.Open
	}

	screen := opts.Terminal.Screen()
	width, height := screen.Size()

	tracks := opts.Tracks.Tracks()
	items := make([]ListItem, len(tracks))
	for i, t := range tracks {
		items[i] = ListItem{Label: t.Title, Tag: opts.Colors.Foreground}
	}

	return &Coordinator{
		opts:     opts,
		screen:   screen,
		renderer: NewRenderer(screen, opts.Colors),
		tracks:   tracks,
		list:     NewSharedList(NewSelectableList(items)),
		state:    NewCell[State](Welcome{}),
		resize:   NewCell(Size{Width: width, Height: height}),
		events:   make(chan *tcell.EventKey, opts.QueueSize),
		quit:     make(chan struct{}),
	}
}

// Run walks the playlist until it is exhausted or the user quits, in which
// case it returns nil. The terminal is left for the caller to restore.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.opts.Terminal.RecoverPanic()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-c.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	c.wg.Add(2)
	go c.inputLoop()
	go c.renderLoop()

	err := c.drive(ctx)

	c.requestQuit()
	// Wakes PollEvent so the input goroutine sees the quit.
	if perr := c.screen.PostEvent(tcell.NewEventInterrupt(nil)); perr != nil {
		log.Debug().Err(perr).Msg("Failed to post wake-up event")
	}
	c.wg.Wait()

	return err
}

// Shutdown ends Run from another goroutine, e.g. a signal handler.
func (c *Coordinator) Shutdown() {
	c.requestQuit()
}

func (c *Coordinator) requestQuit() {
	c.quitOnce.Do(func() {
		close(c.quit)
	})
}

func (c *Coordinator) quitting() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}

func (c *Coordinator) drive(ctx context.Context) error {
	last := len(c.tracks) - 1

	for i, t := range c.tracks {
		if c.quitting() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		details := c.opts.Tracks.Details(ctx, t)
		if !c.playTrack(ctx, details) {
			if c.quitting() {
				return nil
			}
			return ctx.Err()
		}

		played := c.opts.Colors.Played
		c.list.Update(func(l *SelectableList[ListItem]) {
			l.Update(i, func(item ListItem) ListItem {
				item.Tag = played
				return item
			})
			if i == last {
				l.Unselect()
				return
			}
			l.Next()
		})
		log.Debug().Int("index", i).Str("track", t.ID).Msg("Advanced past track")
	}

	log.Info().Int("tracks", len(c.tracks)).Msg("Reached the end of the track list")
	return nil
}

// playTrack shows one track and handles its keys. It reports whether the
// user asked for the next track. Teardown always completes before it returns.
func (c *Coordinator) playTrack(ctx context.Context, details track.Details) bool {
	view := TrackView{Details: details}
	c.state.Store(view)

	notices := make(chan string, 1)
	notify := func(msg string) {
		select {
		case notices <- msg:
		default:
		}
	}

	var preview Previewer
	if details.HasPreview() && c.opts.NewPreviewer != nil {
		preview = c.opts.NewPreviewer(details.Track, func(err error) {
			notify(failureNotice(err))
		})
	}

	c.setAccepting(true)
	defer c.teardown(preview)

	for {
		select {
		case <-ctx.Done():
			return false
		case <-c.quit:
			return false
		case msg := <-notices:
			view.Notice = msg
			c.state.Store(view)
		case event := <-c.events:
			switch keyAction(event) {
			case ActionAdvance:
				return true
			case ActionPreview:
				if preview == nil {
					view.Notice = "No preview available for this track"
					c.state.Store(view)
					continue
				}
				if view.Notice != "" {
					view.Notice = ""
					c.state.Store(view)
				}
				preview.Play()
			case ActionStop:
				if preview != nil {
					preview.Stop()
				}
			case ActionOpenExternal:
				c.openExternal(details, notify)
			}
		}
	}
}

func (c *Coordinator) teardown(preview Previewer) {
	c.setAccepting(false)
	if preview != nil {
		preview.Close()
	}
	c.drain()
}

func (c *Coordinator) drain() {
	for {
		select {
		case <-c.events:
		default:
			return
		}
	}
}

func (c *Coordinator) setAccepting(accepting bool) {
	c.acceptMu.Lock()
	c.accepting = accepting
	c.acceptMu.Unlock()
}

// forward queues event for the track loop. Events arriving between tracks,
// or while the queue is full, are dropped.
func (c *Coordinator) forward(event *tcell.EventKey) bool {
	c.acceptMu.Lock()
	defer c.acceptMu.Unlock()

	if !c.accepting {
		log.Debug().Str("key", event.Name()).Msg("Dropped key between tracks")
		return false
	}

	select {
	case c.events <- event:
		return true
	default:
		log.Debug().Str("key", event.Name()).Msg("Input queue full, dropped key")
		return false
	}
}

func (c *Coordinator) openExternal(d track.Details, notify func(string)) {
	target, err := external.SearchURL(c.opts.SearchURL, d.Artist, d.Title)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build search URL")
		notify(fmt.Sprintf("Cannot search: %v", err))
		return
	}

	open := c.opts.Open
	go func() {
		if err := open(target); err != nil {
			log.Warn().Err(err).Str("url", target).Msg("Failed to open browser")
			notify("Could not open the browser")
		}
	}()
}

func (c *Coordinator) inputLoop() {
	defer c.wg.Done()
	defer c.opts.Terminal.RecoverPanic()

	for {
		event := c.screen.PollEvent()
		if event == nil {
			// Screen finalized.
			c.requestQuit()
			return
		}
		if c.quitting() {
			return
		}

		switch ev := event.(type) {
		case *tcell.EventResize:
			c.screen.Sync()
			width, height := ev.Size()
			c.resize.Store(Size{Width: width, Height: height})
		case *tcell.EventKey:
			if keyAction(ev) == ActionQuit {
				log.Debug().Str("key", ev.Name()).Msg("Quit requested")
				c.requestQuit()
				return
			}
			c.forward(ev)
		}
	}
}

func (c *Coordinator) renderLoop() {
	defer c.wg.Done()
	defer c.opts.Terminal.RecoverPanic()

	states := c.state.Watch()
	sizes := c.resize.Watch()

	for {
		select {
		case <-c.quit:
			return
		case <-states.Changed():
		case <-sizes.Changed():
		}

		sizes.Load()
		state := states.Load()

		var snapshot Snapshot[ListItem]
		c.list.View(func(l *SelectableList[ListItem]) {
			snapshot = l.Snapshot()
		})
		c.renderer.Draw(state, snapshot)
	}
}
