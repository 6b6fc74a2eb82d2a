// Package terminal owns the tcell screen: raw mode and the alternate screen
// on Open, and a guaranteed restore on every exit path.
package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"
)

// TerminalError is a failure to enter or leave TUI mode.
type TerminalError struct {
	Op  string
	Err error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("terminal %s: %v", e.Op, e.Err)
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// Terminal wraps a screen with an idempotent restore.
type Terminal struct {
	screen      tcell.Screen
	restoreOnce sync.Once
}

// Open creates and initializes the process screen.
func Open() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, &TerminalError{Op: "open", Err: err}
	}
	return New(screen)
}

// New initializes screen. Tests pass a simulation screen.
func New(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, &TerminalError{Op: "init", Err: err}
	}
	screen.HideCursor()
	screen.Clear()

	log.Debug().Msg("Terminal entered TUI mode")
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Restore leaves TUI mode. Only the first call has any effect.
func (t *Terminal) Restore() {
	t.restoreOnce.Do(func() {
		t.screen.Fini()
		log.Debug().Msg("Terminal restored")
	})
}

// RecoverPanic restores the terminal before re-raising a panic, so the
// trace is printed to a usable shell. Use as a deferred call.
func (t *Terminal) RecoverPanic() {
	if r := recover(); r != nil {
		t.Restore()
		log.Error().Interface("panic", r).Msg("Panic in terminal session")
		panic(r)
	}
}
