package ui

import "sync"

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Cell holds the latest value of T. Writers overwrite, readers only ever see
// the most recent write. Intermediate values may be skipped.
type Cell[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	changed chan struct{}
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:   initial,
		changed: make(chan struct{}),
	}
}

// Store replaces the value and wakes every watcher.
func (c *Cell[T]) Store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = v
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *Cell[T]) Load() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Watch returns a reader that has not yet seen the current value.
func (c *Cell[T]) Watch() *Watcher[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Wraps to the maximum for a fresh cell, which still differs from version.
	seen := c.version - 1
	return &Watcher[T]{cell: c, seen: seen}
}

// Watcher tracks which version of a Cell its owner has loaded.
type Watcher[T any] struct {
	cell *Cell[T]
	seen uint64
}

// Changed returns a channel that is closed once the cell holds a value this
// watcher has not loaded.
func (w *Watcher[T]) Changed() <-chan struct{} {
	w.cell.mu.Lock()
	defer w.cell.mu.Unlock()

	if w.cell.version != w.seen {
		return closedCh
	}
	return w.cell.changed
}

// Load returns the current value and marks it as seen.
func (w *Watcher[T]) Load() T {
	w.cell.mu.Lock()
	defer w.cell.mu.Unlock()

	w.seen = w.cell.version
	return w.cell.value
}
