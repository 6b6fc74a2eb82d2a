package ui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// ListItem is one row of the track list.
type ListItem struct {
	Label string
	Tag   tcell.Color
}

// SelectableList is a list with at most one selected entry. Moving the
// selection wraps at both ends; moving from no selection selects the first entry.
type SelectableList[T any] struct {
	items    []T
	selected int
	hasSel   bool
}

// NewSelectableList selects the first entry of a non-empty list.
func NewSelectableList[T any](items []T) *SelectableList[T] {
	l := &SelectableList[T]{items: items}
	if len(items) > 0 {
		l.hasSel = true
	}
	return l
}

func (l *SelectableList[T]) Next() {
	if len(l.items) == 0 {
		return
	}
	if !l.hasSel {
		l.selected, l.hasSel = 0, true
		return
	}
	l.selected = (l.selected + 1) % len(l.items)
}

func (l *SelectableList[T]) Previous() {
	if len(l.items) == 0 {
		return
	}
	if !l.hasSel {
		l.selected, l.hasSel = 0, true
		return
	}
	if l.selected == 0 {
		l.selected = len(l.items) - 1
		return
	}
	l.selected--
}

func (l *SelectableList[T]) Unselect() {
	l.selected, l.hasSel = 0, false
}

// Selected returns the selected index, if any.
func (l *SelectableList[T]) Selected() (int, bool) {
	return l.selected, l.hasSel
}

// Items returns a copy of the entries.
func (l *SelectableList[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Snapshot copies the entries and the selection.
func (l *SelectableList[T]) Snapshot() Snapshot[T] {
	selected, ok := l.Selected()
	return Snapshot[T]{
		Items:        l.Items(),
		Selected:     selected,
		HasSelection: ok,
	}
}

// Update replaces the entry at index with fn's result.
func (l *SelectableList[T]) Update(index int, fn func(T) T) bool {
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.items[index] = fn(l.items[index])
	return true
}

// Snapshot is a detached copy of a SelectableList, safe to read without
// holding the list's lock.
type Snapshot[T any] struct {
	Items        []T
	Selected     int
	HasSelection bool
}

// SharedList guards a SelectableList shared by the track loop, which mutates
// it, and the renderer, which reads it.
type SharedList[T any] struct {
	mu   sync.Mutex
	list *SelectableList[T]
}

func NewSharedList[T any](list *SelectableList[T]) *SharedList[T] {
	return &SharedList[T]{list: list}
}

func (s *SharedList[T]) Update(fn func(*SelectableList[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.list)
}

// View runs fn with the list locked. fn must not keep the list or do I/O.
func (s *SharedList[T]) View(fn func(*SelectableList[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.list)
}
