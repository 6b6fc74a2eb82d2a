package ui

import "testing"

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestCellLastWriteWins(t *testing.T) {
	c := NewCell(1)
	c.Store(2)
	c.Store(3)

	if got := c.Load(); got != 3 {
		t.Errorf("Load() = %d, want 3", got)
	}
}

func TestWatcherSeesInitialValue(t *testing.T) {
	c := NewCell("initial")
	w := c.Watch()

	if !isClosed(w.Changed()) {
		t.Fatal("a fresh watcher should report the initial value as changed")
	}
	if got := w.Load(); got != "initial" {
		t.Errorf("Load() = %q, want initial", got)
	}
	if isClosed(w.Changed()) {
		t.Error("Changed() should block after Load()")
	}
}

func TestWatcherSkipsIntermediateValues(t *testing.T) {
	c := NewCell(0)
	w := c.Watch()
	w.Load()

	changed := w.Changed()
	for i := 1; i <= 5; i++ {
		c.Store(i)
	}

	if !isClosed(changed) {
		t.Fatal("Store() should close the pending Changed channel")
	}
	if got := w.Load(); got != 5 {
		t.Errorf("Load() = %d, want 5", got)
	}
	if isClosed(w.Changed()) {
		t.Error("no newer value, Changed() should block")
	}
}

func TestMultipleWatchers(t *testing.T) {
	c := NewCell(0)
	a, b := c.Watch(), c.Watch()
	a.Load()
	b.Load()

	c.Store(7)

	if !isClosed(a.Changed()) || !isClosed(b.Changed()) {
		t.Fatal("every watcher should be woken")
	}
	if a.Load() != 7 || b.Load() != 7 {
		t.Error("every watcher should read the latest value")
	}

	c.Store(8)
	a.Load()
	if isClosed(a.Changed()) {
		t.Error("watcher a has seen 8")
	}
	if !isClosed(b.Changed()) {
		t.Error("watcher b has not seen 8")
	}
}

func TestWatchAfterStore(t *testing.T) {
	c := NewCell(0)
	c.Store(1)

	w := c.Watch()
	if !isClosed(w.Changed()) {
		t.Error("a new watcher should see the current value as unseen")
	}
}
