package window

import (
	"errors"
	"sync"
	"time"
)

// fakeWindow is an in-memory Handle that records the primitives invoked.
type fakeWindow struct {
	mu        sync.Mutex
	visible   bool
	focused   bool
	minimized bool
	destroyed bool

	failUnminimize error
	failShow       error
	failFocus      error
	failHide       error
	failFlags      error

	// showGate, when set, blocks Show until closed; showEntered is
	// closed when Show is first entered.
	showGate    chan struct{}
	showEntered chan struct{}

	calls     []string
	keepAbove []bool
}

func (w *fakeWindow) record(call string) {
	w.mu.Lock()
	w.calls = append(w.calls, call)
	w.mu.Unlock()
}

func (w *fakeWindow) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

func (w *fakeWindow) IsVisible() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible, w.failFlags
}

func (w *fakeWindow) IsFocused() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused, w.failFlags
}

func (w *fakeWindow) IsMinimized() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.minimized, w.failFlags
}

func (w *fakeWindow) Unminimize() error {
	w.record("unminimize")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failUnminimize != nil {
		return w.failUnminimize
	}
	w.minimized = false
	return nil
}

func (w *fakeWindow) Show() error {
	w.record("show")
	if w.showEntered != nil {
		close(w.showEntered)
		w.showEntered = nil
	}
	if w.showGate != nil {
		<-w.showGate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failShow != nil {
		return w.failShow
	}
	w.visible = true
	return nil
}

func (w *fakeWindow) Focus() error {
	w.record("focus")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failFocus != nil {
		return w.failFocus
	}
	w.focused = true
	return nil
}

func (w *fakeWindow) Hide() error {
	w.record("hide")
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failHide != nil {
		return w.failHide
	}
	w.visible = false
	w.focused = false
	return nil
}

func (w *fakeWindow) Destroy() error {
	w.record("destroy")
	w.mu.Lock()
	defer w.mu.Unlock()
	w.destroyed = true
	return nil
}

func (w *fakeWindow) finder() Finder {
	return func() (Handle, bool) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.destroyed {
			return nil, false
		}
		return w, true
	}
}

// keepAboveWindow adds KeepAbove support to fakeWindow.
type keepAboveWindow struct {
	*fakeWindow
	fail error
}

func (w *keepAboveWindow) SetKeepAbove(above bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keepAbove = append(w.keepAbove, above)
	return w.fail
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCoordinator(w *fakeWindow, opts ...Option) (*Coordinator, *fakeClock) {
	clock := newFakeClock()
	gate := NewGate(500 * time.Millisecond)
	gate.now = clock.Now
	return NewCoordinator(w.finder(), gate, opts...), clock
}

var errPlatform = errors.New("platform refused")
