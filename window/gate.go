package window

import (
	"sync"
	"time"
)

// Gate admits one operation at a time and enforces a minimum interval
// between operation starts.
type Gate struct {
	mu         sync.Mutex
	interval   time.Duration
	now        func() time.Time
	last       time.Time
	inProgress bool
}

// NewGate creates a gate with the given debounce interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval: interval,
		now:      time.Now,
	}
}

// Acquire admits the caller if no operation is running and the interval
// has elapsed since the last admitted operation began. The returned release
// func must be called when the operation ends; extra calls are ignored.
func (g *Gate) Acquire() (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inProgress {
		return nil, false
	}
	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return nil, false
	}

	g.inProgress = true
	g.last = now

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.inProgress = false
			g.mu.Unlock()
		})
	}, true
}

// InProgress reports whether an operation currently holds the gate.
func (g *Gate) InProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inProgress
}
