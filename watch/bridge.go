// Package watch forwards filesystem changes on a single path to the
// presentation layer as typed events.
package watch

import (
	"encoding/json"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/yllada/leaf-vpn/common"
)

// EventName is the topic under which file events are published.
const EventName = "file-watch-event"

// Common errors - re-exported from common package for convenience.
var (
	ErrAlreadyRunning = common.ErrAlreadyRunning
	ErrNotRunning     = common.ErrNotRunning
)

// EventType classifies a filesystem change.
type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventRemove EventType = "remove"
	EventOther  EventType = "other"
)

// Event is one change observed on the watched path.
type Event struct {
	Path      string    `json:"path"`
	EventType EventType `json:"eventType"`
}

// JSON returns the wire form of the event.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Classify maps an fsnotify operation to an EventType. Content, metadata
// and name changes all count as modifications.
func Classify(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventCreate
	case op.Has(fsnotify.Remove):
		return EventRemove
	case op.Has(fsnotify.Write), op.Has(fsnotify.Chmod), op.Has(fsnotify.Rename):
		return EventModify
	default:
		return EventOther
	}
}

// Sink receives forwarded events. It must not call Stop.
type Sink func(Event)

// Bridge owns at most one watcher at a time.
type Bridge struct {
	sink Sink

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	done     chan struct{}
	stopping bool
}

// NewBridge creates a bridge delivering events to sink.
func NewBridge(sink Sink) *Bridge {
	return &Bridge{sink: sink}
}

// Start watches path (non-recursively). It fails with ErrAlreadyRunning if
// a watcher is installed, including one whose Stop has not returned yet.
// The watcher is installed only once the path has been added successfully.
func (b *Bridge) Start(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.watcher != nil {
		return ErrAlreadyRunning
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return common.WrapError(err, "failed to create file watcher")
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return common.WrapError(err, "failed to watch "+path)
	}

	done := make(chan struct{})
	b.watcher = w
	b.path = path
	b.done = done

	go b.forward(w, done)

	common.LogInfo("[watcher] Watching %s", path)
	return nil
}

// Stop closes the watcher and waits until its events stop being delivered.
// The watcher stays installed until then. It fails with ErrNotRunning if
// nothing is being watched or another Stop is in progress.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	w, done, path := b.watcher, b.done, b.path
	if w == nil || b.stopping {
		b.mu.Unlock()
		return ErrNotRunning
	}
	b.stopping = true
	b.mu.Unlock()

	err := w.Close()
	<-done

	b.mu.Lock()
	b.watcher = nil
	b.path = ""
	b.done = nil
	b.stopping = false
	b.mu.Unlock()

	common.LogInfo("[watcher] Stopped watching %s", path)
	if err != nil {
		return common.WrapError(err, "failed to close file watcher")
	}
	return nil
}

// IsRunning reports whether a watcher is installed and not being stopped.
func (b *Bridge) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watcher != nil && !b.stopping
}

// Path returns the watched path, or "" when stopped.
func (b *Bridge) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *Bridge) forward(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			e := Event{Path: event.Name, EventType: Classify(event.Op)}
			common.LogDebug("[watcher] fsnotify: %s %s -> %s", event.Op, event.Name, e.EventType)
			if b.sink != nil {
				b.sink(e)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			common.LogWarn("[watcher] error: %v", err)
		}
	}
}
