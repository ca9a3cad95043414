package tray

import (
	"sync"

	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/status"
)

// IconSetter installs an icon in the tray.
type IconSetter interface {
	SetIcon(icon Icon) error
}

// IconSetterFunc adapts a function to IconSetter.
type IconSetterFunc func(icon Icon) error

// SetIcon calls f(icon).
func (f IconSetterFunc) SetIcon(icon Icon) error { return f(icon) }

// SnapshotSource provides status snapshots; *status.Cache implements it.
type SnapshotSource interface {
	Snapshot() status.Snapshot
}

// Reducer keeps the tray icon in sync with the status cache. The icon is
// only swapped when the computed color differs from the one last applied.
type Reducer struct {
	mu      sync.Mutex
	source  SnapshotSource
	setter  IconSetter
	load    func(Color) (Icon, error)
	current Color
	applied bool
}

// NewReducer creates a reducer reading from source and writing to setter.
func NewReducer(source SnapshotSource, setter IconSetter) *Reducer {
	return &Reducer{
		source: source,
		setter: setter,
		load:   LoadIcon,
	}
}

// Current returns the color of the icon that is currently shown.
func (r *Reducer) Current() Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Init applies the color for the current snapshot unconditionally.
// It is called once the tray can accept icons.
func (r *Reducer) Init() (Color, error) {
	c := Compute(r.source.Snapshot())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = false
	_, err := r.applyLocked(c)
	return c, err
}

// Refresh recomputes the color from the cache and applies it.
func (r *Reducer) Refresh() (Color, error) {
	c := Compute(r.source.Snapshot())
	_, err := r.Apply(c)
	return c, err
}

// Apply shows the icon for c. It reports whether the icon was swapped.
// On failure the previous color stays current, so the next Apply retries.
func (r *Reducer) Apply(c Color) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.applyLocked(c)
}

func (r *Reducer) applyLocked(c Color) (bool, error) {
	if r.applied && r.current == c {
		return false, nil
	}

	icon, err := r.load(c)
	if err != nil {
		common.LogError("Failed to load %s tray icon: %v", c, err)
		return false, err
	}
	if err := r.setter.SetIcon(icon); err != nil {
		common.LogError("Failed to set %s tray icon: %v", c, err)
		return false, err
	}

	common.LogDebug("Tray icon changed: %s -> %s", r.current, c)
	r.current = c
	r.applied = true
	return true, nil
}
