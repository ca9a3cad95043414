// Package window coordinates the visibility lifecycle of the main window.
//
// All public operations pass a debounce gate so that a burst of tray
// clicks, relaunches and close requests runs at most one operation at a
// time, and no two operations start closer together than the debounce
// interval. Losing callers get NoAction.
package window

import "fmt"

// Handle is the platform window being coordinated. Flag queries that fail
// are treated as false.
type Handle interface {
	IsVisible() (bool, error)
	IsFocused() (bool, error)
	IsMinimized() (bool, error)
	Unminimize() error
	Show() error
	Focus() error
	Hide() error
	Destroy() error
}

// KeepAbove is implemented by handles that can pin the window above others.
type KeepAbove interface {
	SetKeepAbove(above bool) error
}

// Finder returns the main window, or false when it does not exist.
type Finder func() (Handle, bool)

// State is the lifecycle state derived from a window's flags.
type State int

const (
	StateNotExist State = iota
	StateVisibleFocused
	StateVisibleUnfocused
	StateMinimized
	StateHidden
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateNotExist:
		return "NotExist"
	case StateVisibleFocused:
		return "VisibleFocused"
	case StateVisibleUnfocused:
		return "VisibleUnfocused"
	case StateMinimized:
		return "Minimized"
	case StateHidden:
		return "Hidden"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a coordinated operation.
type Result int

const (
	ResultNoAction Result = iota
	ResultShown
	ResultHidden
	ResultDestroyed
	ResultFailed
)

// String returns a human-readable representation of the result.
func (r Result) String() string {
	switch r {
	case ResultNoAction:
		return "NoAction"
	case ResultShown:
		return "Shown"
	case ResultHidden:
		return "Hidden"
	case ResultDestroyed:
		return "Destroyed"
	case ResultFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

type flags struct {
	visible, focused, minimized bool
}

func flag(query func() (bool, error)) bool {
	v, err := query()
	return err == nil && v
}

func readFlags(h Handle) flags {
	return flags{
		visible:   flag(h.IsVisible),
		focused:   flag(h.IsFocused),
		minimized: flag(h.IsMinimized),
	}
}

func (f flags) state() State {
	switch {
	case f.minimized:
		return StateMinimized
	case !f.visible:
		return StateHidden
	case f.focused:
		return StateVisibleFocused
	default:
		return StateVisibleUnfocused
	}
}

// DeriveState returns the lifecycle state of h. A nil handle does not exist.
func DeriveState(h Handle) State {
	if h == nil {
		return StateNotExist
	}
	return readFlags(h).state()
}

// Describe reports the derived state and the raw flags of h.
func Describe(h Handle) string {
	if h == nil {
		return fmt.Sprintf("Window state: %s | Visible: false | Focused: false | Minimized: false", StateNotExist)
	}
	f := readFlags(h)
	return fmt.Sprintf("Window state: %s | Visible: %t | Focused: %t | Minimized: %t",
		f.state(), f.visible, f.focused, f.minimized)
}
