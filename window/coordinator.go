package window

import (
	"errors"

	"github.com/yllada/leaf-vpn/common"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFocusWorkaround briefly pins the window above others after it is
// activated, for compositors that ignore focus requests.
func WithFocusWorkaround(enabled bool) Option {
	return func(c *Coordinator) {
		c.focusWorkaround = enabled
	}
}

// Coordinator serializes show, hide, toggle and destroy requests for the
// main window.
type Coordinator struct {
	find            Finder
	gate            *Gate
	focusWorkaround bool
}

// NewCoordinator creates a coordinator for the window returned by find.
func NewCoordinator(find Finder, gate *Gate, opts ...Option) *Coordinator {
	c := &Coordinator{
		find: find,
		gate: gate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) handle() Handle {
	if c.find == nil {
		return nil
	}
	h, ok := c.find()
	if !ok {
		return nil
	}
	return h
}

// State returns the current lifecycle state. It does not pass the gate.
func (c *Coordinator) State() State {
	return DeriveState(c.handle())
}

// Describe returns the state and flags of the window, for diagnostics.
func (c *Coordinator) Describe() string {
	return Describe(c.handle())
}

func (c *Coordinator) gated(op string, fn func() Result) Result {
	if common.GetLogger().Level() <= common.LevelDebug {
		common.LogDebug("Window %s requested: %s", op, c.Describe())
	}
	release, ok := c.gate.Acquire()
	if !ok {
		common.LogDebug("Window %s dropped: another operation is running or debounce active", op)
		return ResultNoAction
	}
	defer release()

	result := fn()
	common.LogDebug("Window %s: %s", op, result)
	return result
}

// Show brings the window to the front and focuses it.
func (c *Coordinator) Show() Result {
	return c.gated("show", c.show)
}

// Hide hides the window.
func (c *Coordinator) Hide() Result {
	return c.gated("hide", c.hide)
}

// Toggle hides a visible window and activates a hidden or minimized one.
func (c *Coordinator) Toggle() Result {
	return c.gated("toggle", func() Result {
		h := c.handle()
		switch DeriveState(h) {
		case StateNotExist:
			return c.show()
		case StateVisibleFocused, StateVisibleUnfocused:
			return c.hideHandle(h)
		default:
			return c.activate(h)
		}
	})
}

// Destroy destroys the window.
func (c *Coordinator) Destroy() Result {
	return c.gated("destroy", func() Result {
		h := c.handle()
		if h == nil {
			common.LogWarn("Cannot destroy window: %v", common.ErrWindowNotExist)
			return ResultFailed
		}
		if err := h.Destroy(); err != nil {
			common.LogError("Failed to destroy window: %v", err)
			return ResultFailed
		}
		return ResultDestroyed
	})
}

// InterceptClose handles a close request by hiding the window instead.
// It bypasses the gate and reports whether the close must be prevented,
// which is always the case.
func (c *Coordinator) InterceptClose() bool {
	result := c.hide()
	common.LogDebug("Window close intercepted: %s", result)
	return true
}

func (c *Coordinator) show() Result {
	h := c.handle()
	switch DeriveState(h) {
	case StateVisibleFocused:
		return ResultNoAction
	case StateNotExist:
		common.LogWarn("Cannot show window: %v", common.ErrWindowNotExist)
		return ResultFailed
	}

	// The window may have gained focus since the state was first read.
	if DeriveState(h) == StateVisibleFocused {
		return ResultNoAction
	}
	return c.activate(h)
}

// activate runs unminimize, show and focus. Every step is attempted even
// when an earlier one fails.
func (c *Coordinator) activate(h Handle) Result {
	if h == nil {
		return ResultFailed
	}

	var errs []error
	if flag(h.IsMinimized) {
		if err := h.Unminimize(); err != nil {
			common.LogWarn("Failed to unminimize window: %v", err)
			errs = append(errs, err)
		}
	}
	if err := h.Show(); err != nil {
		common.LogWarn("Failed to show window: %v", err)
		errs = append(errs, err)
	}
	if err := h.Focus(); err != nil {
		common.LogWarn("Failed to focus window: %v", err)
		errs = append(errs, err)
	}

	if c.focusWorkaround {
		if ka, ok := h.(KeepAbove); ok {
			if err := ka.SetKeepAbove(true); err != nil {
				common.LogDebug("Keep-above workaround failed (non-critical): %v", err)
			}
			if err := ka.SetKeepAbove(false); err != nil {
				common.LogDebug("Keep-above workaround failed (non-critical): %v", err)
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		common.LogError("Window activation incomplete: %v", err)
		return ResultFailed
	}
	return ResultShown
}

func (c *Coordinator) hide() Result {
	return c.hideHandle(c.handle())
}

func (c *Coordinator) hideHandle(h Handle) Result {
	if h == nil {
		common.LogWarn("Cannot hide window: %v", common.ErrWindowNotExist)
		return ResultFailed
	}
	if err := h.Hide(); err != nil {
		common.LogError("Failed to hide window: %v", err)
		return ResultFailed
	}
	return ResultHidden
}
