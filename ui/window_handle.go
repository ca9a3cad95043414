package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/yllada/leaf-vpn/common"
)

// onMain runs fn on the GTK main loop and waits for its result.
// It must not be called from the main loop itself.
func onMain[T any](fn func() T) T {
	result := make(chan T, 1)
	glib.IdleAdd(func() {
		result <- fn()
	})
	return <-result
}

// windowHandle adapts a gtk.ApplicationWindow to window.Handle.
type windowHandle struct {
	win *gtk.ApplicationWindow
}

func (h windowHandle) IsVisible() (bool, error) {
	return onMain(h.win.IsVisible), nil
}

func (h windowHandle) IsFocused() (bool, error) {
	return onMain(h.win.IsActive), nil
}

func (h windowHandle) IsMinimized() (bool, error) {
	type toplevelState interface {
		State() gdk.ToplevelState
	}

	return onMain(func() bool {
		surface := h.win.Surface()
		if surface == nil {
			return false
		}
		toplevel, ok := surface.(toplevelState)
		if !ok {
			return false
		}
		return toplevel.State().Has(gdk.ToplevelStateMinimized)
	}), nil
}

func (h windowHandle) Unminimize() error {
	return h.do(h.win.Unminimize)
}

func (h windowHandle) Show() error {
	return h.do(func() { h.win.SetVisible(true) })
}

func (h windowHandle) Focus() error {
	return h.do(h.win.Present)
}

func (h windowHandle) Hide() error {
	return h.do(func() { h.win.SetVisible(false) })
}

func (h windowHandle) Destroy() error {
	return h.do(h.win.Destroy)
}

func (h windowHandle) do(fn func()) error {
	return onMain(func() error {
		if h.win == nil {
			return common.ErrWindowClosed
		}
		fn()
		return nil
	})
}
