package ui

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/config"
	"github.com/yllada/leaf-vpn/core"
	"github.com/yllada/leaf-vpn/keyring"
	"github.com/yllada/leaf-vpn/window"
)

// Application represents the main application.
type Application struct {
	app     *gtk.Application
	core    *core.Core
	config  *config.Config
	tray    *TrayIndicator
	version string

	mu       sync.Mutex
	window   *MainWindow
	started  bool
	exitCode int
}

// NewApplication creates the desktop application. A second launch of the
// binary activates the running instance, which shows its window.
func NewApplication(cfg *config.Config, version string) *Application {
	a := &Application{
		app:     gtk.NewApplication(common.AppID, gio.ApplicationFlagsNone),
		config:  cfg,
		version: version,
	}
	a.tray = NewTrayIndicator(a)

	a.core = core.New(cfg, core.Options{
		Finder:     a.findWindow,
		IconSetter: a.tray,
		Notifier:   NewDesktopNotifier(),
		Exit:       a.exit,
		ClientIDs:  keyring.New(),
	})

	a.app.ConnectActivate(a.onActivate)
	a.app.ConnectShutdown(a.core.Close)
	return a
}

// Run runs the application and returns its exit code.
func (a *Application) Run(args []string) int {
	if code := a.app.Run(args); code != 0 {
		return code
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exitCode
}

// Core returns the shell the application drives.
func (a *Application) Core() *core.Core {
	return a.core
}

func (a *Application) onActivate() {
	a.mu.Lock()
	first := !a.started
	a.started = true
	a.mu.Unlock()

	if !first {
		common.LogInfo("Activated by another instance")
		go a.core.Window().Show()
		return
	}

	a.setupAppIcon()
	LoadStyles()

	mw := NewMainWindow(a)
	mw.window.ConnectDestroy(func() {
		a.mu.Lock()
		a.window = nil
		a.mu.Unlock()
	})
	a.mu.Lock()
	a.window = mw
	a.mu.Unlock()
	a.core.Dispatcher().Subscribe(mw.onStatus)

	// Keep running while the window is hidden.
	a.app.Hold()

	go a.tray.Run()
	go a.core.Start()

	if !a.config.Window.StartHidden {
		go a.core.Window().Show()
	}
}

// findWindow implements window.Finder.
func (a *Application) findWindow() (window.Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.window == nil {
		return nil, false
	}
	return windowHandle{win: a.window.window}, true
}

// exit is called by the quit sequence once quitting is allowed.
func (a *Application) exit(code int) {
	a.mu.Lock()
	a.exitCode = code
	a.mu.Unlock()

	a.tray.Quit()
	glib.IdleAdd(func() {
		a.app.Release()
		a.app.Quit()
	})
}

func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName("leaf-vpn")
}
