package ui

import (
	"sync"

	"fyne.io/systray"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/tray"
)

// TrayIndicator manages the system tray icon and menu.
type TrayIndicator struct {
	app *Application

	mu    sync.RWMutex
	ready bool
}

// NewTrayIndicator creates a tray indicator for app.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{app: app}
}

// Run starts the tray loop. It blocks and should run on its own goroutine.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop.
func (t *TrayIndicator) Quit() {
	systray.Quit()
}

// SetIcon implements tray.IconSetter. It fails until the tray is ready.
func (t *TrayIndicator) SetIcon(icon tray.Icon) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.ready {
		return common.ErrTrayNotReady
	}

	systray.SetIcon(icon.PNG)
	systray.SetTooltip(common.AppName + " - " + describeColor(icon.Color))
	return nil
}

func (t *TrayIndicator) onReady() {
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName)

	toggleItem := systray.AddMenuItem("Show/Hide Window", "Show or hide the main window")
	go func() {
		for range toggleItem.ClickedCh {
			result := t.app.core.Window().Toggle()
			common.LogDebug("Tray toggle: %s", result)
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			outcome := t.app.core.Quit().Request()
			common.LogDebug("Tray quit: %s", outcome)
		}
	}()

	t.mu.Lock()
	t.ready = true
	t.mu.Unlock()

	if _, err := t.app.core.Tray().Init(); err != nil {
		common.LogWarn("Failed to set tray icon: %v", err)
	}
}

func (t *TrayIndicator) onExit() {
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
	common.LogDebug("Tray exited")
}

func describeColor(c tray.Color) string {
	switch c {
	case tray.Green:
		return "Connected"
	case tray.Yellow:
		return "Connectivity lost"
	case tray.Red:
		return "Error"
	default:
		return "Disconnected"
	}
}
