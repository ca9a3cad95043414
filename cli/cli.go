// Package cli provides the headless terminal monitor for Leaf VPN.
// It drives the same core shell as the desktop front end, rendering the
// tray color and status domains in the terminal instead of a tray icon.
package cli

import (
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/config"
	"github.com/yllada/leaf-vpn/core"
	"github.com/yllada/leaf-vpn/keyring"
	"github.com/yllada/leaf-vpn/quit"
	"github.com/yllada/leaf-vpn/status"
	"github.com/yllada/leaf-vpn/tray"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when the monitor is started without a TTY.
var ErrNoTerminal = errors.New("headless monitor requires a terminal")

// programRef is a shared reference to the tea.Program for goroutine sends.
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// coreActions adapts core.Core to Actions.
type coreActions struct {
	*core.Core
}

func (a coreActions) RequestQuit() quit.Outcome {
	return a.Quit().Request()
}

// Run starts the terminal monitor and returns the exit code requested by
// the quit sequence.
func Run(cfg *config.Config) (int, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 1, ErrNoTerminal
	}

	ref := &programRef{}
	c := core.New(cfg, core.Options{
		IconSetter: tray.IconSetterFunc(func(icon tray.Icon) error {
			ref.Send(colorMsg{color: icon.Color})
			return nil
		}),
		Notifier: common.NotifierFunc(func(_, message string) error {
			ref.Send(noticeMsg{text: message})
			return nil
		}),
		Exit: func(code int) {
			ref.Send(exitMsg{code: code})
		},
		ClientIDs: keyring.New(),
	})
	defer c.Close()

	c.Dispatcher().Subscribe(func(status.Topic, status.Status) {
		ref.Send(statusMsg{snapshot: c.Cache().Snapshot(), latency: c.Prober().Latency()})
	})

	model := NewModel(coreActions{c})
	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.Set(p)
	defer ref.Clear()

	go func() {
		if _, err := c.Tray().Init(); err != nil {
			common.LogWarn("Failed to render status color: %v", err)
		}
		c.Start()
	}()

	final, err := p.Run()
	if err != nil {
		return 1, fmt.Errorf("monitor failed: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.exitCode, nil
	}
	return 0, nil
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Leaf VPN - Desktop shell for the leaf proxy engine

Usage:
  leaf-vpn [OPTIONS]

Options:
  --version         Show version and exit
  --verbose         Enable verbose logging
  --headless        Run the terminal monitor instead of the tray
  --config PATH     Use an alternative configuration file
  --help            Show this help message

Monitor keys:
  s  start core        r  connect
  x  disconnect        u  update subscription
  t  test config
  q  quit (refused while the proxy is starting or running)

Notes:
  - Launching again while running shows the existing window
  - The leaf-ipc sidecar is looked up next to the binary, then in PATH`)
}
