package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/quit"
	"github.com/yllada/leaf-vpn/status"
	"github.com/yllada/leaf-vpn/tray"
)

// Actions are the shell requests the monitor can make.
type Actions interface {
	StartEngine() error
	RunProxy() error
	StopProxy() error
	UpdateSubscription() error
	TestConfig() error
	RequestQuit() quit.Outcome
}

type statusMsg struct {
	snapshot status.Snapshot
	latency  time.Duration
}

type (
	colorMsg   struct{ color tray.Color }
	noticeMsg  struct{ text string }
	exitMsg    struct{ code int }
	actionMsg  struct{ err error }
	outcomeMsg struct{ outcome quit.Outcome }
)

// Model is the Bubbletea model of the monitor.
type Model struct {
	actions  Actions
	snapshot status.Snapshot
	latency  time.Duration
	color    tray.Color
	notice   string
	spinner  spinner.Model
	busy     bool
	exitCode int
	quitting bool
}

// NewModel creates a monitor model.
func NewModel(actions Actions) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		actions: actions,
		color:   tray.Grey,
		spinner: s,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case statusMsg:
		m.snapshot = msg.snapshot
		m.latency = msg.latency
		return m, nil

	case colorMsg:
		m.color = msg.color
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil

	case outcomeMsg:
		common.LogDebug("Quit request: %s", msg.outcome)
		return m, nil

	case exitMsg:
		m.exitCode = msg.code
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, monitorKeys.Start):
		return m.perform(m.actions.StartEngine)
	case key.Matches(msg, monitorKeys.Run):
		return m.perform(m.actions.RunProxy)
	case key.Matches(msg, monitorKeys.Stop):
		return m.perform(m.actions.StopProxy)
	case key.Matches(msg, monitorKeys.Update):
		return m.perform(m.actions.UpdateSubscription)
	case key.Matches(msg, monitorKeys.Test):
		return m.perform(m.actions.TestConfig)
	case key.Matches(msg, monitorKeys.Quit):
		m.notice = ""
		actions := m.actions
		return m, func() tea.Msg {
			return outcomeMsg{outcome: actions.RequestQuit()}
		}
	}
	return m, nil
}

// perform runs fn off the update loop and shows the spinner until it returns.
func (m Model) perform(fn func() error) (tea.Model, tea.Cmd) {
	m.busy = true
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return actionMsg{err: fn()}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := dotStyle(m.color).Render("●") + " " + common.AppName
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(row("Core", describe(m.snapshot.Engine)))
	b.WriteString(row("Proxy", describe(m.snapshot.Proxy)))
	connectivity := describe(m.snapshot.Connectivity)
	if c := m.snapshot.Connectivity; c != nil && *c == status.ConnectivityOk && m.latency > 0 {
		connectivity += fmt.Sprintf(" (%v)", m.latency.Round(time.Millisecond))
	}
	b.WriteString(row("Connectivity", connectivity))
	b.WriteString(row("Subscription", describe(m.snapshot.Subscription)))

	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " working...")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
	}

	help := make([]string, 0, len(monitorKeys.bindings()))
	for _, k := range monitorKeys.bindings() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(helpStyle.Render(strings.Join(help, " • ")))
	b.WriteString("\n")
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func describe[T fmt.Stringer](v *T) string {
	if v == nil {
		return "Unknown"
	}
	return (*v).String()
}
