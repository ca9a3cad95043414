package cli

import (
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yllada/leaf-vpn/quit"
	"github.com/yllada/leaf-vpn/status"
	"github.com/yllada/leaf-vpn/tray"
)

type fakeActions struct {
	mu      sync.Mutex
	calls   []string
	err     error
	outcome quit.Outcome
}

func (a *fakeActions) record(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, name)
	return a.err
}

func (a *fakeActions) StartEngine() error        { return a.record("start") }
func (a *fakeActions) RunProxy() error           { return a.record("run") }
func (a *fakeActions) StopProxy() error          { return a.record("stop") }
func (a *fakeActions) UpdateSubscription() error { return a.record("update") }
func (a *fakeActions) TestConfig() error         { return a.record("test") }

func (a *fakeActions) RequestQuit() quit.Outcome {
	_ = a.record("quit")
	return a.outcome
}

func (a *fakeActions) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func keyMsg(s string) tea.KeyMsg {
	if s == "ctrl+c" {
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestModel_KeysTriggerActions(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"s", "start"},
		{"r", "run"},
		{"x", "stop"},
		{"u", "update"},
		{"t", "test"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			actions := &fakeActions{}
			m := NewModel(actions)

			next, cmd := m.Update(keyMsg(tt.key))
			assert.True(t, next.(Model).busy)

			msgs := runCmd(cmd)
			done, ok := find[actionMsg](msgs)
			require.True(t, ok)
			assert.NoError(t, done.err)
			assert.Equal(t, []string{tt.want}, actions.Calls())

			final, _ := next.Update(done)
			assert.False(t, final.(Model).busy)
		})
	}
}

func TestModel_ActionErrorIsShown(t *testing.T) {
	actions := &fakeActions{err: errors.New("sidecar not found")}
	m := NewModel(actions)

	next, cmd := m.Update(keyMsg("r"))
	done, ok := find[actionMsg](runCmd(cmd))
	require.True(t, ok)

	final, _ := next.Update(done)
	assert.Contains(t, final.View(), "sidecar not found")
}

func TestModel_QuitGoesThroughCoordinator(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			actions := &fakeActions{outcome: quit.OutcomeBlockedProxyRunning}
			m := NewModel(actions)

			next, cmd := m.Update(keyMsg(k))
			require.NotNil(t, cmd)
			assert.False(t, next.(Model).quitting, "the model only exits when told to")

			msgs := runCmd(cmd)
			outcome, ok := find[outcomeMsg](msgs)
			require.True(t, ok)
			assert.Equal(t, quit.OutcomeBlockedProxyRunning, outcome.outcome)
			assert.Equal(t, []string{"quit"}, actions.Calls())
		})
	}
}

func TestModel_ExitQuitsProgram(t *testing.T) {
	m := NewModel(&fakeActions{})

	next, cmd := m.Update(exitMsg{code: 0})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.View())
}

func TestModel_RendersStatus(t *testing.T) {
	m := NewModel(&fakeActions{})
	assert.Contains(t, m.View(), "Unknown")

	engine := status.EngineStatus{State: status.EngineStarted}
	proxy := status.ProxyStatus{State: status.ProxyError, Message: "tun busy"}
	next, _ := m.Update(statusMsg{snapshot: status.Snapshot{Engine: &engine, Proxy: &proxy}})
	next, _ = next.Update(colorMsg{color: tray.Red})
	next, _ = next.Update(noticeMsg{text: "Proxy is active"})

	view := next.View()
	assert.Contains(t, view, engine.String())
	assert.Contains(t, view, proxy.String())
	assert.Contains(t, view, "Proxy is active")
	assert.Contains(t, view, "q quit")
	assert.Equal(t, tray.Red, next.(Model).color)
}

func TestModel_RendersLatencyWhenOnline(t *testing.T) {
	ok := status.ConnectivityOk
	lost := status.ConnectivityLost

	m := NewModel(&fakeActions{})
	next, _ := m.Update(statusMsg{
		snapshot: status.Snapshot{Connectivity: &ok},
		latency:  42*time.Millisecond + 300*time.Microsecond,
	})
	assert.Contains(t, next.View(), "(42ms)")

	next, _ = next.Update(statusMsg{
		snapshot: status.Snapshot{Connectivity: &lost},
		latency:  42 * time.Millisecond,
	})
	assert.NotContains(t, next.View(), "42ms", "latency is only shown while online")
}
