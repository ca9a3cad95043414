package cli

import "github.com/charmbracelet/bubbles/key"

// MonitorKeys are the monitor's key bindings.
type MonitorKeys struct {
	Start  key.Binding
	Run    key.Binding
	Stop   key.Binding
	Update key.Binding
	Test   key.Binding
	Quit   key.Binding
}

var monitorKeys = MonitorKeys{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start core"),
	),
	Run: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "connect"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "disconnect"),
	),
	Update: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "update subscription"),
	),
	Test: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "test config"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k MonitorKeys) bindings() []key.Binding {
	return []key.Binding{k.Start, k.Run, k.Stop, k.Update, k.Test, k.Quit}
}
