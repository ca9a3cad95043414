package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/yllada/leaf-vpn/tray"
)

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Width(14).
			Foreground(colorDim)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			MarginTop(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			MarginTop(1)
)

// dotStyle returns the style of the status dot for c.
func dotStyle(c tray.Color) lipgloss.Style {
	switch c {
	case tray.Green:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case tray.Red:
		return lipgloss.NewStyle().Foreground(colorRed)
	case tray.Yellow:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorDim)
	}
}
