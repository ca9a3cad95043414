// Package tray maps the cached component status to the tray icon.
package tray

import "github.com/yllada/leaf-vpn/status"

// Color is the presentation color of the tray icon.
type Color int

const (
	Grey Color = iota
	Green
	Red
	Yellow
)

// String returns a human-readable representation of the color.
func (c Color) String() string {
	switch c {
	case Grey:
		return "Grey"
	case Green:
		return "Green"
	case Red:
		return "Red"
	case Yellow:
		return "Yellow"
	default:
		return "Unknown"
	}
}

// Compute returns the tray color for a snapshot. Rules are checked in
// order and the first match wins:
//
//  1. engine error: Red
//  2. proxy error: Red
//  3. proxy started with connectivity lost: Yellow
//  4. proxy started: Green
//  5. anything else: Grey
func Compute(s status.Snapshot) Color {
	if s.Engine != nil && s.Engine.IsError() {
		return Red
	}
	if s.Proxy != nil && s.Proxy.IsError() {
		return Red
	}
	if s.Proxy != nil && s.Proxy.State == status.ProxyStarted {
		if s.Connectivity != nil && *s.Connectivity == status.ConnectivityLost {
			return Yellow
		}
		return Green
	}
	return Grey
}
