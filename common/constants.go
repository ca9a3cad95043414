// Package common provides shared constants, types, and utilities
// used across the Leaf VPN shell.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "com.leafvpn.app"
	// AppName is the display name of the application.
	AppName = "Leaf VPN"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "leaf-vpn"
)

// File names used by the application.
const (
	ConfigFileName  = "config.yaml"
	LogFileName     = "leaf-vpn.log"
	SidecarFileName = "leaf-ipc"
)

// Default timeouts and intervals.
const (
	// DebounceInterval is the minimum time between two window operations.
	DebounceInterval = 500 * time.Millisecond
	// ProbeInterval is how often connectivity is probed while the proxy runs.
	ProbeInterval = 10 * time.Second
	// ProbeTimeout bounds a single connectivity dial.
	ProbeTimeout = 3 * time.Second
	// ProbeFailureThreshold is the number of failed probes before
	// connectivity is reported lost.
	ProbeFailureThreshold = 2
	// ShutdownTimeout is how long the sidecar gets to exit after a
	// shutdown command before it is killed.
	ShutdownTimeout = 5 * time.Second
)

// DefaultProbeHosts are dialed by the connectivity prober.
var DefaultProbeHosts = []string{
	"1.1.1.1:443",
	"8.8.8.8:443",
	"9.9.9.9:443",
}

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 420
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 360
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
)

// Messages shown when a quit request cannot proceed.
const (
	MsgQuitWhileStarting    = "Please wait until VPN finishes starting before quitting."
	MsgQuitWhileProxyActive = "Please first stop Leaf VPN before quitting."
	MsgShutdownFailed       = "Failed to shutdown core: %s"
)
