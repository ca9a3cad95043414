// Package config provides configuration management for the Leaf VPN shell.
// It handles loading, saving, and validating application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yllada/leaf-vpn/common"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// ShowNotifications enables desktop notifications for status changes.
	// Quit-blocking notices are always shown.
	ShowNotifications bool `yaml:"show_notifications"`
	// LogLevel is one of debug, info, warn, error or quiet.
	LogLevel string `yaml:"log_level"`
	// SidecarPath overrides where the leaf-ipc binary is looked up.
	SidecarPath string `yaml:"sidecar_path"`
	// Daemonize asks the sidecar to detach its core from the shell process.
	Daemonize bool `yaml:"daemonize"`
	// WatchSidecar reports changes to the sidecar binary while running.
	WatchSidecar bool `yaml:"watch_sidecar"`
	// AutoStartCore launches the engine when the shell starts.
	AutoStartCore bool `yaml:"auto_start_core"`
	// AutoUpdateSubscription refreshes the subscription once the engine is up.
	AutoUpdateSubscription bool `yaml:"auto_update_subscription"`

	Window       WindowConfig       `yaml:"window"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
}

// WindowConfig controls main window behavior.
type WindowConfig struct {
	// DebounceMs is the minimum gap between two window operations.
	DebounceMs int `yaml:"debounce_ms"`
	// FocusWorkaround toggles keep-above after activation on compositors
	// that refuse to raise the window.
	FocusWorkaround bool `yaml:"focus_workaround"`
	// StartHidden keeps the window hidden until it is requested from the tray.
	StartHidden bool `yaml:"start_hidden"`
}

// ConnectivityConfig controls the connectivity prober.
type ConnectivityConfig struct {
	IntervalSeconds  int      `yaml:"interval_seconds"`
	TimeoutSeconds   int      `yaml:"timeout_seconds"`
	FailureThreshold int      `yaml:"failure_threshold"`
	Hosts            []string `yaml:"hosts"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	hosts := make([]string, len(common.DefaultProbeHosts))
	copy(hosts, common.DefaultProbeHosts)

	return &Config{
		ShowNotifications:      true,
		LogLevel:               "info",
		Daemonize:              true,
		WatchSidecar:           false,
		AutoStartCore:          true,
		AutoUpdateSubscription: false,
		Window: WindowConfig{
			DebounceMs:      int(common.DebounceInterval / time.Millisecond),
			FocusWorkaround: false,
			StartHidden:     false,
		},
		Connectivity: ConnectivityConfig{
			IntervalSeconds:  int(common.ProbeInterval / time.Second),
			TimeoutSeconds:   int(common.ProbeTimeout / time.Second),
			FailureThreshold: common.ProbeFailureThreshold,
			Hosts:            hosts,
		},
	}
}

// Debounce returns the window debounce interval.
func (w WindowConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Interval returns the probe interval.
func (c ConnectivityConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Timeout returns the per-dial probe timeout.
func (c ConnectivityConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load loads the configuration from the default config file.
// If the file doesn't exist, it creates one with default values.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, writing defaults there when
// the file does not exist yet.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(configPath); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}

	config.validate()
	return config, nil
}

// validate replaces out-of-range values with their defaults.
func (c *Config) validate() {
	def := DefaultConfig()

	switch c.LogLevel {
	case "debug", "verbose", "info", "warn", "warning", "error", "quiet", "silent":
	default:
		c.LogLevel = def.LogLevel
	}
	if c.Window.DebounceMs < 0 {
		c.Window.DebounceMs = def.Window.DebounceMs
	}
	if c.Connectivity.IntervalSeconds <= 0 {
		c.Connectivity.IntervalSeconds = def.Connectivity.IntervalSeconds
	}
	if c.Connectivity.TimeoutSeconds <= 0 {
		c.Connectivity.TimeoutSeconds = def.Connectivity.TimeoutSeconds
	}
	if c.Connectivity.FailureThreshold <= 0 {
		c.Connectivity.FailureThreshold = def.Connectivity.FailureThreshold
	}
	if len(c.Connectivity.Hosts) == 0 {
		c.Connectivity.Hosts = def.Connectivity.Hosts
	}
}

// Save saves the configuration to the default config file.
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the configuration to configPath.
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
