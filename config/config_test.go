package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yllada/leaf-vpn/common"
)

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaf-vpn", "config.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.True(t, common.FileExists(path), "defaults should be written on first load")

	again, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFrom_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\n"), 0600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfigLoad))
}

func TestLoadFrom_FallsBackOnInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `log_level: loud
window:
  debounce_ms: -1
  focus_workaround: true
connectivity:
  interval_seconds: 0
  failure_threshold: -3
  hosts: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.LogLevel, cfg.LogLevel)
	assert.Equal(t, def.Window.DebounceMs, cfg.Window.DebounceMs)
	assert.True(t, cfg.Window.FocusWorkaround)
	assert.Equal(t, def.Connectivity.IntervalSeconds, cfg.Connectivity.IntervalSeconds)
	assert.Equal(t, def.Connectivity.FailureThreshold, cfg.Connectivity.FailureThreshold)
	assert.Equal(t, def.Connectivity.Hosts, cfg.Connectivity.Hosts)
}

func TestSaveTo_RoundTripsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.SidecarPath = "/opt/leaf/leaf-ipc"
	cfg.WatchSidecar = true
	cfg.Window.StartHidden = true
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/leaf/leaf-ipc", loaded.SidecarPath)
	assert.True(t, loaded.WatchSidecar)
	assert.True(t, loaded.Window.StartHidden)
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.Window.Debounce(); got != 500*time.Millisecond {
		t.Errorf("Debounce() = %v, want %v", got, 500*time.Millisecond)
	}
	if got := cfg.Connectivity.Interval(); got != common.ProbeInterval {
		t.Errorf("Interval() = %v, want %v", got, common.ProbeInterval)
	}
	if got := cfg.Connectivity.Timeout(); got != common.ProbeTimeout {
		t.Errorf("Timeout() = %v, want %v", got, common.ProbeTimeout)
	}
}
