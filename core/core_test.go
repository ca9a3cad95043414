package core

import (
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/config"
	"github.com/yllada/leaf-vpn/quit"
	"github.com/yllada/leaf-vpn/status"
	"github.com/yllada/leaf-vpn/tray"
	"github.com/yllada/leaf-vpn/watch"
	"github.com/yllada/leaf-vpn/window"
)

const fakeSidecar = `#!/bin/sh
echo '{"domain":"core","type":"started"}'
while IFS= read -r line; do
	case "$line" in
	*run_leaf*) echo '{"domain":"leaf","type":"starting"}'; echo '{"domain":"leaf","type":"started"}' ;;
	*stop_leaf*) echo '{"domain":"leaf","type":"stopped"}' ;;
	*update_subscription*client-1*) echo '{"domain":"subscription","type":"success"}' ;;
	*update_subscription*) echo '{"domain":"subscription","type":"error","data":{"error":"no client"}}' ;;
	*shutdown*) exit 0 ;;
	esac
done
`

type fixedID string

func (f fixedID) ClientID() (string, error) { return string(f), nil }

type recorder struct {
	mu     sync.Mutex
	colors []tray.Color
	exits  []int
	events []watch.Event
}

func (r *recorder) SetIcon(icon tray.Icon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colors = append(r.colors, icon.Color)
	return nil
}

func (r *recorder) exit(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = append(r.exits, code)
}

func (r *recorder) sink(e watch.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) exitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.exits)
}

func (r *recorder) eventCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func writeSidecar(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), common.SidecarFileName)
	require.NoError(t, os.WriteFile(path, []byte(fakeSidecar), 0755))
	return path
}

// probeTarget accepts connections so the prober reports Ok.
func probeTarget(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	return ln.Addr().String()
}

// refusedTarget returns an address nothing listens on.
func refusedTarget(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

type noticeLog struct {
	mu       sync.Mutex
	messages []string
}

func (n *noticeLog) notifier() common.Notifier {
	return common.NotifierFunc(func(_, message string) error {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.messages = append(n.messages, message)
		return nil
	})
}

func (n *noticeLog) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Connectivity.Hosts = []string{probeTarget(t)}
	cfg.Connectivity.IntervalSeconds = 1
	cfg.Connectivity.TimeoutSeconds = 1
	cfg.Connectivity.FailureThreshold = 1
	return cfg
}

func TestCore_WithoutEngine(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := testConfig(t)
	cfg.SidecarPath = filepath.Join(t.TempDir(), "missing")

	rec := &recorder{}
	c := New(cfg, Options{IconSetter: rec, Exit: rec.exit})
	defer c.Close()

	assert.False(t, c.HasEngine())
	assert.ErrorIs(t, c.StartEngine(), common.ErrSidecarNotFound)
	assert.ErrorIs(t, c.RunProxy(), common.ErrSidecarNotFound)
	assert.ErrorIs(t, c.UpdateSubscription(), common.ErrSidecarNotFound)
	assert.ErrorIs(t, c.TestConfig(), common.ErrSidecarNotFound)
	assert.ErrorIs(t, c.WatchSidecar(), common.ErrSidecarNotFound)

	c.Start()
	assert.Equal(t, window.StateNotExist, c.Window().State())

	assert.Equal(t, quit.OutcomeExit, c.Quit().Request())
	assert.Equal(t, 1, rec.exitCount())
}

func TestCore_TrayFollowsDispatcher(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := testConfig(t)
	cfg.SidecarPath = filepath.Join(t.TempDir(), "missing")

	rec := &recorder{}
	c := New(cfg, Options{IconSetter: rec})
	defer c.Close()

	_, err := c.Tray().Init()
	require.NoError(t, err)
	assert.Equal(t, tray.Grey, c.Tray().Current())

	c.Dispatcher().OnEngine(status.EngineStatus{State: status.EngineError, Message: "boom"})
	assert.Equal(t, tray.Red, c.Tray().Current())

	c.Dispatcher().OnEngine(status.EngineStatus{State: status.EngineStarted})
	c.Dispatcher().OnProxy(status.ProxyStatus{State: status.ProxyStarted})
	require.Eventually(t, func() bool {
		return c.Tray().Current() == tray.Green
	}, 3*time.Second, 10*time.Millisecond)
	assert.True(t, c.Prober().IsRunning(), "a running proxy starts the prober")

	c.Dispatcher().OnProxy(status.ProxyStatus{State: status.ProxyIdle})
	assert.False(t, c.Prober().IsRunning())
	assert.Equal(t, tray.Grey, c.Tray().Current())
}

func TestCore_StaleConnectivityIsForgotten(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := testConfig(t)
	cfg.SidecarPath = filepath.Join(t.TempDir(), "missing")
	cfg.Connectivity.Hosts = []string{refusedTarget(t)}
	cfg.Connectivity.FailureThreshold = 30

	rec := &recorder{}
	c := New(cfg, Options{IconSetter: rec})
	defer c.Close()

	_, err := c.Tray().Init()
	require.NoError(t, err)

	c.Dispatcher().OnEngine(status.EngineStatus{State: status.EngineStarted})
	c.Dispatcher().OnProxy(status.ProxyStatus{State: status.ProxyStarted})
	c.Dispatcher().OnConnectivity(status.ConnectivityLost)
	assert.Equal(t, tray.Yellow, c.Tray().Current())

	c.Dispatcher().OnProxy(status.ProxyStatus{State: status.ProxyIdle})
	_, known := c.Cache().Connectivity()
	assert.False(t, known, "leaving Started drops the last connectivity result")
	assert.Equal(t, tray.Grey, c.Tray().Current())

	c.Dispatcher().OnProxy(status.ProxyStatus{State: status.ProxyStarted})
	assert.Equal(t, tray.Green, c.Tray().Current(), "no stale Lost before the first probe")
}

func TestCore_ProxyNotifications(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	tests := []struct {
		name    string
		enabled bool
		want    []string
	}{
		{
			name:    "enabled",
			enabled: true,
			want:    []string{"Proxy connected", "Proxy error: tun busy", "Proxy connected", "Proxy disconnected"},
		},
		{
			name:    "disabled",
			enabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.SidecarPath = filepath.Join(t.TempDir(), "missing")
			cfg.Connectivity.Hosts = []string{refusedTarget(t)}
			cfg.Connectivity.FailureThreshold = 30
			cfg.ShowNotifications = tt.enabled

			notices := &noticeLog{}
			c := New(cfg, Options{IconSetter: &recorder{}, Notifier: notices.notifier()})
			defer c.Close()

			d := c.Dispatcher()
			d.OnProxy(status.ProxyStatus{State: status.ProxyStarting})
			d.OnProxy(status.ProxyStatus{State: status.ProxyStarted})
			d.OnProxy(status.ProxyStatus{State: status.ProxyStarted})
			d.OnProxy(status.ProxyStatus{State: status.ProxyError, Message: "tun busy"})
			d.OnProxy(status.ProxyStatus{State: status.ProxyIdle})
			d.OnProxy(status.ProxyStatus{State: status.ProxyStarted})
			d.OnProxy(status.ProxyStatus{State: status.ProxyStopping})
			d.OnProxy(status.ProxyStatus{State: status.ProxyIdle})

			if !tt.enabled {
				assert.Never(t, func() bool {
					return len(notices.Messages()) > 0
				}, 200*time.Millisecond, 10*time.Millisecond)
				return
			}

			require.Eventually(t, func() bool {
				return len(notices.Messages()) == len(tt.want)
			}, 3*time.Second, 10*time.Millisecond)
			assert.ElementsMatch(t, tt.want, notices.Messages())
		})
	}
}

func TestCore_EngineLifecycle(t *testing.T) {
	cfg := testConfig(t)
	cfg.SidecarPath = writeSidecar(t)
	cfg.AutoStartCore = true
	cfg.AutoUpdateSubscription = true

	rec := &recorder{}
	c := New(cfg, Options{IconSetter: rec, Exit: rec.exit, ClientIDs: fixedID("client-1")})
	defer c.Close()
	require.True(t, c.HasEngine())

	c.Start()

	require.Eventually(t, func() bool {
		s, ok := c.Cache().Engine()
		return ok && s.State == status.EngineStarted
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		s, ok := c.Cache().Subscription()
		return ok && s.State == status.SubscriptionSucceeded
	}, 5*time.Second, 10*time.Millisecond, "subscription is updated once the engine starts")

	require.NoError(t, c.TestConfig())

	require.NoError(t, c.RunProxy())
	require.Eventually(t, func() bool {
		s, ok := c.Cache().Proxy()
		return ok && s.State == status.ProxyStarted
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, quit.OutcomeBlockedProxyRunning, c.Quit().Request())
	assert.Zero(t, rec.exitCount())

	require.NoError(t, c.StopProxy())
	require.Eventually(t, func() bool {
		s, ok := c.Cache().Proxy()
		return ok && s.State == status.ProxyIdle
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, quit.OutcomeExitAfterShutdown, c.Quit().Request())
	assert.Equal(t, 1, rec.exitCount())

	require.Eventually(t, func() bool {
		s, ok := c.Cache().Engine()
		return ok && s.State == status.EngineIdle
	}, 5*time.Second, 10*time.Millisecond)
}

func TestCore_WatchesSidecar(t *testing.T) {
	cfg := testConfig(t)
	cfg.SidecarPath = writeSidecar(t)
	cfg.AutoStartCore = false
	cfg.WatchSidecar = true

	rec := &recorder{}
	c := New(cfg, Options{IconSetter: rec, WatchSink: rec.sink})

	c.Start()
	require.True(t, c.Watcher().IsRunning())
	assert.ErrorIs(t, c.WatchSidecar(), watch.ErrAlreadyRunning)
	assert.Equal(t, cfg.SidecarPath, c.Watcher().Path())

	require.NoError(t, os.Chmod(cfg.SidecarPath, 0700))
	require.Eventually(t, func() bool {
		return rec.eventCount() > 0
	}, 3*time.Second, 10*time.Millisecond)

	c.Close()
	assert.False(t, c.Watcher().IsRunning())
}
