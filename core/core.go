// Package core wires the status cache, window lifecycle, tray reducer,
// quit sequence and engine adapter into one shell that the desktop and
// terminal front ends share.
package core

import (
	"sync"

	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/config"
	"github.com/yllada/leaf-vpn/engine"
	"github.com/yllada/leaf-vpn/quit"
	"github.com/yllada/leaf-vpn/status"
	"github.com/yllada/leaf-vpn/tray"
	"github.com/yllada/leaf-vpn/watch"
	"github.com/yllada/leaf-vpn/window"
)

// ClientIDSource provides the subscription client identifier.
type ClientIDSource interface {
	ClientID() (string, error)
}

// Options supplies the platform pieces the shell drives.
type Options struct {
	// Finder locates the main window. A nil Finder reports no window.
	Finder window.Finder
	// IconSetter swaps the tray icon.
	IconSetter tray.IconSetter
	// Notifier delivers desktop notifications.
	Notifier common.Notifier
	// Exit terminates the application with a code.
	Exit func(code int)
	// WatchSink receives sidecar file events. Defaults to logging them.
	WatchSink watch.Sink
	// ClientIDs supplies the subscription client identifier.
	ClientIDs ClientIDSource
	// SidecarArgs are passed to the sidecar on start.
	SidecarArgs []string
}

// Core is the assembled shell.
type Core struct {
	config     *config.Config
	cache      *status.Cache
	dispatcher *status.Dispatcher
	window     *window.Coordinator
	tray       *tray.Reducer
	quit       *quit.Coordinator
	watcher    *watch.Bridge
	prober     *status.Prober
	engine     *engine.Sidecar
	clientIDs  ClientIDSource
	notifier   common.Notifier

	updateOnce sync.Once

	mu        sync.Mutex
	lastProxy status.ProxyState
	connected bool
}

// New assembles the shell from cfg. A missing sidecar binary is not fatal:
// the shell runs and reports the engine as unavailable.
func New(cfg *config.Config, opts Options) *Core {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	cache := status.NewCache()
	dispatcher := status.NewDispatcher(cache)

	c := &Core{
		config:     cfg,
		cache:      cache,
		dispatcher: dispatcher,
		clientIDs:  opts.ClientIDs,
		notifier:   opts.Notifier,
		lastProxy:  status.ProxyIdle,
	}

	finder := opts.Finder
	if finder == nil {
		finder = func() (window.Handle, bool) { return nil, false }
	}
	c.window = window.NewCoordinator(finder, window.NewGate(cfg.Window.Debounce()),
		window.WithFocusWorkaround(cfg.Window.FocusWorkaround))

	setter := opts.IconSetter
	if setter == nil {
		setter = tray.IconSetterFunc(func(tray.Icon) error { return common.ErrTrayNotReady })
	}
	c.tray = tray.NewReducer(cache, setter)

	if path, err := common.FindSidecar(cfg.SidecarPath); err != nil {
		common.LogWarn("Engine unavailable: %v", err)
	} else {
		args := append([]string(nil), opts.SidecarArgs...)
		if cfg.Daemonize {
			args = append(args, "--daemonize")
		}
		c.engine = engine.NewSidecar(path, dispatcher, args...)
	}

	var eng quit.Engine
	if c.engine != nil {
		eng = c.engine
	}
	c.quit = quit.NewCoordinator(cache, eng, opts.Notifier, opts.Exit)

	sink := opts.WatchSink
	if sink == nil {
		sink = logWatchEvent
	}
	c.watcher = watch.NewBridge(sink)

	c.prober = status.NewProber(dispatcher, status.ProbeConfig{
		Interval:         cfg.Connectivity.Interval(),
		Timeout:          cfg.Connectivity.Timeout(),
		FailureThreshold: cfg.Connectivity.FailureThreshold,
		Hosts:            cfg.Connectivity.Hosts,
	})

	dispatcher.Subscribe(c.onStatus)
	return c
}

// onStatus runs after every cached update.
func (c *Core) onStatus(topic status.Topic, s status.Status) {
	switch topic {
	case status.TopicLeaf:
		if proxy, ok := s.(status.ProxyStatus); ok {
			c.prober.Follow(proxy)
			// A stale Lost must not tint the next Started.
			if proxy.State != status.ProxyStarted {
				c.cache.Forget(status.DomainConnectivity)
			}
			c.noticeProxy(proxy)
		}
	case status.TopicCore:
		engineStatus, ok := s.(status.EngineStatus)
		if ok && engineStatus.State == status.EngineStarted && c.config.AutoUpdateSubscription {
			c.updateOnce.Do(func() {
				go func() {
					if err := c.UpdateSubscription(); err != nil {
						common.LogWarn("Automatic subscription update failed: %v", err)
					}
				}()
			})
		}
	}

	if _, err := c.tray.Refresh(); err != nil {
		common.LogDebug("Tray icon not updated: %v", err)
	}
}

// noticeProxy shows a desktop notification when the proxy connects,
// disconnects or fails, if notifications are enabled.
func (c *Core) noticeProxy(proxy status.ProxyStatus) {
	c.mu.Lock()
	prev, wasConnected := c.lastProxy, c.connected
	c.lastProxy = proxy.State
	switch proxy.State {
	case status.ProxyStarted:
		c.connected = true
	case status.ProxyIdle, status.ProxyError:
		c.connected = false
	}
	c.mu.Unlock()

	if !c.config.ShowNotifications || c.notifier == nil || prev == proxy.State {
		return
	}

	var message string
	switch proxy.State {
	case status.ProxyStarted:
		message = "Proxy connected"
	case status.ProxyError:
		message = "Proxy error"
		if proxy.Message != "" {
			message += ": " + proxy.Message
		}
	case status.ProxyIdle:
		if !wasConnected {
			return
		}
		message = "Proxy disconnected"
	default:
		return
	}

	go func() {
		if err := c.notifier.Notify(common.AppName, message); err != nil {
			common.LogWarn("Error showing notification: %v", err)
		}
	}()
}

func logWatchEvent(e watch.Event) {
	data, err := e.JSON()
	if err != nil {
		common.LogWarn("Failed to encode %s: %v", watch.EventName, err)
		return
	}
	common.LogInfo("%s %s", watch.EventName, data)
}

// Start performs the configured startup actions.
func (c *Core) Start() {
	if c.config.AutoStartCore {
		if err := c.StartEngine(); err != nil {
			common.LogWarn("Engine auto-start failed: %v", err)
		}
	}

	if c.config.WatchSidecar {
		if err := c.WatchSidecar(); err != nil {
			common.LogWarn("Failed to watch sidecar: %v", err)
		}
	}
}

// WatchSidecar starts forwarding changes to the sidecar binary.
func (c *Core) WatchSidecar() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}
	return c.watcher.Start(c.engine.Path())
}

// Close stops background work. It does not stop the engine; that is the
// quit sequence's job.
func (c *Core) Close() {
	c.prober.Stop()
	if c.watcher.IsRunning() {
		if err := c.watcher.Stop(); err != nil {
			common.LogWarn("Failed to stop watcher: %v", err)
		}
	}
}

// Config returns the configuration the shell was built with.
func (c *Core) Config() *config.Config { return c.config }

// Cache returns the status cache.
func (c *Core) Cache() *status.Cache { return c.cache }

// Dispatcher returns the status dispatcher.
func (c *Core) Dispatcher() *status.Dispatcher { return c.dispatcher }

// Window returns the window coordinator.
func (c *Core) Window() *window.Coordinator { return c.window }

// Tray returns the tray reducer.
func (c *Core) Tray() *tray.Reducer { return c.tray }

// Quit returns the quit coordinator.
func (c *Core) Quit() *quit.Coordinator { return c.quit }

// Watcher returns the sidecar file watcher.
func (c *Core) Watcher() *watch.Bridge { return c.watcher }

// Prober returns the connectivity prober.
func (c *Core) Prober() *status.Prober { return c.prober }

// HasEngine reports whether a sidecar binary was found.
func (c *Core) HasEngine() bool { return c.engine != nil }

// StartEngine launches the sidecar.
func (c *Core) StartEngine() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}
	return c.engine.Start()
}

// RunProxy asks the engine to start the proxy.
func (c *Core) RunProxy() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}
	return c.engine.RunProxy()
}

// StopProxy asks the engine to stop the proxy.
func (c *Core) StopProxy() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}
	return c.engine.StopProxy()
}

// ReloadProxy asks the engine to reload the proxy configuration.
func (c *Core) ReloadProxy() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}
	return c.engine.ReloadProxy()
}

// TestConfig asks the engine to validate the proxy configuration.
func (c *Core) TestConfig() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}
	return c.engine.TestConfig()
}

// UpdateSubscription refreshes the subscription using the stored client ID.
func (c *Core) UpdateSubscription() error {
	if c.engine == nil {
		return common.ErrSidecarNotFound
	}

	var clientID string
	if c.clientIDs != nil {
		id, err := c.clientIDs.ClientID()
		if err != nil {
			common.LogWarn("No subscription client ID: %v", err)
		}
		clientID = id
	}
	return c.engine.UpdateSubscription(clientID)
}
