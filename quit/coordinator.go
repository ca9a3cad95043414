// Package quit decides whether the application may exit and, when the
// engine is still up, shuts it down on the way out.
package quit

import (
	"fmt"

	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/status"
)

// Engine is the part of the engine adapter consulted on quit.
type Engine interface {
	IsEngineRunning() bool
	IsProxyRunning() (bool, error)
	// ShutdownEngine stops the engine asynchronously and reports the
	// final engine status to done.
	ShutdownEngine(done func(status.EngineStatus))
}

// Outcome is the decision taken for a quit request.
type Outcome int

const (
	// OutcomeBlockedStarting: the proxy is still starting; nothing exits.
	OutcomeBlockedStarting Outcome = iota
	// OutcomeBlockedProxyRunning: the user must stop the proxy first.
	OutcomeBlockedProxyRunning
	// OutcomeExitAfterShutdown: engine shutdown was started and the
	// process exited without waiting for it.
	OutcomeExitAfterShutdown
	// OutcomeExit: nothing was running; the process exited.
	OutcomeExit
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeBlockedStarting:
		return "BlockedStarting"
	case OutcomeBlockedProxyRunning:
		return "BlockedProxyRunning"
	case OutcomeExitAfterShutdown:
		return "ExitAfterShutdown"
	case OutcomeExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// Coordinator runs the quit sequence.
type Coordinator struct {
	cache    *status.Cache
	engine   Engine
	notifier common.Notifier
	exit     func(code int)
}

// NewCoordinator creates a quit coordinator. exit is called with the exit
// code once quitting is allowed.
func NewCoordinator(cache *status.Cache, engine Engine, notifier common.Notifier, exit func(code int)) *Coordinator {
	return &Coordinator{
		cache:    cache,
		engine:   engine,
		notifier: notifier,
		exit:     exit,
	}
}

// Request handles a quit request from the tray or the terminal monitor.
func (c *Coordinator) Request() Outcome {
	if proxy, ok := c.cache.Proxy(); ok && proxy.State == status.ProxyStarting {
		common.LogInfo("Quit refused: proxy is starting")
		c.notify(common.MsgQuitWhileStarting)
		return OutcomeBlockedStarting
	}

	engineRunning, proxyRunning := c.running()

	switch {
	case engineRunning && proxyRunning:
		common.LogInfo("Quit refused: proxy is running")
		c.notify(common.MsgQuitWhileProxyActive)
		return OutcomeBlockedProxyRunning

	case engineRunning:
		common.LogInfo("Shutting down engine before exit")
		c.engine.ShutdownEngine(func(s status.EngineStatus) {
			if s.IsError() {
				common.LogError("Engine shutdown failed: %s", s.Message)
				c.notify(fmt.Sprintf(common.MsgShutdownFailed, s.Message))
			}
		})
		c.doExit()
		return OutcomeExitAfterShutdown

	default:
		c.doExit()
		return OutcomeExit
	}
}

// running queries the engine. A failed proxy query falls back to the
// cached proxy status.
func (c *Coordinator) running() (engine, proxy bool) {
	if c.engine == nil {
		return false, false
	}

	engine = c.engine.IsEngineRunning()
	if !engine {
		return false, false
	}

	proxy, err := c.engine.IsProxyRunning()
	if err != nil {
		cached, ok := c.cache.Proxy()
		proxy = ok && cached.IsRunning()
		common.LogWarn("Proxy state query failed, using cached %v: %v", proxy, err)
	}
	return engine, proxy
}

func (c *Coordinator) doExit() {
	common.LogInfo("Exiting %s", common.AppName)
	if c.exit != nil {
		c.exit(0)
	}
}

// notify delivers a message without blocking the caller.
func (c *Coordinator) notify(message string) {
	if c.notifier == nil {
		return
	}
	go func() {
		if err := c.notifier.Notify(common.AppName, message); err != nil {
			common.LogWarn("Failed to send notification: %v", err)
		}
	}()
}
