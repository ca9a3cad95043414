package status

import (
	"net"
	"sync"
	"time"

	"github.com/yllada/leaf-vpn/common"
)

// ProbeConfig holds configuration for the connectivity prober.
type ProbeConfig struct {
	// Interval is how often connectivity is checked.
	Interval time.Duration
	// Timeout bounds each dial.
	Timeout time.Duration
	// FailureThreshold is how many consecutive failed checks mark
	// connectivity as lost.
	FailureThreshold int
	// Hosts are dialed in order until one accepts.
	Hosts []string
}

// DefaultProbeConfig returns the default prober configuration.
func DefaultProbeConfig() ProbeConfig {
	hosts := make([]string, len(common.DefaultProbeHosts))
	copy(hosts, common.DefaultProbeHosts)
	return ProbeConfig{
		Interval:         common.ProbeInterval,
		Timeout:          common.ProbeTimeout,
		FailureThreshold: common.ProbeFailureThreshold,
		Hosts:            hosts,
	}
}

// DialFunc opens a connection; it matches net.DialTimeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Prober periodically checks connectivity while the proxy is running and
// reports Ok/Lost transitions to its observer.
type Prober struct {
	mu       sync.RWMutex
	config   ProbeConfig
	observer Observer
	dial     DialFunc
	running  bool
	stopChan chan struct{}

	consecutiveFails int
	last             ConnectivityStatus
	reported         bool
	latency          time.Duration
}

// NewProber creates a prober reporting to observer.
func NewProber(observer Observer, config ProbeConfig) *Prober {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 1
	}
	return &Prober{
		config:   config,
		observer: observer,
		dial:     net.DialTimeout,
		stopChan: make(chan struct{}),
	}
}

// Start begins probing. The first result after Start is always reported.
func (p *Prober) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.consecutiveFails = 0
	p.reported = false
	stop := p.stopChan
	p.mu.Unlock()

	common.LogInfo("Connectivity prober started (interval: %v)", p.config.Interval)

	go p.runLoop(stop)
}

// Stop stops probing. Results of a check still in flight are discarded.
func (p *Prober) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	common.LogInfo("Connectivity prober stopped")
}

// IsRunning returns whether the prober is currently running.
func (p *Prober) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Latency returns the round trip of the last successful dial.
func (p *Prober) Latency() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latency
}

// Follow starts the prober when the proxy reports Started and stops it when
// the proxy leaves that state.
func (p *Prober) Follow(s ProxyStatus) {
	switch s.State {
	case ProxyStarted:
		p.Start()
	case ProxyIdle, ProxyStopping, ProxyError:
		p.Stop()
	}
}

func (p *Prober) runLoop(stop <-chan struct{}) {
	p.check(stop)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.check(stop)
		}
	}
}

// check runs one probe and reports the result if it changed.
func (p *Prober) check(stop <-chan struct{}) {
	latency, err := p.testConnectivity()

	p.mu.Lock()
	select {
	case <-stop:
		p.mu.Unlock()
		return
	default:
	}

	next := p.last
	if err != nil {
		p.consecutiveFails++
		common.LogWarn("Connectivity check failed (attempt %d/%d): %v",
			p.consecutiveFails, p.config.FailureThreshold, err)
		if p.consecutiveFails >= p.config.FailureThreshold {
			next = ConnectivityLost
		} else if !p.reported {
			// Below the threshold nothing is known yet.
			p.mu.Unlock()
			return
		}
	} else {
		p.consecutiveFails = 0
		p.latency = latency
		next = ConnectivityOk
	}

	changed := !p.reported || next != p.last
	p.last = next
	p.reported = true
	p.mu.Unlock()

	if changed && p.observer != nil {
		p.observer.OnConnectivity(next)
	}
}

// testConnectivity dials each host until one succeeds.
func (p *Prober) testConnectivity() (time.Duration, error) {
	for _, host := range p.config.Hosts {
		start := time.Now()
		conn, err := p.dial("tcp", host, p.config.Timeout)
		if err == nil {
			conn.Close()
			return time.Since(start), nil
		}
	}
	return 0, common.ErrUnreachable
}
