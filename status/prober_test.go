package status

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connectivityRecorder struct {
	mu   sync.Mutex
	seen []ConnectivityStatus
}

func (r *connectivityRecorder) OnEngine(EngineStatus)             {}
func (r *connectivityRecorder) OnProxy(ProxyStatus)               {}
func (r *connectivityRecorder) OnSubscription(SubscriptionStatus) {}
func (r *connectivityRecorder) OnConnectivity(s ConnectivityStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, s)
}

func (r *connectivityRecorder) events() []ConnectivityStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ConnectivityStatus, len(r.seen))
	copy(out, r.seen)
	return out
}

// scriptedDial fails while *up is false.
func scriptedDial(up *bool, mu *sync.Mutex) DialFunc {
	return func(network, address string, timeout time.Duration) (net.Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		if !*up {
			return nil, errors.New("unreachable")
		}
		client, server := net.Pipe()
		server.Close()
		return client, nil
	}
}

func newTestProber(rec *connectivityRecorder, threshold int) (*Prober, *bool, *sync.Mutex) {
	up := true
	mu := &sync.Mutex{}
	p := NewProber(rec, ProbeConfig{
		Interval:         time.Hour,
		Timeout:          time.Second,
		FailureThreshold: threshold,
		Hosts:            []string{"probe.invalid:443"},
	})
	p.dial = scriptedDial(&up, mu)
	return p, &up, mu
}

func TestDefaultProbeConfig(t *testing.T) {
	config := DefaultProbeConfig()

	if config.Interval != 10*time.Second {
		t.Errorf("Interval = %v, want 10s", config.Interval)
	}
	if config.FailureThreshold != 2 {
		t.Errorf("FailureThreshold = %v, want 2", config.FailureThreshold)
	}
	if len(config.Hosts) == 0 {
		t.Error("Hosts should not be empty")
	}
}

func TestProber_ReportsOnlyChanges(t *testing.T) {
	rec := &connectivityRecorder{}
	p, up, mu := newTestProber(rec, 2)
	stop := make(chan struct{})

	p.check(stop)
	p.check(stop)
	assert.Equal(t, []ConnectivityStatus{ConnectivityOk}, rec.events(), "first result is reported once")

	mu.Lock()
	*up = false
	mu.Unlock()

	p.check(stop)
	assert.Len(t, rec.events(), 1, "a single failure stays below the threshold")

	p.check(stop)
	p.check(stop)
	assert.Equal(t, []ConnectivityStatus{ConnectivityOk, ConnectivityLost}, rec.events())

	mu.Lock()
	*up = true
	mu.Unlock()

	p.check(stop)
	assert.Equal(t, []ConnectivityStatus{ConnectivityOk, ConnectivityLost, ConnectivityOk}, rec.events())
}

func TestProber_UnknownUntilThreshold(t *testing.T) {
	rec := &connectivityRecorder{}
	p, up, _ := newTestProber(rec, 3)
	*up = false
	stop := make(chan struct{})

	p.check(stop)
	p.check(stop)
	assert.Empty(t, rec.events())

	p.check(stop)
	assert.Equal(t, []ConnectivityStatus{ConnectivityLost}, rec.events())
}

func TestProber_DiscardsResultAfterStop(t *testing.T) {
	rec := &connectivityRecorder{}
	p, _, _ := newTestProber(rec, 1)
	stop := make(chan struct{})
	close(stop)

	p.check(stop)
	assert.Empty(t, rec.events())
}

func TestProber_FollowProxy(t *testing.T) {
	rec := &connectivityRecorder{}
	p, _, _ := newTestProber(rec, 1)

	if p.IsRunning() {
		t.Error("Prober should not be running initially")
	}

	p.Follow(ProxyStatus{State: ProxyStarting})
	assert.False(t, p.IsRunning())

	p.Follow(ProxyStatus{State: ProxyStarted})
	assert.True(t, p.IsRunning())

	require.Eventually(t, func() bool {
		return len(rec.events()) == 1
	}, time.Second, 10*time.Millisecond, "the first check runs immediately")

	p.Follow(ProxyStatus{State: ProxyStarted})
	assert.True(t, p.IsRunning(), "repeated Started keeps the running loop")

	p.Follow(ProxyStatus{State: ProxyError, Message: "crashed"})
	assert.False(t, p.IsRunning())

	p.Stop()
	assert.False(t, p.IsRunning())
}
