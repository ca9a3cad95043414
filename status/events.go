package status

import (
	"sync"

	"github.com/yllada/leaf-vpn/common"
)

// Topic names an outward status event.
type Topic string

const (
	TopicCore         Topic = "core-event"
	TopicLeaf         Topic = "leaf-event"
	TopicConnectivity Topic = "connectivity-event"
	TopicSubscription Topic = "subscription-event"
)

// Observer receives status transitions from external components,
// one method per domain.
type Observer interface {
	OnEngine(EngineStatus)
	OnProxy(ProxyStatus)
	OnConnectivity(ConnectivityStatus)
	OnSubscription(SubscriptionStatus)
}

// Listener is called after a status has been written to the cache.
type Listener func(topic Topic, s Status)

// Dispatcher implements Observer. Each update is stored in the cache first
// and then passed to every listener on the caller's goroutine.
type Dispatcher struct {
	cache *Cache

	mu        sync.RWMutex
	listeners []Listener
}

// NewDispatcher creates a dispatcher writing into cache.
func NewDispatcher(cache *Cache) *Dispatcher {
	return &Dispatcher{cache: cache}
}

// Cache returns the cache the dispatcher writes to.
func (d *Dispatcher) Cache() *Cache {
	return d.cache
}

// Subscribe registers a listener for every subsequent update.
func (d *Dispatcher) Subscribe(l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	listeners := make([]Listener, len(d.listeners), len(d.listeners)+1)
	copy(listeners, d.listeners)
	d.listeners = append(listeners, l)
}

// Publish stores s and notifies listeners.
func (d *Dispatcher) Publish(s Status) {
	if s == nil {
		return
	}

	common.LogInfo("%s status: %s", s.Domain(), s)
	d.cache.Update(s)

	d.mu.RLock()
	listeners := d.listeners
	d.mu.RUnlock()

	topic := s.Domain().Topic()
	for _, l := range listeners {
		l(topic, s)
	}
}

// OnEngine implements Observer.
func (d *Dispatcher) OnEngine(s EngineStatus) { d.Publish(s) }

// OnProxy implements Observer.
func (d *Dispatcher) OnProxy(s ProxyStatus) { d.Publish(s) }

// OnConnectivity implements Observer.
func (d *Dispatcher) OnConnectivity(s ConnectivityStatus) { d.Publish(s) }

// OnSubscription implements Observer.
func (d *Dispatcher) OnSubscription(s SubscriptionStatus) { d.Publish(s) }
