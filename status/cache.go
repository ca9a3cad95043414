package status

import "sync"

// slot is a single optional value guarded by its own lock.
type slot[T any] struct {
	mu    sync.RWMutex
	value T
	known bool
}

func (s *slot[T]) store(v T) {
	s.mu.Lock()
	s.value = v
	s.known = true
	s.mu.Unlock()
}

func (s *slot[T]) clear() {
	s.mu.Lock()
	var zero T
	s.value = zero
	s.known = false
	s.mu.Unlock()
}

func (s *slot[T]) load() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.known
}

// Cache is the process-wide store of the last observed status per domain.
// Every slot starts unknown and is replaced wholesale on update.
type Cache struct {
	engine       slot[EngineStatus]
	proxy        slot[ProxyStatus]
	connectivity slot[ConnectivityStatus]
	subscription slot[SubscriptionStatus]
}

// NewCache creates a cache with every slot unknown.
func NewCache() *Cache {
	return &Cache{}
}

// Update overwrites the slot for s.Domain(). A nil status is ignored.
func (c *Cache) Update(s Status) {
	switch v := s.(type) {
	case EngineStatus:
		c.engine.store(v)
	case ProxyStatus:
		c.proxy.store(v)
	case ConnectivityStatus:
		c.connectivity.store(v)
	case SubscriptionStatus:
		c.subscription.store(v)
	}
}

// Forget returns the slot for d to unknown.
func (c *Cache) Forget(d Domain) {
	switch d {
	case DomainEngine:
		c.engine.clear()
	case DomainProxy:
		c.proxy.clear()
	case DomainConnectivity:
		c.connectivity.clear()
	case DomainSubscription:
		c.subscription.clear()
	}
}

// Read returns the latest value for a domain, or false if it was never set.
func (c *Cache) Read(d Domain) (Status, bool) {
	var (
		s  Status
		ok bool
	)
	switch d {
	case DomainEngine:
		s, ok = c.engine.load()
	case DomainProxy:
		s, ok = c.proxy.load()
	case DomainConnectivity:
		s, ok = c.connectivity.load()
	case DomainSubscription:
		s, ok = c.subscription.load()
	}
	if !ok {
		return nil, false
	}
	return s, true
}

// Engine returns the engine slot.
func (c *Cache) Engine() (EngineStatus, bool) { return c.engine.load() }

// Proxy returns the proxy slot.
func (c *Cache) Proxy() (ProxyStatus, bool) { return c.proxy.load() }

// Connectivity returns the connectivity slot.
func (c *Cache) Connectivity() (ConnectivityStatus, bool) { return c.connectivity.load() }

// Subscription returns the subscription slot.
func (c *Cache) Subscription() (SubscriptionStatus, bool) { return c.subscription.load() }

// Snapshot is a point-in-time copy of every slot. A nil field is unknown.
type Snapshot struct {
	Engine       *EngineStatus
	Proxy        *ProxyStatus
	Connectivity *ConnectivityStatus
	Subscription *SubscriptionStatus
}

func (s *slot[T]) ptr() *T {
	v, ok := s.load()
	if !ok {
		return nil
	}
	return &v
}

// Snapshot reads every slot once. Slots are not read atomically as a group.
func (c *Cache) Snapshot() Snapshot {
	return Snapshot{
		Engine:       c.engine.ptr(),
		Proxy:        c.proxy.ptr(),
		Connectivity: c.connectivity.ptr(),
		Subscription: c.subscription.ptr(),
	}
}
