// Package status holds the last known state of every external component
// the shell depends on and distributes changes to interested listeners.
//
// The package is organized into the following files:
//
//   - types.go: Status values for the engine, proxy, connectivity and subscription domains
//   - cache.go: Cache, the last-write-wins store with one slot per domain
//   - events.go: Observer and Dispatcher, which write the cache and fan out updates
//   - prober.go: Prober, the connectivity checker that runs while the proxy is up
//
// # Usage
//
//	cache := status.NewCache()
//	dispatcher := status.NewDispatcher(cache)
//	dispatcher.Subscribe(func(topic status.Topic, s status.Status) {
//	    common.LogInfo("%s: %s", topic, s)
//	})
//	dispatcher.OnProxy(status.ProxyStatus{State: status.ProxyStarted})
//
// Slots are independent. A Snapshot reads every slot once but two slots may
// reflect updates that happened at different times.
package status
