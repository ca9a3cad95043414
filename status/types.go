package status

import "fmt"

// Domain identifies one slot of the Cache.
type Domain int

const (
	DomainEngine Domain = iota
	DomainProxy
	DomainConnectivity
	DomainSubscription
)

// String returns a human-readable representation of the domain.
func (d Domain) String() string {
	switch d {
	case DomainEngine:
		return "Engine"
	case DomainProxy:
		return "Proxy"
	case DomainConnectivity:
		return "Connectivity"
	case DomainSubscription:
		return "Subscription"
	default:
		return "Unknown"
	}
}

// Topic is the event name under which updates of a domain are published.
func (d Domain) Topic() Topic {
	switch d {
	case DomainEngine:
		return TopicCore
	case DomainProxy:
		return TopicLeaf
	case DomainConnectivity:
		return TopicConnectivity
	default:
		return TopicSubscription
	}
}

// Status is a value stored in one Cache slot.
type Status interface {
	Domain() Domain
	String() string
}

// EngineState is the lifecycle state of the engine core.
type EngineState int

const (
	EngineIdle EngineState = iota
	EngineStarting
	EngineStarted
	EngineError
)

// String returns a human-readable representation of the engine state.
func (s EngineState) String() string {
	switch s {
	case EngineIdle:
		return "Idle"
	case EngineStarting:
		return "Starting"
	case EngineStarted:
		return "Started"
	case EngineError:
		return "Error"
	default:
		return "Unknown"
	}
}

// EngineStatus is the engine slot value. Message is set for EngineError.
type EngineStatus struct {
	State   EngineState
	Message string
}

// Domain implements Status.
func (EngineStatus) Domain() Domain { return DomainEngine }

// IsError reports whether the engine is in the error state.
func (s EngineStatus) IsError() bool { return s.State == EngineError }

func (s EngineStatus) String() string {
	if s.State == EngineError && s.Message != "" {
		return fmt.Sprintf("%s(%s)", s.State, s.Message)
	}
	return s.State.String()
}

// ProxyState is the lifecycle state of the proxy.
type ProxyState int

const (
	ProxyIdle ProxyState = iota
	ProxyStarting
	ProxyStarted
	ProxyStopping
	ProxyError
)

// String returns a human-readable representation of the proxy state.
func (s ProxyState) String() string {
	switch s {
	case ProxyIdle:
		return "Idle"
	case ProxyStarting:
		return "Starting"
	case ProxyStarted:
		return "Started"
	case ProxyStopping:
		return "Stopping"
	case ProxyError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ProxyStatus is the proxy slot value. Message is set for ProxyError.
type ProxyStatus struct {
	State   ProxyState
	Message string
}

// Domain implements Status.
func (ProxyStatus) Domain() Domain { return DomainProxy }

// IsError reports whether the proxy is in the error state.
func (s ProxyStatus) IsError() bool { return s.State == ProxyError }

// IsRunning reports whether the proxy holds the tunnel, which includes
// the window in which it is being stopped.
func (s ProxyStatus) IsRunning() bool {
	return s.State == ProxyStarted || s.State == ProxyStopping
}

func (s ProxyStatus) String() string {
	if s.State == ProxyError && s.Message != "" {
		return fmt.Sprintf("%s(%s)", s.State, s.Message)
	}
	return s.State.String()
}

// ConnectivityStatus is the connectivity slot value.
type ConnectivityStatus int

const (
	ConnectivityOk ConnectivityStatus = iota
	ConnectivityLost
)

// Domain implements Status.
func (ConnectivityStatus) Domain() Domain { return DomainConnectivity }

func (s ConnectivityStatus) String() string {
	switch s {
	case ConnectivityOk:
		return "Ok"
	case ConnectivityLost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// SubscriptionState is the state of the last subscription refresh.
type SubscriptionState int

const (
	SubscriptionIdle SubscriptionState = iota
	SubscriptionUpdating
	SubscriptionSucceeded
	SubscriptionFailed
)

// String returns a human-readable representation of the subscription state.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionIdle:
		return "Idle"
	case SubscriptionUpdating:
		return "Updating"
	case SubscriptionSucceeded:
		return "Succeeded"
	case SubscriptionFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// SubscriptionStatus is the subscription slot value. Message is set for
// SubscriptionFailed.
type SubscriptionStatus struct {
	State   SubscriptionState
	Message string
}

// Domain implements Status.
func (SubscriptionStatus) Domain() Domain { return DomainSubscription }

func (s SubscriptionStatus) String() string {
	if s.State == SubscriptionFailed && s.Message != "" {
		return fmt.Sprintf("%s(%s)", s.State, s.Message)
	}
	return s.State.String()
}
