package engine

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/yllada/leaf-vpn/common"
	"github.com/yllada/leaf-vpn/status"
)

// Command is a request understood by the sidecar.
type Command string

const (
	CmdRunProxy           Command = "run_leaf"
	CmdStopProxy          Command = "stop_leaf"
	CmdReloadProxy        Command = "reload_leaf"
	CmdTestConfig         Command = "test_config"
	CmdUpdateSubscription Command = "update_subscription"
	CmdShutdown           Command = "shutdown"
)

// EncodeCommand renders a command line (without the trailing newline).
func EncodeCommand(cmd Command, args map[string]string) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "command", string(cmd))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out, err = sjson.SetBytes(out, "args."+k, args[k])
		if err != nil {
			return nil, fmt.Errorf("encode %s arg %q: %w", cmd, k, err)
		}
	}
	return out, nil
}

// ParseEvent decodes one status line from the sidecar.
func ParseEvent(line []byte) (status.Status, error) {
	if !gjson.ValidBytes(line) {
		return nil, common.ErrInvalidEvent
	}

	event := gjson.ParseBytes(line)
	if !event.IsObject() {
		return nil, common.ErrInvalidEvent
	}

	domain := event.Get("domain").String()
	kind := event.Get("type").String()
	message := event.Get("data.error").String()

	var (
		s  status.Status
		ok bool
	)
	switch domain {
	case "core":
		s, ok = parseCore(kind, message)
	case "leaf":
		s, ok = parseLeaf(kind, message)
	case "connectivity":
		s, ok = parseConnectivity(kind)
	case "subscription":
		s, ok = parseSubscription(kind, message)
	}
	if !ok {
		return nil, fmt.Errorf("%w: domain %q type %q", common.ErrInvalidEvent, domain, kind)
	}
	return s, nil
}

func parseCore(kind, message string) (status.Status, bool) {
	switch kind {
	case "idle", "stopped":
		return status.EngineStatus{State: status.EngineIdle}, true
	case "starting":
		return status.EngineStatus{State: status.EngineStarting}, true
	case "started":
		return status.EngineStatus{State: status.EngineStarted}, true
	case "error":
		return status.EngineStatus{State: status.EngineError, Message: message}, true
	}
	return nil, false
}

func parseLeaf(kind, message string) (status.Status, bool) {
	switch kind {
	case "idle", "stopped":
		return status.ProxyStatus{State: status.ProxyIdle}, true
	case "starting":
		return status.ProxyStatus{State: status.ProxyStarting}, true
	case "started", "reloaded":
		return status.ProxyStatus{State: status.ProxyStarted}, true
	case "stopping":
		return status.ProxyStatus{State: status.ProxyStopping}, true
	case "error":
		return status.ProxyStatus{State: status.ProxyError, Message: message}, true
	}
	return nil, false
}

func parseConnectivity(kind string) (status.Status, bool) {
	switch kind {
	case "ok", "recovered":
		return status.ConnectivityOk, true
	case "lost":
		return status.ConnectivityLost, true
	}
	return nil, false
}

func parseSubscription(kind, message string) (status.Status, bool) {
	switch kind {
	case "idle", "initial":
		return status.SubscriptionStatus{State: status.SubscriptionIdle}, true
	case "updating", "fetching":
		return status.SubscriptionStatus{State: status.SubscriptionUpdating}, true
	case "success":
		return status.SubscriptionStatus{State: status.SubscriptionSucceeded}, true
	case "error":
		return status.SubscriptionStatus{State: status.SubscriptionFailed, Message: message}, true
	}
	return nil, false
}
