package ui

import (
	"os/exec"

	"github.com/godbus/dbus/v5"
	"github.com/yllada/leaf-vpn/common"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = "/org/freedesktop/Notifications"
	notifyCall  = notifyDest + ".Notify"
	defaultIcon = "network-vpn"
)

// DesktopNotifier sends notifications over the session bus and falls back
// to notify-send when the bus is unavailable.
type DesktopNotifier struct{}

// NewDesktopNotifier creates a notifier.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

// Notify implements common.Notifier.
func (n *DesktopNotifier) Notify(title, message string) error {
	return n.NotifyWithIcon(title, message, defaultIcon)
}

// NotifyWithIcon implements common.Notifier.
func (n *DesktopNotifier) NotifyWithIcon(title, message, icon string) error {
	if icon == "" {
		icon = defaultIcon
	}
	if err := sendDBus(title, message, icon); err != nil {
		common.LogDebug("D-Bus notification failed, using notify-send: %v", err)
		return sendNotifySend(title, message, icon)
	}
	return nil
}

func sendDBus(title, message, icon string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object(notifyDest, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyCall, 0,
		common.AppName, uint32(0), icon, title, message,
		[]string{}, map[string]dbus.Variant{}, int32(-1))
	return call.Err
}

func sendNotifySend(title, message, icon string) error {
	cmd := exec.Command("notify-send",
		"--app-name="+common.AppName,
		"--icon="+icon,
		title,
		message,
	)
	return cmd.Run()
}
