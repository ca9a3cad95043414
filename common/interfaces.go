// Package common provides shared constants, types, and utilities
// used across the Leaf VPN shell.
package common

// Notifier defines the interface for sending user notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
	// NotifyWithIcon sends a notification with a custom icon.
	NotifyWithIcon(title, message, icon string) error
}

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(title, message string) error

// Notify calls f(title, message).
func (f NotifierFunc) Notify(title, message string) error {
	return f(title, message)
}

// NotifyWithIcon calls f(title, message); the icon is ignored.
func (f NotifierFunc) NotifyWithIcon(title, message, icon string) error {
	return f(title, message)
}
