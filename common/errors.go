// Package common provides shared constants, types, and utilities
// used across the Leaf VPN shell.
package common

import "errors"

// Sentinel errors shared by the shell packages.
// These can be checked with errors.Is() for proper error handling.
var (
	// Lifecycle errors.
	ErrAlreadyRunning = errors.New("already running")
	ErrNotRunning     = errors.New("not running")
	ErrTimeout        = errors.New("operation timed out")
	ErrUnreachable    = errors.New("no probe host reachable")

	// Window errors.
	ErrWindowNotExist = errors.New("window does not exist")
	ErrWindowClosed   = errors.New("window has been destroyed")

	// Tray errors.
	ErrTrayNotReady = errors.New("tray is not ready")
	ErrIconDecode   = errors.New("failed to decode tray icon")

	// Engine errors.
	ErrSidecarNotFound = errors.New("sidecar binary not found")
	ErrInvalidEvent    = errors.New("invalid sidecar event")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
