// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Leaf VPN shell.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: timeouts, file names, window sizes and user-facing messages
//   - Errors: sentinel errors checked with errors.Is across packages
//   - Interfaces: the Notifier abstraction shared by the GUI and terminal front-ends
//   - Logger: logrus-backed logging with rotated file output
//   - Utils: configuration paths and small file helpers
//
// # Usage
//
//	import "github.com/yllada/leaf-vpn/common"
//
//	common.LogInfo("Proxy status changed to %s", status)
//
//	if errors.Is(err, common.ErrAlreadyRunning) {
//	    // watcher was started twice
//	}
package common
