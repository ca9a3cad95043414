// Package common provides shared constants, types, and utilities
// used across the Leaf VPN shell.
package common

import (
	"os"
	"os/exec"
	"path/filepath"
)

// GetConfigDir returns the path to the application configuration directory.
// It creates the directory if it doesn't exist.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError(err, "failed to get home directory")
	}

	configDir := filepath.Join(homeDir, ".config", ConfigDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", WrapError(err, "failed to create config directory")
	}

	return configDir, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindSidecar resolves the sidecar binary. An explicit path wins; otherwise
// the directory of the running executable is tried, then $PATH.
func FindSidecar(explicit string) (string, error) {
	if explicit != "" {
		if FileExists(explicit) {
			return explicit, nil
		}
		return "", WrapError(ErrSidecarNotFound, explicit)
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), SidecarFileName)
		if FileExists(candidate) {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(SidecarFileName)
	if err != nil {
		return "", WrapError(ErrSidecarNotFound, SidecarFileName)
	}
	return path, nil
}
