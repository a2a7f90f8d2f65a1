//go:build !windows

package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

func platformInstallDir() (string, Source, bool) {
	if cfg := os.Getenv("XDG_CONFIG_HOME"); cfg != "" {
		return filepath.Join(cfg, appName), SourceXDG, true
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", "", false
	}
	return filepath.Join(home, ".config", appName), SourceXDG, true
}

func platformStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", appName), nil
}
