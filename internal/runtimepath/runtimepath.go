// Package runtimepath locates the install directory (where the config lives
// and the launcher runs from) and the state directory (where the log goes).
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "hdrlaunch"

// LogFileName is the name of the per-run log file.
const LogFileName = "hdrlaunch.log"

// Source records where InstallDir found its answer.
type Source string

const (
	SourceEnv        Source = "env"
	SourceRegistry   Source = "registry"
	SourceXDG        Source = "xdg"
	SourceExecutable Source = "executable"
)

// InstallDir returns the install directory. Priority:
// 1) HDRLAUNCH_HOME (if set)
// 2) the platform location (registry on Windows, XDG config dir elsewhere)
// 3) the directory of the running executable
func InstallDir() (string, Source, error) {
	if dir := os.Getenv("HDRLAUNCH_HOME"); dir != "" {
		return dir, SourceEnv, nil
	}
	if dir, src, ok := platformInstallDir(); ok {
		return dir, src, nil
	}
	dir, err := executableDir()
	if err != nil {
		return "", "", err
	}
	return dir, SourceExecutable, nil
}

// StateDir returns the directory for run state and logs, creating it.
// Priority:
// 1) XDG_STATE_HOME/hdrlaunch (if XDG_STATE_HOME is set)
// 2) the platform default (~/.local/state/hdrlaunch, or the executable
// directory on Windows)
func StateDir() (string, error) {
	dir := ""
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		dir = filepath.Join(state, appName)
	} else {
		d, err := platformStateDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}
	return dir, nil
}

// LogPath returns the default log file path.
func LogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LogFileName), nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	return filepath.Dir(exe), nil
}
