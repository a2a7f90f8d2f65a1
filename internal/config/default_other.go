//go:build !windows

package config

// DefaultLauncher is started when no launcher is configured. There is no
// conventional launcher outside Windows.
const DefaultLauncher = ""
