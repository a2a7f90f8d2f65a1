//go:build windows

package config

// DefaultLauncher is started when no launcher is configured.
const DefaultLauncher = "C:/Program Files (x86)/GOG Galaxy/GalaxyClient.exe"
