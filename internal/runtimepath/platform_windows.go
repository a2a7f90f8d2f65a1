//go:build windows

package runtimepath

import (
	"golang.org/x/sys/windows/registry"
)

// RegistryKey holds the install location written by the installer.
const RegistryKey = `SOFTWARE\hdrlaunch`

func platformInstallDir() (string, Source, bool) {
	key, err := registry.OpenKey(registry.CURRENT_USER, RegistryKey, registry.QUERY_VALUE)
	if err != nil {
		return "", "", false
	}
	defer key.Close()

	dir, _, err := key.GetStringValue("destination_folder")
	if err != nil || dir == "" {
		return "", "", false
	}
	return dir, SourceRegistry, true
}

// Logs live next to the executable, like the installer lays them out.
func platformStateDir() (string, error) {
	return executableDir()
}
