//go:build !linux && !windows

package foreground

import (
	"fmt"
	"runtime"
)

// Native reports that no placeholder window is available.
func Native(string) Factory {
	return func() (Window, error) {
		return nil, fmt.Errorf("placeholder window not supported on %s", runtime.GOOS)
	}
}
