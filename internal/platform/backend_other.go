//go:build !linux && !windows

package platform

import (
	"fmt"
	"runtime"
)

// NewNative reports that no native backend exists for this OS; use the
// simulated backend instead.
func NewNative(display string) (*Backend, error) {
	return nil, fmt.Errorf("no native display backend for %s", runtime.GOOS)
}
