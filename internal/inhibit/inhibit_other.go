//go:build !linux && !windows

package inhibit

// New returns a no-op inhibitor.
func New() Inhibitor {
	return Noop{}
}
