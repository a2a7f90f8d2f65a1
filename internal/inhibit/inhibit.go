// Package inhibit keeps the session from idling (screensaver, display
// sleep) while the launched application runs.
package inhibit

import "log/slog"

// Inhibitor holds an idle inhibition.
type Inhibitor interface {
	// Inhibit starts inhibiting. Failures are non-fatal to callers.
	Inhibit(reason string) error
	// Release ends the inhibition. Safe to call when not inhibited.
	Release() error
}

// Noop never inhibits.
type Noop struct{}

func (Noop) Inhibit(string) error { return nil }
func (Noop) Release() error       { return nil }

// Hold inhibits idle and returns a release function that logs failures.
// A failed inhibit is logged and yields a no-op release.
func Hold(i Inhibitor, reason string, logger *slog.Logger) func() {
	if i == nil {
		return func() {}
	}
	if err := i.Inhibit(reason); err != nil {
		logger.Warn("failed to inhibit idle", "error", err)
		return func() {}
	}
	logger.Debug("idle inhibited", "reason", reason)
	return func() {
		if err := i.Release(); err != nil {
			logger.Warn("failed to release idle inhibition", "error", err)
			return
		}
		logger.Debug("idle inhibition released")
	}
}
