// Package resolution selects and applies display modes on the primary
// monitor.
package resolution

import (
	"log/slog"

	"github.com/1broseidon/hdrlaunch/internal/platform"
)

// Request is a desired display mode.
type Request struct {
	Width     uint32
	Height    uint32
	RefreshHz uint32 // 0 = unspecified
	// UseMaxRefresh picks the highest refresh available at Width x Height
	// when RefreshHz is 0.
	UseMaxRefresh bool
	// Persist writes the change to the remembered configuration.
	Persist bool
}

// Outcome reports what Apply or Restore did.
type Outcome struct {
	Mode    platform.DisplayMode
	Skipped bool
	Mutated bool
	Result  platform.ChangeResult
}

// OK reports whether the requested mode is now active, either because it
// already was or because the change succeeded.
func (o Outcome) OK() bool {
	return o.Skipped || (o.Mutated && o.Result == platform.ChangeSuccessful)
}

// Controller applies mode changes. Failures are logged, never returned:
// mode changes are advisory.
type Controller struct {
	display platform.DisplaySettings
	logger  *slog.Logger
}

// NewController creates a controller for display.
func NewController(display platform.DisplaySettings, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{display: display, logger: logger}
}

// MaxRefreshRate returns the highest refresh rate among modes matching the
// size exactly, or 0 when none match.
func (c *Controller) MaxRefreshRate(width, height uint32) uint32 {
	modes, err := c.display.Modes()
	if err != nil {
		c.logger.Warn("failed to enumerate display modes", "error", err)
		return 0
	}
	var best uint32
	for _, m := range modes {
		if m.Width == width && m.Height == height && m.RefreshHz > best {
			best = m.RefreshHz
		}
	}
	return best
}

// Apply switches to the requested mode unless it is already active.
func (c *Controller) Apply(req Request) Outcome {
	refresh := req.RefreshHz
	switch {
	case refresh == 0 && req.UseMaxRefresh:
		refresh = c.MaxRefreshRate(req.Width, req.Height)
		c.logger.Info("detected max refresh rate", "width", req.Width, "height", req.Height, "refresh_hz", refresh)
	case refresh != 0 && req.UseMaxRefresh:
		c.logger.Info("refresh rate and use-max both set, using the explicit rate", "refresh_hz", refresh)
	}

	mode := platform.DisplayMode{Width: req.Width, Height: req.Height, RefreshHz: refresh}
	return c.change(mode, req.Persist)
}

// Restore re-applies a snapshot, persisting it.
func (c *Controller) Restore(snapshot platform.DisplayMode) Outcome {
	return c.change(snapshot, true)
}

func (c *Controller) change(mode platform.DisplayMode, persist bool) Outcome {
	out := Outcome{Mode: mode}

	current, err := c.display.CurrentMode()
	if err != nil {
		c.logger.Warn("failed to read current display mode", "error", err)
	} else if matches(current, mode) {
		c.logger.Info("display mode already active", "mode", mode.String())
		out.Skipped = true
		return out
	}

	out.Mutated = true
	out.Result = c.display.ApplyMode(mode, persist)
	if out.Result != platform.ChangeSuccessful {
		c.logger.Warn("display mode change failed",
			"mode", mode.String(),
			"persist", persist,
			"result", int32(out.Result),
			"reason", out.Result.String())
		return out
	}
	c.logger.Info("display mode changed", "mode", mode.String(), "persist", persist)
	return out
}

// matches compares size and, when the target specifies one, refresh.
func matches(current, target platform.DisplayMode) bool {
	if current.Width != target.Width || current.Height != target.Height {
		return false
	}
	return target.RefreshHz == 0 || current.RefreshHz == target.RefreshHz
}
