// Package hdr toggles HDR output through the vendor display-control API.
package hdr

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/hdrlaunch/internal/platform"
)

// Controller owns one vendor session. It must be used from a single
// goroutine.
type Controller struct {
	session platform.HDRSession
	scanner *Scanner
	logger  *slog.Logger
	closed  bool
}

// NewController opens a vendor session. A nil vendor or a failed open is
// reported as a KindUnavailable error.
func NewController(vendor platform.HDRVendor, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if vendor == nil {
		return nil, newError(KindUnavailable, platform.StatusLibraryNotFound, "no vendor hdr api on this platform")
	}
	session, st := vendor.Open()
	if !st.OK() {
		return nil, newError(KindUnavailable, st, "initialize vendor api")
	}
	return &Controller{
		session: session,
		scanner: NewScanner(session, logger),
		logger:  logger,
	}, nil
}

// Displays returns the currently eligible displays.
func (c *Controller) Displays() []platform.DisplayID {
	return c.scanner.Scan()
}

// SetHDRMode enables or disables HDR on every eligible display and reports
// whether at least one display accepted the change. The returned error joins
// the failures of individual displays and never changes the result.
func (c *Controller) SetHDRMode(enabled bool, bpc BitsPerChannel) (bool, error) {
	displays := c.scanner.Scan()
	if len(displays) == 0 {
		c.logger.Warn("no hdr capable displays found", "enabled", enabled)
		return false, nil
	}

	var (
		accepted bool
		errs     []error
	)
	for _, id := range displays {
		desc := MasteringDescriptor{Enabled: enabled, BPC: bpc}
		st := c.session.SetHDRColor(id, desc.ColorData())
		if st.OK() {
			accepted = true
			c.logger.Info("hdr mode set", "display", id, "enabled", enabled, "bpc", uint8(bpc))
			continue
		}
		e := newError(KindApply, st, "set hdr color")
		e.Display = id
		errs = append(errs, e)
	}
	return accepted, errors.Join(errs...)
}

// Close releases the vendor session. It is safe to call more than once.
func (c *Controller) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	if st := c.session.Close(); !st.OK() {
		return newError(KindUnavailable, st, "unload vendor api")
	}
	return nil
}
