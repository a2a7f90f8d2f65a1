//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"

	"github.com/1broseidon/hdrlaunch/internal/x11"
)

// x11Raw identifies the RandR objects behind a snapshot.
type x11Raw struct {
	Mode randr.Mode
	Crtc randr.Crtc
}

// LinuxDisplay drives the primary RandR output.
type LinuxDisplay struct {
	conn *x11.Connection
}

var _ DisplaySettings = (*LinuxDisplay)(nil)

// NewLinuxDisplay creates a display backend from an existing X11 connection.
func NewLinuxDisplay(conn *x11.Connection) *LinuxDisplay {
	return &LinuxDisplay{conn: conn}
}

// NewNative opens the X11 display named by display (empty = $DISPLAY).
// No vendor HDR API is available on X11.
func NewNative(display string) (*Backend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewBackend("x11", NewLinuxDisplay(conn), nil, conn.Close), nil
}

// CurrentMode returns the mode of the primary output.
func (d *LinuxDisplay) CurrentMode() (DisplayMode, error) {
	out, err := d.output()
	if err != nil {
		return DisplayMode{}, err
	}
	if out.Current == nil {
		return DisplayMode{}, fmt.Errorf("output %s has no active mode", out.Name)
	}
	return modeFromX11(*out.Current, out.Crtc), nil
}

// SavedMode returns the current mode; X11 has no remembered configuration.
func (d *LinuxDisplay) SavedMode() (DisplayMode, error) {
	return d.CurrentMode()
}

// Modes lists the modes of the primary output.
func (d *LinuxDisplay) Modes() ([]DisplayMode, error) {
	out, err := d.output()
	if err != nil {
		return nil, err
	}
	modes := make([]DisplayMode, 0, len(out.Modes))
	for _, m := range out.Modes {
		modes = append(modes, modeFromX11(m, out.Crtc))
	}
	return modes, nil
}

// ApplyMode sets the closest matching RandR mode. X11 changes only last for
// the session, so persist has no effect.
func (d *LinuxDisplay) ApplyMode(mode DisplayMode, persist bool) ChangeResult {
	out, err := d.output()
	if err != nil {
		return ChangeFailed
	}

	target, ok := pickX11Mode(out.Modes, mode)
	if !ok {
		return ChangeBadMode
	}

	status, err := d.conn.SetMode(out, target)
	if err != nil {
		return ChangeFailed
	}
	switch status {
	case randr.SetConfigSuccess:
		return ChangeSuccessful
	case randr.SetConfigInvalidConfigTime, randr.SetConfigInvalidTime:
		return ChangeNotUpdated
	default:
		return ChangeFailed
	}
}

func (d *LinuxDisplay) output() (*x11.Output, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("x11 display backend connection is nil")
	}
	return d.conn.PrimaryOutput()
}

func modeFromX11(m x11.Mode, crtc randr.Crtc) DisplayMode {
	return DisplayMode{
		Width:     uint32(m.Width),
		Height:    uint32(m.Height),
		RefreshHz: m.RefreshHz,
		Raw:       x11Raw{Mode: m.ID, Crtc: crtc},
	}
}

// pickX11Mode prefers the exact RandR mode of a snapshot, then the mode with
// matching size whose refresh is closest to the request (highest when the
// request leaves refresh unspecified).
func pickX11Mode(modes []x11.Mode, want DisplayMode) (x11.Mode, bool) {
	if raw, ok := want.Raw.(x11Raw); ok {
		for _, m := range modes {
			if m.ID == raw.Mode {
				return m, true
			}
		}
	}

	var best x11.Mode
	found := false
	for _, m := range modes {
		if uint32(m.Width) != want.Width || uint32(m.Height) != want.Height {
			continue
		}
		if !found {
			best, found = m, true
			continue
		}
		if want.RefreshHz == 0 {
			if m.RefreshHz > best.RefreshHz {
				best = m
			}
			continue
		}
		if absDiff(m.RefreshHz, want.RefreshHz) < absDiff(best.RefreshHz, want.RefreshHz) {
			best = m
		}
	}
	return best, found
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
