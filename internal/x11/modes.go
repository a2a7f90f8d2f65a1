package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Mode is a RandR mode supported by an output.
type Mode struct {
	ID        randr.Mode
	Width     uint16
	Height    uint16
	RefreshHz uint32
}

// Output is the output whose modes the launcher manipulates, together with
// the CRTC currently driving it.
type Output struct {
	ID        randr.Output
	Name      string
	Crtc      randr.Crtc
	Modes     []Mode
	Current   *Mode
	X, Y      int16
	Rotation  uint16
	Timestamp xproto.Timestamp
}

// PrimaryOutput returns the RandR primary output, falling back to the first
// connected output that is driven by a CRTC.
func (c *Connection) PrimaryOutput() (*Output, error) {
	conn := c.XUtil.Conn()

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	infos := make(map[randr.Mode]randr.ModeInfo, len(resources.Modes))
	for _, mi := range resources.Modes {
		infos[randr.Mode(mi.Id)] = mi
	}

	candidates := resources.Outputs
	if primary, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil && primary.Output != 0 {
		candidates = append([]randr.Output{primary.Output}, candidates...)
	}

	for _, id := range candidates {
		info, err := randr.GetOutputInfo(conn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 || len(info.Modes) == 0 {
			continue
		}

		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get crtc info for %s: %w", string(info.Name), err)
		}

		out := &Output{
			ID:        id,
			Name:      string(info.Name),
			Crtc:      info.Crtc,
			X:         crtc.X,
			Y:         crtc.Y,
			Rotation:  crtc.Rotation,
			Timestamp: resources.ConfigTimestamp,
		}
		for _, mid := range info.Modes {
			mi, ok := infos[mid]
			if !ok {
				continue
			}
			m := Mode{ID: mid, Width: mi.Width, Height: mi.Height, RefreshHz: RefreshRate(mi)}
			out.Modes = append(out.Modes, m)
			if mid == crtc.Mode {
				cur := m
				out.Current = &cur
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("no connected output driven by a crtc")
}

// SetMode drives the output's CRTC with mode. The screen is grown first
// when the mode does not fit, and shrunk to the extent of the active CRTCs
// afterwards so a smaller mode does not leave a panning desktop.
func (c *Connection) SetMode(out *Output, mode Mode) (byte, error) {
	conn := c.XUtil.Conn()

	if err := c.ensureScreenSize(out, mode); err != nil {
		return 0, err
	}

	reply, err := randr.SetCrtcConfig(conn, out.Crtc, 0, out.Timestamp,
		out.X, out.Y, mode.ID, out.Rotation, []randr.Output{out.ID}).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to set crtc config: %w", err)
	}
	if reply.Status == randr.SetConfigSuccess {
		if err := c.fitScreenToCrtcs(); err != nil {
			return reply.Status, err
		}
	}
	return reply.Status, nil
}

// rect is the area of the screen a CRTC scans out.
type rect struct {
	X, Y          int
	Width, Height int
}

// screenExtent returns the size of the screen needed to hold every rect.
func screenExtent(rects []rect) (w, h int) {
	for _, r := range rects {
		w = max(w, r.X+r.Width)
		h = max(h, r.Y+r.Height)
	}
	return w, h
}

func (c *Connection) screenSize() (int, int, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return int(geom.Width), int(geom.Height), nil
}

func (c *Connection) ensureScreenSize(out *Output, mode Mode) error {
	curW, curH, err := c.screenSize()
	if err != nil {
		return err
	}
	needW := int(out.X) + int(mode.Width)
	needH := int(out.Y) + int(mode.Height)
	if needW <= curW && needH <= curH {
		return nil
	}
	return c.resizeScreen(max(needW, curW), max(needH, curH))
}

func (c *Connection) fitScreenToCrtcs() error {
	conn := c.XUtil.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, c.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen resources: %w", err)
	}

	var rects []rect
	for _, id := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			return fmt.Errorf("failed to get crtc info: %w", err)
		}
		if info.Mode == 0 {
			continue
		}
		rects = append(rects, rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)})
	}
	w, h := screenExtent(rects)
	if w == 0 || h == 0 {
		return nil
	}

	curW, curH, err := c.screenSize()
	if err != nil {
		return err
	}
	if w >= curW && h >= curH {
		return nil
	}
	return c.resizeScreen(w, h)
}

func (c *Connection) resizeScreen(w, h int) error {
	screen := c.XUtil.Screen()
	mmW := uint32(w) * uint32(screen.WidthInMillimeters) / uint32(max(int(screen.WidthInPixels), 1))
	mmH := uint32(h) * uint32(screen.HeightInMillimeters) / uint32(max(int(screen.HeightInPixels), 1))

	if err := randr.SetScreenSizeChecked(c.XUtil.Conn(), c.Root, uint16(w), uint16(h), mmW, mmH).Check(); err != nil {
		return fmt.Errorf("failed to resize screen to %dx%d: %w", w, h, err)
	}
	return nil
}

// RefreshRate computes the vertical refresh rate of a mode in whole Hz.
func RefreshRate(mi randr.ModeInfo) uint32 {
	vtotal := uint64(mi.Vtotal)
	if mi.ModeFlags&randr.ModeFlagDoubleScan != 0 {
		vtotal *= 2
	}
	if mi.ModeFlags&randr.ModeFlagInterlace != 0 {
		vtotal /= 2
	}
	if mi.Htotal == 0 || vtotal == 0 {
		return 0
	}
	dots := uint64(mi.Htotal) * vtotal
	return uint32((uint64(mi.DotClock) + dots/2) / dots)
}
