// Package simulated provides an in-memory platform: a display with a fixed
// mode list and a vendor HDR API with injectable outcomes. Every call is
// recorded so callers can assert on the exact platform traffic.
package simulated

import (
	"sync"

	"github.com/1broseidon/hdrlaunch/internal/platform"
)

// Applied records one ApplyMode call.
type Applied struct {
	Mode    platform.DisplayMode
	Persist bool
}

// Display is a simulated primary monitor.
type Display struct {
	mu sync.Mutex

	current   platform.DisplayMode
	saved     platform.DisplayMode
	available []platform.DisplayMode
	applied   []Applied

	// Result is returned by ApplyMode; anything but success leaves the
	// current mode untouched.
	Result platform.ChangeResult

	CurrentErr error
	SavedErr   error
	ModesErr   error
}

var _ platform.DisplaySettings = (*Display)(nil)

// NewDisplay creates a display in mode current that supports modes.
func NewDisplay(current platform.DisplayMode, modes ...platform.DisplayMode) *Display {
	return &Display{
		current:   current,
		saved:     current,
		available: append([]platform.DisplayMode(nil), modes...),
	}
}

func (d *Display) CurrentMode() (platform.DisplayMode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CurrentErr != nil {
		return platform.DisplayMode{}, d.CurrentErr
	}
	return d.current, nil
}

func (d *Display) SavedMode() (platform.DisplayMode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SavedErr != nil {
		return platform.DisplayMode{}, d.SavedErr
	}
	return d.saved, nil
}

func (d *Display) Modes() ([]platform.DisplayMode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ModesErr != nil {
		return nil, d.ModesErr
	}
	return append([]platform.DisplayMode(nil), d.available...), nil
}

func (d *Display) ApplyMode(mode platform.DisplayMode, persist bool) platform.ChangeResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied = append(d.applied, Applied{Mode: mode, Persist: persist})
	if d.Result != platform.ChangeSuccessful {
		return d.Result
	}

	next := platform.DisplayMode{Width: mode.Width, Height: mode.Height, RefreshHz: mode.RefreshHz}
	if next.RefreshHz == 0 {
		next.RefreshHz = d.current.RefreshHz
	}
	d.current = next
	if persist {
		d.saved = next
	}
	return platform.ChangeSuccessful
}

// Applied returns every ApplyMode call in order.
func (d *Display) Applied() []Applied {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Applied(nil), d.applied...)
}

// SetCurrent replaces the active mode without recording a call.
func (d *Display) SetCurrent(mode platform.DisplayMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = mode
}

// HDRDisplay is one display connected to the simulated GPU.
type HDRDisplay struct {
	ID          platform.DisplayID
	SupportsHDR bool
	// CapStatus fails the capability query for this display.
	CapStatus platform.Status
	// SetStatus is returned by SetHDRColor for this display.
	SetStatus platform.Status
}

// ColorCall records one SetHDRColor call.
type ColorCall struct {
	ID   platform.DisplayID
	Data platform.ColorData
}

// HDR is a simulated vendor HDR API with a single GPU.
type HDR struct {
	mu sync.Mutex

	Displays []HDRDisplay

	OpenStatus  platform.Status
	EnumStatus  platform.Status
	CountStatus platform.Status
	FetchStatus platform.Status
	// NoGPU makes GPU enumeration succeed with zero GPUs.
	NoGPU bool

	opens  int
	closes int
	calls  []ColorCall
	state  map[platform.DisplayID]platform.HDRMode
}

var _ platform.HDRVendor = (*HDR)(nil)

// NewHDR creates a vendor API whose first GPU drives displays.
func NewHDR(displays ...HDRDisplay) *HDR {
	return &HDR{
		Displays: displays,
		state:    make(map[platform.DisplayID]platform.HDRMode),
	}
}

func (h *HDR) Open() (platform.HDRSession, platform.Status) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.OpenStatus.OK() {
		return nil, h.OpenStatus
	}
	h.opens++
	return &session{hdr: h}, platform.StatusOK
}

// Calls returns every SetHDRColor call in order.
func (h *HDR) Calls() []ColorCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ColorCall(nil), h.calls...)
}

// Sessions returns how many sessions were opened and closed.
func (h *HDR) Sessions() (opened, closed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opens, h.closes
}

// Mode returns the HDR mode last accepted by display id.
func (h *HDR) Mode(id platform.DisplayID) platform.HDRMode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state[id]
}

type session struct {
	hdr *HDR
}

func (s *session) Close() platform.Status {
	s.hdr.mu.Lock()
	defer s.hdr.mu.Unlock()
	s.hdr.closes++
	return platform.StatusOK
}

func (s *session) PhysicalGPUs() ([]platform.GPUHandle, platform.Status) {
	s.hdr.mu.Lock()
	defer s.hdr.mu.Unlock()
	if !s.hdr.EnumStatus.OK() {
		return nil, s.hdr.EnumStatus
	}
	if s.hdr.NoGPU {
		return nil, platform.StatusOK
	}
	return []platform.GPUHandle{0x1000}, platform.StatusOK
}

func (s *session) ConnectedDisplayIDs(gpu platform.GPUHandle, buf []platform.DisplayID) (int, platform.Status) {
	s.hdr.mu.Lock()
	defer s.hdr.mu.Unlock()
	if len(buf) == 0 {
		if !s.hdr.CountStatus.OK() {
			return 0, s.hdr.CountStatus
		}
		return len(s.hdr.Displays), platform.StatusOK
	}
	if !s.hdr.FetchStatus.OK() {
		return 0, s.hdr.FetchStatus
	}
	for i := 0; i < len(buf) && i < len(s.hdr.Displays); i++ {
		buf[i] = s.hdr.Displays[i].ID
	}
	return len(s.hdr.Displays), platform.StatusOK
}

func (s *session) HDRCapabilities(id platform.DisplayID) (platform.HDRCapabilities, platform.Status) {
	s.hdr.mu.Lock()
	defer s.hdr.mu.Unlock()
	for _, d := range s.hdr.Displays {
		if d.ID != id {
			continue
		}
		if !d.CapStatus.OK() {
			return platform.HDRCapabilities{}, d.CapStatus
		}
		return platform.HDRCapabilities{SupportsST2084: d.SupportsHDR}, platform.StatusOK
	}
	return platform.HDRCapabilities{}, platform.StatusInvalidArgument
}

func (s *session) SetHDRColor(id platform.DisplayID, data platform.ColorData) platform.Status {
	s.hdr.mu.Lock()
	defer s.hdr.mu.Unlock()
	s.hdr.calls = append(s.hdr.calls, ColorCall{ID: id, Data: data})
	for _, d := range s.hdr.Displays {
		if d.ID != id {
			continue
		}
		if !d.SetStatus.OK() {
			return d.SetStatus
		}
		s.hdr.state[id] = data.Mode
		return platform.StatusOK
	}
	return platform.StatusInvalidArgument
}

// Rig is the default simulated machine: one HDR-capable display, one SDR
// display, and a monitor currently at 2560x1440@60.
func Rig() (*Display, *HDR) {
	display := NewDisplay(
		platform.DisplayMode{Width: 2560, Height: 1440, RefreshHz: 60},
		platform.DisplayMode{Width: 1280, Height: 720, RefreshHz: 60},
		platform.DisplayMode{Width: 1280, Height: 720, RefreshHz: 240},
		platform.DisplayMode{Width: 1920, Height: 1080, RefreshHz: 60},
		platform.DisplayMode{Width: 1920, Height: 1080, RefreshHz: 144},
		platform.DisplayMode{Width: 2560, Height: 1440, RefreshHz: 60},
		platform.DisplayMode{Width: 2560, Height: 1440, RefreshHz: 165},
	)
	hdr := NewHDR(
		HDRDisplay{ID: 0x80061086, SupportsHDR: true},
		HDRDisplay{ID: 0x80061087, SupportsHDR: false},
	)
	return display, hdr
}

// NewBackend wraps a simulated display and HDR API as a platform backend.
func NewBackend(display *Display, hdr *HDR) *platform.Backend {
	var vendor platform.HDRVendor
	if hdr != nil {
		vendor = hdr
	}
	return platform.NewBackend("simulated", display, vendor)
}
