// Package probe reads the display state without changing it.
package probe

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/1broseidon/hdrlaunch/internal/hdr"
	"github.com/1broseidon/hdrlaunch/internal/platform"
	"github.com/1broseidon/hdrlaunch/internal/resolution"
)

// Mode is a display mode without backend-specific fields.
type Mode struct {
	Width     uint32 `json:"width"`
	Height    uint32 `json:"height"`
	RefreshHz uint32 `json:"refresh_hz"`
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d@%d", m.Width, m.Height, m.RefreshHz)
}

func fromPlatform(m platform.DisplayMode) Mode {
	return Mode{Width: m.Width, Height: m.Height, RefreshHz: m.RefreshHz}
}

// HDRReport lists the displays HDR would be toggled on.
type HDRReport struct {
	Available bool     `json:"available"`
	Displays  []string `json:"displays"`
	Error     string   `json:"error,omitempty"`
}

// Report is the full probe result.
type Report struct {
	Backend string    `json:"backend"`
	Current *Mode     `json:"current,omitempty"`
	Saved   *Mode     `json:"saved,omitempty"`
	Modes   []Mode    `json:"modes"`
	HDR     HDRReport `json:"hdr"`
	Errors  []string  `json:"errors,omitempty"`
}

// Current returns the active mode.
func Current(display platform.DisplaySettings) (Mode, error) {
	m, err := display.CurrentMode()
	if err != nil {
		return Mode{}, err
	}
	return fromPlatform(m), nil
}

// Saved returns the remembered mode.
func Saved(display platform.DisplaySettings) (Mode, error) {
	m, err := display.SavedMode()
	if err != nil {
		return Mode{}, err
	}
	return fromPlatform(m), nil
}

// Modes lists supported modes, largest first and without duplicates. A
// non-zero width and height restrict the list to that size.
func Modes(display platform.DisplaySettings, width, height uint32) ([]Mode, error) {
	all, err := display.Modes()
	if err != nil {
		return nil, err
	}
	seen := make(map[Mode]bool, len(all))
	out := make([]Mode, 0, len(all))
	for _, m := range all {
		if width != 0 && height != 0 && (m.Width != width || m.Height != height) {
			continue
		}
		mode := fromPlatform(m)
		if seen[mode] {
			continue
		}
		seen[mode] = true
		out = append(out, mode)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.RefreshHz > b.RefreshHz
	})
	return out, nil
}

// MaxRefreshRate returns the refresh rate a use-max run would pick.
func MaxRefreshRate(display platform.DisplaySettings, width, height uint32, logger *slog.Logger) uint32 {
	return resolution.NewController(display, logger).MaxRefreshRate(width, height)
}

// HDRDisplays opens a vendor session, scans and closes it again.
func HDRDisplays(vendor platform.HDRVendor, logger *slog.Logger) HDRReport {
	ctrl, err := hdr.NewController(vendor, logger)
	if err != nil {
		return HDRReport{Error: err.Error()}
	}
	defer ctrl.Close()

	ids := ctrl.Displays()
	report := HDRReport{Available: true, Displays: make([]string, 0, len(ids))}
	for _, id := range ids {
		report.Displays = append(report.Displays, fmt.Sprintf("0x%08x", uint32(id)))
	}
	return report
}

// Collect gathers everything the backend can report.
func Collect(backend *platform.Backend, logger *slog.Logger) Report {
	r := Report{Backend: backend.Name}

	if m, err := Current(backend.Display); err == nil {
		r.Current = &m
	} else {
		r.Errors = append(r.Errors, "current mode: "+err.Error())
	}
	if m, err := Saved(backend.Display); err == nil {
		r.Saved = &m
	} else {
		r.Errors = append(r.Errors, "saved mode: "+err.Error())
	}
	if modes, err := Modes(backend.Display, 0, 0); err == nil {
		r.Modes = modes
	} else {
		r.Errors = append(r.Errors, "modes: "+err.Error())
	}
	r.HDR = HDRDisplays(backend.HDR, logger)
	return r
}

// Write prints the report for humans.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "backend: %s\n", r.Backend)
	if r.Current != nil {
		fmt.Fprintf(w, "current: %s\n", r.Current)
	}
	if r.Saved != nil {
		fmt.Fprintf(w, "saved:   %s\n", r.Saved)
	}
	fmt.Fprintf(w, "modes:   %d\n", len(r.Modes))
	for _, m := range r.Modes {
		fmt.Fprintf(w, "- %s\n", m)
	}
	switch {
	case r.HDR.Error != "":
		fmt.Fprintf(w, "hdr:     unavailable (%s)\n", r.HDR.Error)
	case len(r.HDR.Displays) == 0:
		fmt.Fprintln(w, "hdr:     no capable displays")
	default:
		fmt.Fprintln(w, "hdr:")
		for _, id := range r.HDR.Displays {
			fmt.Fprintf(w, "- %s\n", id)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
}
