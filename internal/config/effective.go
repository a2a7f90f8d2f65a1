package config

import (
	"fmt"

	"github.com/1broseidon/hdrlaunch/internal/hdr"
)

// ExecutionMode is how the launched application is supervised.
type ExecutionMode int

const (
	// WaitForChildProcess launches the application and waits for it.
	WaitForChildProcess ExecutionMode = iota
	// DetachImmediately launches the application and returns.
	DetachImmediately
	// PumpForegroundWindow launches nothing and keeps the placeholder
	// window up until it is closed (remote desktop sessions).
	PumpForegroundWindow
)

func (m ExecutionMode) String() string {
	switch m {
	case WaitForChildProcess:
		return "wait"
	case DetachImmediately:
		return "detach"
	case PumpForegroundWindow:
		return "pump-window"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int(m))
	}
}

// Resolution is a configured display mode target.
type Resolution struct {
	Width     uint32
	Height    uint32
	RefreshHz uint32 // 0 = auto
	UseMax    bool
}

// Effective is the normalized configuration of one run.
type Effective struct {
	Launcher     string
	LauncherArgs []string
	Mode         ExecutionMode

	// Resolution is nil when no target size is configured.
	Resolution        *Resolution
	RestoreResolution bool

	ToggleHDR bool
	EnableHDR bool
	BPC       hdr.BitsPerChannel

	RemoteDesktop       bool
	CompatibilityWindow bool
	InhibitIdle         bool

	Logging LoggingConfig
}

// Wait reports whether the run stays alive until the session ends.
func (e Effective) Wait() bool {
	return e.Mode != DetachImmediately
}

// HDRRequested reports whether any HDR change is configured.
func (e Effective) HDRRequested() bool {
	return e.ToggleHDR || e.EnableHDR
}

// Normalize resolves conflicting options and returns the effective settings
// together with a warning for every adjustment.
func (c *Config) Normalize() (Effective, []string) {
	o := c.Options
	var warnings []string

	bpc, ok := hdr.ParseBitsPerChannel(clampUint8(o.HDRBpc))
	if !ok || o.HDRBpc < 0 || o.HDRBpc > 0xFF {
		warnings = append(warnings, fmt.Sprintf(
			"unsupported hdr_bpc %d (supported: 0 (default), 6, 8, 10, 12, 16), using default", o.HDRBpc))
		bpc = hdr.BPCDefault
	}

	if o.ToggleHDR && o.EnableHDR {
		warnings = append(warnings, "enable_hdr and toggle_hdr both set, using toggle_hdr")
		o.EnableHDR = false
	}

	if o.LauncherExe != "" && o.RemoteDesktop {
		warnings = append(warnings, "remote_desktop and launcher_exe both set, using launcher_exe")
		o.RemoteDesktop = false
	}
	if !o.RemoteDesktop && o.LauncherExe == "" {
		o.LauncherExe = DefaultLauncher
	}
	if o.RemoteDesktop && !o.CompatibilityWindow {
		warnings = append(warnings, "compatibility_window is required for remote_desktop, enabling it")
		o.CompatibilityWindow = true
	}

	eff := Effective{
		Launcher:            o.LauncherExe,
		LauncherArgs:        append([]string(nil), o.LauncherArgs...),
		Mode:                selectMode(o),
		RestoreResolution:   !o.DisableResetDisplayMode,
		ToggleHDR:           o.ToggleHDR,
		EnableHDR:           o.EnableHDR,
		BPC:                 bpc,
		RemoteDesktop:       o.RemoteDesktop,
		CompatibilityWindow: o.CompatibilityWindow,
		InhibitIdle:         o.InhibitIdle,
		Logging:             c.Logging,
	}
	switch {
	case o.ResX != 0 && o.ResY == 0:
		warnings = append(warnings, "res_y not set, resolution change skipped")
	case o.ResX == 0 && o.ResY != 0:
		warnings = append(warnings, "res_x not set, resolution change skipped")
	case o.ResX == 0 && o.RefreshRate != 0:
		warnings = append(warnings, "refresh_rate ignored without res_x/res_y")
	}
	if o.ResX != 0 && o.ResY != 0 {
		eff.Resolution = &Resolution{
			Width:     uint32(o.ResX),
			Height:    uint32(o.ResY),
			RefreshHz: uint32(o.RefreshRate),
			UseMax:    o.RefreshRateUseMax,
		}
	}
	if eff.Mode == DetachImmediately && o.ToggleHDR {
		warnings = append(warnings, "toggle_hdr has no effect without wait_on_process, ignoring it")
		eff.ToggleHDR = false
	}
	return eff, warnings
}

func selectMode(o Options) ExecutionMode {
	switch {
	case !o.WaitOnProcess:
		return DetachImmediately
	case o.RemoteDesktop:
		return PumpForegroundWindow
	default:
		return WaitForChildProcess
	}
}

func clampUint8(v int) uint8 {
	if v < 0 || v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}
