package config

// RawOptions mirrors Options with pointers so unset keys can be told apart
// from zero values when layering files and flags.
type RawOptions struct {
	LauncherExe             *string  `yaml:"launcher_exe" toml:"launcher_exe"`
	LauncherArgs            []string `yaml:"launcher_args" toml:"launcher_args"`
	WaitOnProcess           *bool    `yaml:"wait_on_process" toml:"wait_on_process"`
	ToggleHDR               *bool    `yaml:"toggle_hdr" toml:"toggle_hdr"`
	EnableHDR               *bool    `yaml:"enable_hdr" toml:"enable_hdr"`
	ResX                    *uint16  `yaml:"res_x" toml:"res_x"`
	ResY                    *uint16  `yaml:"res_y" toml:"res_y"`
	RefreshRate             *uint16  `yaml:"refresh_rate" toml:"refresh_rate"`
	RefreshRateUseMax       *bool    `yaml:"refresh_rate_use_max" toml:"refresh_rate_use_max"`
	DisableResetDisplayMode *bool    `yaml:"disable_reset_display_mode" toml:"disable_reset_display_mode"`
	RemoteDesktop           *bool    `yaml:"remote_desktop" toml:"remote_desktop"`
	CompatibilityWindow     *bool    `yaml:"compatibility_window" toml:"compatibility_window"`
	HDRBpc                  *int     `yaml:"hdr_bpc" toml:"hdr_bpc"`
	InhibitIdle             *bool    `yaml:"inhibit_idle" toml:"inhibit_idle"`
}

type RawLoggingConfig struct {
	Level  *string `yaml:"level" toml:"level"`
	File   *string `yaml:"file" toml:"file"`
	Stdout *string `yaml:"stdout" toml:"stdout"`
}

type RawConfig struct {
	Options *RawOptions       `yaml:"options" toml:"options"`
	Logging *RawLoggingConfig `yaml:"logging" toml:"logging"`
}

// Merge returns c with every key set in overlay replaced.
func (c RawConfig) Merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Options != nil {
		base := RawOptions{}
		if out.Options != nil {
			base = *out.Options
		}
		merged := mergeRawOptions(base, *overlay.Options)
		out.Options = &merged
	}
	if overlay.Logging != nil {
		base := RawLoggingConfig{}
		if out.Logging != nil {
			base = *out.Logging
		}
		merged := mergeRawLogging(base, *overlay.Logging)
		out.Logging = &merged
	}

	return out
}

func mergeRawOptions(base RawOptions, overlay RawOptions) RawOptions {
	out := base
	if overlay.LauncherExe != nil {
		out.LauncherExe = overlay.LauncherExe
	}
	if overlay.LauncherArgs != nil {
		out.LauncherArgs = append([]string(nil), overlay.LauncherArgs...)
	}
	if overlay.WaitOnProcess != nil {
		out.WaitOnProcess = overlay.WaitOnProcess
	}
	if overlay.ToggleHDR != nil {
		out.ToggleHDR = overlay.ToggleHDR
	}
	if overlay.EnableHDR != nil {
		out.EnableHDR = overlay.EnableHDR
	}
	if overlay.ResX != nil {
		out.ResX = overlay.ResX
	}
	if overlay.ResY != nil {
		out.ResY = overlay.ResY
	}
	if overlay.RefreshRate != nil {
		out.RefreshRate = overlay.RefreshRate
	}
	if overlay.RefreshRateUseMax != nil {
		out.RefreshRateUseMax = overlay.RefreshRateUseMax
	}
	if overlay.DisableResetDisplayMode != nil {
		out.DisableResetDisplayMode = overlay.DisableResetDisplayMode
	}
	if overlay.RemoteDesktop != nil {
		out.RemoteDesktop = overlay.RemoteDesktop
	}
	if overlay.CompatibilityWindow != nil {
		out.CompatibilityWindow = overlay.CompatibilityWindow
	}
	if overlay.HDRBpc != nil {
		out.HDRBpc = overlay.HDRBpc
	}
	if overlay.InhibitIdle != nil {
		out.InhibitIdle = overlay.InhibitIdle
	}
	return out
}

func mergeRawLogging(base RawLoggingConfig, overlay RawLoggingConfig) RawLoggingConfig {
	out := base
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.Stdout != nil {
		out.Stdout = overlay.Stdout
	}
	return out
}

// apply writes every set key onto cfg.
func (c RawConfig) apply(cfg *Config) {
	if o := c.Options; o != nil {
		setIf(&cfg.Options.LauncherExe, o.LauncherExe)
		if o.LauncherArgs != nil {
			cfg.Options.LauncherArgs = append([]string(nil), o.LauncherArgs...)
		}
		setIf(&cfg.Options.WaitOnProcess, o.WaitOnProcess)
		setIf(&cfg.Options.ToggleHDR, o.ToggleHDR)
		setIf(&cfg.Options.EnableHDR, o.EnableHDR)
		setIf(&cfg.Options.ResX, o.ResX)
		setIf(&cfg.Options.ResY, o.ResY)
		setIf(&cfg.Options.RefreshRate, o.RefreshRate)
		setIf(&cfg.Options.RefreshRateUseMax, o.RefreshRateUseMax)
		setIf(&cfg.Options.DisableResetDisplayMode, o.DisableResetDisplayMode)
		setIf(&cfg.Options.RemoteDesktop, o.RemoteDesktop)
		setIf(&cfg.Options.CompatibilityWindow, o.CompatibilityWindow)
		setIf(&cfg.Options.HDRBpc, o.HDRBpc)
		setIf(&cfg.Options.InhibitIdle, o.InhibitIdle)
	}
	if l := c.Logging; l != nil {
		setIf(&cfg.Logging.Level, l.Level)
		setIf(&cfg.Logging.File, l.File)
		setIf(&cfg.Logging.Stdout, l.Stdout)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Ptr returns a pointer to v, for building overlays.
func Ptr[T any](v T) *T {
	return &v
}
