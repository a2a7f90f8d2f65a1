// Package config loads launcher options from yaml, toml or ini files and
// normalizes them into the effective settings of one run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options are the launcher settings as configured.
type Options struct {
	LauncherExe             string   `yaml:"launcher_exe" toml:"launcher_exe"`
	LauncherArgs            []string `yaml:"launcher_args" toml:"launcher_args"`
	WaitOnProcess           bool     `yaml:"wait_on_process" toml:"wait_on_process"`
	ToggleHDR               bool     `yaml:"toggle_hdr" toml:"toggle_hdr"`
	EnableHDR               bool     `yaml:"enable_hdr" toml:"enable_hdr"`
	ResX                    uint16   `yaml:"res_x" toml:"res_x"`
	ResY                    uint16   `yaml:"res_y" toml:"res_y"`
	RefreshRate             uint16   `yaml:"refresh_rate" toml:"refresh_rate"`
	RefreshRateUseMax       bool     `yaml:"refresh_rate_use_max" toml:"refresh_rate_use_max"`
	DisableResetDisplayMode bool     `yaml:"disable_reset_display_mode" toml:"disable_reset_display_mode"`
	RemoteDesktop           bool     `yaml:"remote_desktop" toml:"remote_desktop"`
	CompatibilityWindow     bool     `yaml:"compatibility_window" toml:"compatibility_window"`
	HDRBpc                  int      `yaml:"hdr_bpc" toml:"hdr_bpc"`
	InhibitIdle             bool     `yaml:"inhibit_idle" toml:"inhibit_idle"`
}

// LoggingConfig controls the run log.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	File   string `yaml:"file" toml:"file"`     // empty = state dir default
	Stdout string `yaml:"stdout" toml:"stdout"` // auto | always | never
}

// Config is the merged configuration before normalization.
type Config struct {
	Options Options       `yaml:"options" toml:"options"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Options: Options{
			WaitOnProcess:       true,
			RefreshRateUseMax:   true,
			CompatibilityWindow: true,
			InhibitIdle:         true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Stdout: "auto",
		},
	}
}

// Validate rejects settings that cannot be normalized into a usable run.
// Recoverable problems are warnings from Normalize instead.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("invalid level %q", c.Logging.Level)}
	}
	switch c.Logging.Stdout {
	case "", "auto", "always", "never":
	default:
		return &ValidationError{Path: "logging.stdout", Err: fmt.Errorf("invalid stdout mode %q (want auto, always or never)", c.Logging.Stdout)}
	}
	return nil
}

// Save writes the configuration as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
