package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hdrlaunch/internal/hdr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Options.WaitOnProcess)
	assert.True(t, cfg.Options.RefreshRateUseMax)
	assert.True(t, cfg.Options.CompatibilityWindow)
	assert.False(t, cfg.Options.ToggleHDR)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	res, err := Load(t.TempDir(), "", RawConfig{})
	require.NoError(t, err)
	assert.Empty(t, res.File)
	assert.Equal(t, DefaultConfig(), res.Config)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hdrlaunch.yaml", `
options:
  launcher_exe: app.exe
  launcher_args: ["--fullscreen"]
  toggle_hdr: true
  hdr_bpc: 10
  res_x: 1920
  res_y: 1080
logging:
  level: debug
`)
	res, err := Load(dir, "", RawConfig{})
	require.NoError(t, err)

	o := res.Config.Options
	assert.Equal(t, "app.exe", o.LauncherExe)
	assert.Equal(t, []string{"--fullscreen"}, o.LauncherArgs)
	assert.True(t, o.ToggleHDR)
	assert.Equal(t, 10, o.HDRBpc)
	assert.Equal(t, uint16(1920), o.ResX)
	assert.True(t, o.WaitOnProcess, "unset keys keep defaults")
	assert.Equal(t, "debug", res.Config.Logging.Level)

	src := res.Sources["options.res_x"]
	assert.Equal(t, SourceFile, src.Kind)
	assert.Equal(t, 7, src.Line)
}

func TestLoad_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hdrlaunch.yaml", "options:\n  unknown_key: 1\n")

	_, err := LoadFromPath(path, RawConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_key")
	assert.Contains(t, err.Error(), "hdrlaunch.yaml")
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hdrlaunch.toml", `
[options]
launcher_exe = "steam"
wait_on_process = false
refresh_rate_use_max = false
res_x = 2560
res_y = 1440
refresh_rate = 165

[logging]
stdout = "never"
`)
	res, err := LoadFromPath(path, RawConfig{})
	require.NoError(t, err)

	o := res.Config.Options
	assert.Equal(t, "steam", o.LauncherExe)
	assert.False(t, o.WaitOnProcess)
	assert.False(t, o.RefreshRateUseMax)
	assert.Equal(t, uint16(165), o.RefreshRate)
	assert.Equal(t, "never", res.Config.Logging.Stdout)
	assert.Equal(t, SourceFile, res.Sources["options.refresh_rate"].Kind)
}

func TestLoad_TOMLUnknownKeyErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hdrlaunch.toml", "[options]\nbogus = 1\n")
	_, err := LoadFromPath(path, RawConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestLoad_INI(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hdrlaunch.ini", `
[options]
launcher_exe=C:/Program Files (x86)/Steam/steam.exe
enable_hdr=true
toggle_hdr=1
hdr_bpc=7
res_x=1920
res_y=1080
remote_desktop=false
`)
	res, err := LoadFromPath(path, RawConfig{})
	require.NoError(t, err)

	o := res.Config.Options
	assert.Equal(t, "C:/Program Files (x86)/Steam/steam.exe", o.LauncherExe)
	assert.True(t, o.EnableHDR)
	assert.True(t, o.ToggleHDR)
	assert.Equal(t, 7, o.HDRBpc)
	assert.Equal(t, uint16(1080), o.ResY)
}

func TestLoad_INIErrors(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "[options]\nfoo=1\n",
		"unknown section": "[graphics]\nres_x=1\n",
		"bad bool":        "[options]\ntoggle_hdr=maybe\n",
		"out of range":    "[options]\nres_x=70000\nres_y=1\n",
		"outside section": "res_x=1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "hdrlaunch.ini", content)
			_, err := LoadFromPath(path, RawConfig{})
			assert.Error(t, err)
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hdrlaunch.json", "{}")
	_, err := LoadFromPath(path, RawConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoad_SearchOrderPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hdrlaunch.ini", "[options]\nlauncher_exe=from-ini\n")
	writeFile(t, dir, "hdrlaunch.yaml", "options:\n  launcher_exe: from-yaml\n")

	res, err := Load(dir, "", RawConfig{})
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", res.Config.Options.LauncherExe)
	assert.True(t, strings.HasSuffix(res.File, "hdrlaunch.yaml"))
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "hdrlaunch.yaml", "options:\n  launcher_exe: from-file\n  hdr_bpc: 8\n")

	flags := RawConfig{Options: &RawOptions{
		LauncherExe: Ptr("from-flag"),
		ToggleHDR:   Ptr(true),
	}}
	res, err := Load(dir, "", flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", res.Config.Options.LauncherExe)
	assert.Equal(t, 8, res.Config.Options.HDRBpc)
	assert.Equal(t, SourceFlag, res.Sources["options.launcher_exe"].Kind)
	assert.Equal(t, SourceFile, res.Sources["options.hdr_bpc"].Kind)
}

func TestLoad_ValidationErrorHasSourceContext(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hdrlaunch.yaml", "logging:\n  level: loud\n")
	_, err := LoadFromPath(path, RawConfig{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "logging.level", verr.Path)
	assert.Contains(t, err.Error(), ":2:")
}

func TestLoad_HalfSetResolutionIsSkipped(t *testing.T) {
	cases := map[string]struct {
		body    string
		warning string
	}{
		"res_x only":        {"[options]\nlauncher_exe=game\nres_x=1920\n", "res_y not set, resolution change skipped"},
		"res_y only":        {"[options]\nlauncher_exe=game\nres_y=1080\n", "res_x not set, resolution change skipped"},
		"refresh_rate only": {"[options]\nlauncher_exe=game\nrefresh_rate=144\n", "refresh_rate ignored without res_x/res_y"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "hdrlaunch.ini", tc.body)
			res, err := LoadFromPath(path, RawConfig{})
			require.NoError(t, err)

			eff, warnings := res.Config.Normalize()
			assert.Nil(t, eff.Resolution)
			assert.Equal(t, "game", eff.Launcher)
			assert.Equal(t, WaitForChildProcess, eff.Mode)
			assert.Contains(t, warnings, tc.warning)
		})
	}
}

func TestNormalize_RefreshRateWithResolution(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options.ResX, cfg.Options.ResY, cfg.Options.RefreshRate = 1920, 1080, 144
	eff, warnings := cfg.Normalize()
	require.NotNil(t, eff.Resolution)
	assert.Equal(t, uint32(144), eff.Resolution.RefreshHz)
	for _, w := range warnings {
		assert.NotContains(t, w, "refresh_rate")
	}
}

func TestNormalize_BPCValidation(t *testing.T) {
	for _, v := range []int{0, 6, 8, 10, 12, 16} {
		cfg := DefaultConfig()
		cfg.Options.HDRBpc = v
		eff, warnings := cfg.Normalize()
		assert.Equal(t, hdr.BitsPerChannel(v), eff.BPC)
		for _, w := range warnings {
			assert.NotContains(t, w, "hdr_bpc")
		}
	}
	for _, v := range []int{7, 255, 300, -1} {
		cfg := DefaultConfig()
		cfg.Options.HDRBpc = v
		eff, warnings := cfg.Normalize()
		assert.Equal(t, hdr.BPCDefault, eff.BPC, "bpc %d", v)
		require.NotEmpty(t, warnings)
		assert.Contains(t, warnings[0], "unsupported hdr_bpc")
	}
}

func TestNormalize_ToggleWinsOverEnable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options.ToggleHDR = true
	cfg.Options.EnableHDR = true

	eff, warnings := cfg.Normalize()
	assert.True(t, eff.ToggleHDR)
	assert.False(t, eff.EnableHDR)
	assert.Contains(t, warnings, "enable_hdr and toggle_hdr both set, using toggle_hdr")
}

func TestNormalize_LauncherOverridesRemoteDesktop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options.LauncherExe = "app.exe"
	cfg.Options.RemoteDesktop = true

	eff, warnings := cfg.Normalize()
	assert.False(t, eff.RemoteDesktop)
	assert.Equal(t, WaitForChildProcess, eff.Mode)
	assert.Len(t, warnings, 1)
}

func TestNormalize_DefaultLauncher(t *testing.T) {
	eff, _ := DefaultConfig().Normalize()
	assert.Equal(t, DefaultLauncher, eff.Launcher)
}

func TestNormalize_RemoteDesktopForcesCompatibilityWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options.RemoteDesktop = true
	cfg.Options.CompatibilityWindow = false

	eff, warnings := cfg.Normalize()
	assert.True(t, eff.CompatibilityWindow)
	assert.Equal(t, PumpForegroundWindow, eff.Mode)
	assert.Empty(t, eff.Launcher)
	assert.Contains(t, warnings, "compatibility_window is required for remote_desktop, enabling it")
}

func TestNormalize_ExecutionMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Options.LauncherExe = "x"
	cfg.Options.WaitOnProcess = false
	cfg.Options.ToggleHDR = true

	eff, warnings := cfg.Normalize()
	assert.Equal(t, DetachImmediately, eff.Mode)
	assert.False(t, eff.Wait())
	assert.False(t, eff.ToggleHDR, "toggle needs a wait")
	assert.NotEmpty(t, warnings)
}

func TestNormalize_Resolution(t *testing.T) {
	cfg := DefaultConfig()
	eff, _ := cfg.Normalize()
	assert.Nil(t, eff.Resolution)
	assert.True(t, eff.RestoreResolution)

	cfg.Options.ResX, cfg.Options.ResY, cfg.Options.RefreshRate = 1920, 1080, 120
	cfg.Options.DisableResetDisplayMode = true
	eff, _ = cfg.Normalize()
	require.NotNil(t, eff.Resolution)
	assert.Equal(t, Resolution{Width: 1920, Height: 1080, RefreshHz: 120, UseMax: true}, *eff.Resolution)
	assert.False(t, eff.RestoreResolution)
}

func TestExplain(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hdrlaunch.yaml", "options:\n  res_x: 1280\n  res_y: 720\n")
	res, err := LoadFromPath(path, RawConfig{})
	require.NoError(t, err)

	val, src, err := Explain(res, "options.res_x")
	require.NoError(t, err)
	assert.Equal(t, uint16(1280), val)
	assert.Equal(t, SourceFile, src.Kind)

	val, src, err = Explain(res, "options.wait_on_process")
	require.NoError(t, err)
	assert.Equal(t, true, val)
	assert.Equal(t, SourceDefault, src.Kind)

	_, _, err = Explain(res, "options.nope")
	assert.Error(t, err)
	_, _, err = Explain(res, "hotkey")
	assert.Error(t, err)

	assert.Contains(t, Keys(), "logging.stdout")
	assert.Contains(t, Keys(), "options.inhibit_idle")
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdrlaunch.yaml")
	cfg := DefaultConfig()
	cfg.Options.LauncherExe = "game"
	require.NoError(t, cfg.Save(path))

	res, err := LoadFromPath(path, RawConfig{})
	require.NoError(t, err)
	assert.Equal(t, cfg, res.Config)
}
