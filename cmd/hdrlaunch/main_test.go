package main

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/hdrlaunch/internal/config"
)

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		w, h    uint16
		wantErr bool
	}{
		{"1920x1080", 1920, 1080, false},
		{" 2560X1440 ", 2560, 1440, false},
		{"1920", 0, 0, true},
		{"0x1080", 0, 0, true},
		{"1920x", 0, 0, true},
		{"70000x1080", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			w, h, err := parseResolution(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestFlagOverlay_OnlySetFlags(t *testing.T) {
	var f runFlags
	fs := newRunFlagSet(&f)
	require.NoError(t, fs.Parse([]string{"--res", "1920x1080", "--toggle-hdr", "--bpc", "10", "--no-wait", "--", "-fullscreen"}))

	overlay, err := flagOverlay(fs, &f)
	require.NoError(t, err)

	o := overlay.Options
	require.NotNil(t, o.ResX)
	assert.Equal(t, uint16(1920), *o.ResX)
	assert.Equal(t, uint16(1080), *o.ResY)
	assert.True(t, *o.ToggleHDR)
	assert.Equal(t, 10, *o.HDRBpc)
	assert.False(t, *o.WaitOnProcess)
	assert.Equal(t, []string{"-fullscreen"}, o.LauncherArgs)
	assert.Nil(t, o.LauncherExe)
	assert.Nil(t, o.EnableHDR)
	assert.Nil(t, overlay.Logging.Level)
}

func TestFlagOverlay_BadResolution(t *testing.T) {
	var f runFlags
	fs := newRunFlagSet(&f)
	require.NoError(t, fs.Parse([]string{"--res", "big"}))

	_, err := flagOverlay(fs, &f)
	assert.Error(t, err)
}

func TestFlagOverlay_BeatsFile(t *testing.T) {
	var f runFlags
	fs := newRunFlagSet(&f)
	require.NoError(t, fs.Parse([]string{"--launcher", "steam", "--log-level", "debug"}))
	overlay, err := flagOverlay(fs, &f)
	require.NoError(t, err)

	res, err := config.Load(t.TempDir(), "", overlay)
	require.NoError(t, err)
	assert.Equal(t, "steam", res.Config.Options.LauncherExe)
	assert.Equal(t, "debug", res.Config.Logging.Level)
	assert.Equal(t, config.SourceFlag, res.Sources["options.launcher_exe"].Kind)
}

func TestOpenBackendSimulated(t *testing.T) {
	backend, err := openBackend(true, "")
	require.NoError(t, err)
	defer backend.Close()
	assert.Equal(t, "simulated", backend.Name)
	assert.NotNil(t, backend.HDR)
}

func TestLogStartupReportsGetwdFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logStartup(logger, func() (string, error) { return "", errors.New("directory removed") })

	out := buf.String()
	assert.Contains(t, out, "failed to get working directory")
	assert.Contains(t, out, "directory removed")
	assert.Contains(t, out, "hdrlaunch starting")
}
