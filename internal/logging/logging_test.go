package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesFileAndOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hdrlaunch.log")
	var out bytes.Buffer

	logger, closer, err := Setup(Options{
		Level:  "debug",
		File:   path,
		Stdout: StdoutAlways,
		Output: &out,
		RunID:  "run-1",
	})
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.Contains(t, string(data), "run_id=run-1")
	assert.Contains(t, out.String(), "k=v")
}

func TestSetupTruncatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdrlaunch.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o600))

	logger, closer, err := Setup(Options{File: path, Stdout: StdoutNever})
	require.NoError(t, err)
	logger.Info("fresh")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "previous run")
	assert.Contains(t, string(data), "fresh")
}

func TestSetupNeverSuppressesOutput(t *testing.T) {
	var out bytes.Buffer
	logger, closer, err := Setup(Options{Stdout: StdoutNever, Output: &out})
	require.NoError(t, err)
	logger.Info("quiet")
	require.NoError(t, closer.Close())
	assert.Empty(t, out.String())
}

func TestSetupLevelFilters(t *testing.T) {
	var out bytes.Buffer
	logger, _, err := Setup(Options{Level: "warn", Stdout: StdoutAlways, Output: &out})
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestParseStdoutMode(t *testing.T) {
	m, err := ParseStdoutMode("")
	require.NoError(t, err)
	assert.Equal(t, StdoutAuto, m)

	m, err = ParseStdoutMode("Always")
	require.NoError(t, err)
	assert.Equal(t, StdoutAlways, m)

	_, err = ParseStdoutMode("sometimes")
	assert.Error(t, err)
}

func TestNewRunIDIsULID(t *testing.T) {
	id := NewRunID()
	_, err := ulid.ParseStrict(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}
