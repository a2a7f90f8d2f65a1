// Package logging builds the run logger: a slog text handler writing to the
// per-run log file and, when appropriate, to stdout.
package logging

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/term"
)

// StdoutMode controls whether log lines are mirrored to stdout.
type StdoutMode string

const (
	StdoutAuto   StdoutMode = "auto" // only when stdout is a terminal
	StdoutAlways StdoutMode = "always"
	StdoutNever  StdoutMode = "never"
)

// Options configures Setup.
type Options struct {
	Level  string
	File   string // empty = no log file
	Stdout StdoutMode
	// Output replaces stdout, for tests.
	Output io.Writer
	// RunID is attached to every record; generated when empty.
	RunID string
}

// ParseLevel maps debug/info/warn/error to a slog level (default info).
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseStdoutMode validates a stdout mode string.
func ParseStdoutMode(s string) (StdoutMode, error) {
	switch m := StdoutMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", StdoutAuto:
		return StdoutAuto, nil
	case StdoutAlways, StdoutNever:
		return m, nil
	default:
		return "", fmt.Errorf("invalid stdout mode %q (want auto, always or never)", s)
	}
}

// NewRunID returns a fresh ULID.
func NewRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Setup creates the logger. The log file is truncated on every run. The
// returned closer flushes and closes the file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	var (
		writers []io.Writer
		closers multiCloser
	)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}

	if w := stdoutWriter(opts); w != nil {
		writers = append(writers, w)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	logger := slog.New(handler).With("run_id", runID)
	return logger, closers, nil
}

func stdoutWriter(opts Options) io.Writer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	switch opts.Stdout {
	case StdoutNever:
		return nil
	case StdoutAlways:
		return out
	default:
		if opts.Output != nil {
			return out
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return out
		}
		return nil
	}
}
