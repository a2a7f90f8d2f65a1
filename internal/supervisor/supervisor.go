// Package supervisor launches the target application, either detached or
// supervised with its output streamed line by line.
package supervisor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
)

// Spec describes the process to launch.
type Spec struct {
	Path string
	Args []string
	Dir  string
	Env  []string // nil = inherit
}

func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Path
	}
	return fmt.Sprintf("%s %q", s.Path, s.Args)
}

// LaunchError means the process could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %q: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Code returns the OS error number behind the failure, or 0.
func (e *LaunchError) Code() int {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return int(errno)
	}
	return 0
}

// Exit is the result of a supervised run.
type Exit struct {
	Code    int
	Runtime time.Duration
}

// DefaultOutputGrace is how long Run keeps reading output after the child
// exits. Processes the child left behind may hold its stdout open forever.
const DefaultOutputGrace = 2 * time.Second

// Supervisor starts processes. The zero value is not usable; use New.
type Supervisor struct {
	clock clockwork.Clock

	// OutputGrace bounds the wait for the output pipe to close once the
	// child has exited.
	OutputGrace time.Duration
}

// New creates a supervisor that measures runtime with clock (nil = real).
func New(clock clockwork.Clock) *Supervisor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Supervisor{clock: clock, OutputGrace: DefaultOutputGrace}
}

func (s *Supervisor) command(spec Spec) *exec.Cmd {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	return cmd
}

// Spawn starts the process and returns without waiting for it.
func (s *Supervisor) Spawn(spec Spec) error {
	cmd := s.command(spec)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return &LaunchError{Path: spec.Path, Err: err}
	}
	// Reap in the background; the child outlives nothing we own.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Run starts the process, calls onLine for every non-empty line the child
// writes to stdout or stderr, and waits for it to exit. Lines are delivered
// on the calling goroutine in the order they arrive.
func (s *Supervisor) Run(spec Spec, onLine func(string)) (Exit, error) {
	cmd := s.command(spec)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.WaitDelay = s.OutputGrace

	start := s.clock.Now()
	if err := cmd.Start(); err != nil {
		pw.Close()
		pr.Close()
		return Exit{Code: -1}, &LaunchError{Path: spec.Path, Err: err}
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" && onLine != nil {
			onLine(line)
		}
	}
	if scanner.Err() != nil {
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
	}

	err := <-waitErr
	exit := Exit{Runtime: s.clock.Since(start)}

	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.Is(err, exec.ErrWaitDelay):
		// ErrWaitDelay: the child exited cleanly but left its output open.
		exit.Code = 0
	case errors.As(err, &exitErr):
		exit.Code = exitErr.ExitCode()
	default:
		exit.Code = -1
		return exit, fmt.Errorf("waiting for %q: %w", spec.Path, err)
	}
	return exit, nil
}

// ResolveCommand turns a configured launcher into a Spec. An existing file
// path is used as-is (paths may contain spaces); anything else is split like
// a shell command line. args are appended either way.
func ResolveCommand(launcher string, args []string) (Spec, error) {
	if launcher == "" {
		return Spec{}, errors.New("no launcher configured")
	}
	if info, err := os.Stat(launcher); err == nil && !info.IsDir() {
		return Spec{Path: launcher, Args: append([]string(nil), args...)}, nil
	}
	argv, err := splitCommand(launcher)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid launcher %q: %w", launcher, err)
	}
	if len(argv) == 0 {
		return Spec{}, errors.New("no launcher configured")
	}
	return Spec{Path: argv[0], Args: append(argv[1:], args...)}, nil
}

// Backslashes are path separators on Windows, not escapes.
var escapeBackslash = runtime.GOOS != "windows"

// splitCommand splits a shell-like command string into arguments,
// respecting single and double quotes and backslash escapes.
func splitCommand(s string) ([]string, error) {
	var out []string
	var buf []rune
	inSingle, inDouble, escaped, quoted := false, false, false, false

	flush := func() {
		if len(buf) == 0 && !quoted {
			return
		}
		out = append(out, string(buf))
		buf = buf[:0]
		quoted = false
	}

	for _, r := range s {
		if escaped {
			buf = append(buf, r)
			escaped = false
			continue
		}
		if !inSingle && r == '\\' && escapeBackslash {
			escaped = true
			continue
		}
		if !inDouble && r == '\'' {
			inSingle = !inSingle
			quoted = true
			continue
		}
		if !inSingle && r == '"' {
			inDouble = !inDouble
			quoted = true
			continue
		}
		if !inSingle && !inDouble && (r == ' ' || r == '\t' || r == '\n' || r == '\r') {
			flush()
			continue
		}
		buf = append(buf, r)
	}

	if escaped {
		return nil, errors.New("unfinished escape")
	}
	if inSingle || inDouble {
		return nil, errors.New("unterminated quote")
	}
	flush()
	return out, nil
}
