package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/hdrlaunch/internal/logging"
	"github.com/1broseidon/hdrlaunch/internal/probe"
)

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	simulate := fs.Bool("simulate", false, "Use the in-memory display and HDR backend")
	display := fs.String("display", "", "X11 display (default: $DISPLAY)")
	asJSON := fs.Bool("json", false, "Print JSON")
	verbose := fs.Bool("v", false, "Log vendor queries to stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hdrlaunch probe [--simulate] [--display NAME] [--json] [-v]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the current, saved and available display modes and the displays")
		fmt.Fprintln(os.Stderr, "HDR would be toggled on. Nothing is changed.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := stderrLogger(*verbose)
	backend, err := openBackend(*simulate, *display)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer backend.Close()

	report := probe.Collect(backend, logger)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	report.Write(os.Stdout)
	return 0
}

// stderrLogger logs to stderr, keeping stdout free for command output.
func stderrLogger(verbose bool) *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, _, _ := logging.Setup(logging.Options{
		Level:  level,
		Stdout: logging.StdoutAlways,
		Output: os.Stderr,
	})
	return logger
}
