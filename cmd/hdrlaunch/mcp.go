package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/hdrlaunch/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hdrlaunch mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP diagnostics server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'hdrlaunch mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: hdrlaunch mcp serve [--simulate] [--display NAME] [--path CONFIG]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the read-only diagnostics server on stdio. Tools:")
		fmt.Fprintln(os.Stdout, "current_display_mode, list_display_modes, list_hdr_displays, explain_config.")
		return 0
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	simulate := fs.Bool("simulate", false, "Use the in-memory display and HDR backend")
	display := fs.String("display", "", "X11 display (default: $DISPLAY)")
	path := fs.String("path", "", "Config file path (default: search the install directory)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := stderrLogger(false)

	res, err := loadConfigForCommand(*path)
	if err != nil {
		logger.Warn("config unavailable, explain_config disabled", "error", err)
		res = nil
	}

	backend, err := openBackend(*simulate, *display)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open display backend: %v\n", err)
		return 1
	}
	defer backend.Close()

	server := mcp.NewServer(backend, res, version, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
