package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/1broseidon/hdrlaunch/internal/config"
	"github.com/1broseidon/hdrlaunch/internal/foreground"
	"github.com/1broseidon/hdrlaunch/internal/inhibit"
	"github.com/1broseidon/hdrlaunch/internal/logging"
	"github.com/1broseidon/hdrlaunch/internal/orchestrator"
	"github.com/1broseidon/hdrlaunch/internal/platform"
	"github.com/1broseidon/hdrlaunch/internal/platform/simulated"
	"github.com/1broseidon/hdrlaunch/internal/runtimepath"
	"github.com/1broseidon/hdrlaunch/internal/supervisor"
)

type runFlags struct {
	configPath    string
	launcher      string
	res           string
	refresh       uint
	toggleHDR     bool
	enableHDR     bool
	bpc           int
	noWait        bool
	noReset       bool
	remoteDesktop bool
	logLevel      string
	simulate      bool
	display       string
}

func newRunFlagSet(f *runFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&f.configPath, "config", "", "Config file path (default: hdrlaunch.{yaml,yml,toml,ini} in the install directory)")
	fs.StringVar(&f.launcher, "launcher", "", "Application to launch")
	fs.StringVar(&f.res, "res", "", "Target resolution as WIDTHxHEIGHT")
	fs.UintVar(&f.refresh, "refresh", 0, "Target refresh rate in Hz (0 = highest or current)")
	fs.BoolVar(&f.toggleHDR, "toggle-hdr", false, "Enable HDR while the application runs")
	fs.BoolVar(&f.enableHDR, "enable-hdr", false, "Enable HDR and leave it enabled")
	fs.IntVar(&f.bpc, "bpc", 0, "HDR bits per channel: 0 (default), 6, 8, 10, 12 or 16")
	fs.BoolVar(&f.noWait, "no-wait", false, "Launch and detach immediately")
	fs.BoolVar(&f.noReset, "no-reset", false, "Keep the changed display mode after exit")
	fs.BoolVar(&f.remoteDesktop, "remote-desktop", false, "Launch nothing; hold the placeholder window until it is closed")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.BoolVar(&f.simulate, "simulate", false, "Use the in-memory display and HDR backend")
	fs.StringVar(&f.display, "display", "", "X11 display (default: $DISPLAY)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hdrlaunch run [options] [-- launcher args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Change resolution and HDR, run the configured application and")
		fmt.Fprintln(os.Stderr, "restore the display state when it exits.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	return fs
}

// parseResolution parses WIDTHxHEIGHT.
func parseResolution(s string) (uint16, uint16, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid resolution %q (want WIDTHxHEIGHT)", s)
	}
	width, err := strconv.ParseUint(w, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution width %q: %w", w, err)
	}
	height, err := strconv.ParseUint(h, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution height %q: %w", h, err)
	}
	if width == 0 || height == 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	return uint16(width), uint16(height), nil
}

// flagOverlay turns the flags that were given on the command line into a
// config overlay. Unset flags leave file values alone.
func flagOverlay(fs *flag.FlagSet, f *runFlags) (config.RawConfig, error) {
	opts := &config.RawOptions{}
	logCfg := &config.RawLoggingConfig{}
	var err error

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "launcher":
			opts.LauncherExe = config.Ptr(f.launcher)
		case "res":
			w, h, perr := parseResolution(f.res)
			if perr != nil {
				err = perr
				return
			}
			opts.ResX, opts.ResY = &w, &h
		case "refresh":
			if f.refresh > 0xFFFF {
				err = fmt.Errorf("invalid refresh rate %d", f.refresh)
				return
			}
			opts.RefreshRate = config.Ptr(uint16(f.refresh))
		case "toggle-hdr":
			opts.ToggleHDR = config.Ptr(f.toggleHDR)
		case "enable-hdr":
			opts.EnableHDR = config.Ptr(f.enableHDR)
		case "bpc":
			opts.HDRBpc = config.Ptr(f.bpc)
		case "no-wait":
			opts.WaitOnProcess = config.Ptr(!f.noWait)
		case "no-reset":
			opts.DisableResetDisplayMode = config.Ptr(f.noReset)
		case "remote-desktop":
			opts.RemoteDesktop = config.Ptr(f.remoteDesktop)
		case "log-level":
			logCfg.Level = config.Ptr(f.logLevel)
		}
	})
	if err != nil {
		return config.RawConfig{}, err
	}
	if args := fs.Args(); len(args) > 0 {
		opts.LauncherArgs = append([]string(nil), args...)
	}
	return config.RawConfig{Options: opts, Logging: logCfg}, nil
}

func openBackend(simulate bool, display string) (*platform.Backend, error) {
	if simulate {
		return simulated.NewBackend(simulated.Rig()), nil
	}
	return platform.NewNative(display)
}

func logStartup(logger *slog.Logger, getwd func() (string, error)) {
	cwd, err := getwd()
	if err != nil {
		logger.Warn("failed to get working directory", "error", err)
	}
	logger.Info("hdrlaunch starting", "version", version, "args", os.Args, "cwd", cwd)
}

func runLaunch(args []string) int {
	var f runFlags
	fs := newRunFlagSet(&f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	overlay, err := flagOverlay(fs, &f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	installDir, installSrc, err := runtimepath.InstallDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate install directory: %v\n", err)
		return 1
	}

	res, err := config.Load(installDir, f.configPath, overlay)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	eff, warnings := res.Config.Normalize()

	logger, closer, err := setupLogging(eff.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	logStartup(logger, os.Getwd)
	logger.Info("install directory", "path", installDir, "source", string(installSrc))
	if res.File != "" {
		logger.Info("config loaded", "file", res.File)
	} else {
		logger.Info("no config file found, using defaults")
	}
	logEffective(logger, eff)
	for _, w := range warnings {
		logger.Warn(w)
	}

	if err := os.Chdir(installDir); err != nil {
		logger.Warn("failed to change working directory", "path", installDir, "error", err)
	} else {
		logger.Info("changed working directory", "path", installDir)
	}

	backend, err := openBackend(f.simulate, f.display)
	if err != nil {
		logger.Error("failed to open display backend", "error", err)
		return 1
	}
	defer backend.Close()
	logger.Info("display backend ready", "backend", backend.Name, "hdr", backend.HDR != nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("received signal, display state is restored once the application exits", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	clock := clockwork.NewRealClock()
	deps := orchestrator.Deps{
		Display:    backend.Display,
		HDR:        backend.HDR,
		Supervisor: supervisor.New(clock),
		Inhibitor:  inhibit.New(),
		Clock:      clock,
		Logger:     logger,
		WorkDir:    installDir,
	}
	if f.simulate {
		deps.Inhibitor = inhibit.Noop{}
	} else if eff.CompatibilityWindow {
		deps.Window = foreground.Native(f.display)
	}

	result := orchestrator.New(deps, eff).Run(ctx)
	if result.Err != nil {
		logger.Error("run failed", "error", result.Err)
	}
	return result.ExitCode
}

func setupLogging(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	file := cfg.File
	if file == "" {
		path, err := runtimepath.LogPath()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to locate log file: %w", err)
		}
		file = path
	}
	mode, err := logging.ParseStdoutMode(cfg.Stdout)
	if err != nil {
		return nil, nil, err
	}
	return logging.Setup(logging.Options{Level: cfg.Level, File: file, Stdout: mode})
}

func logEffective(logger *slog.Logger, eff config.Effective) {
	attrs := []any{
		"mode", eff.Mode.String(),
		"launcher", eff.Launcher,
		"launcher_args", eff.LauncherArgs,
		"toggle_hdr", eff.ToggleHDR,
		"enable_hdr", eff.EnableHDR,
		"hdr_bpc", uint8(eff.BPC),
		"remote_desktop", eff.RemoteDesktop,
		"compatibility_window", eff.CompatibilityWindow,
		"restore_resolution", eff.RestoreResolution,
		"inhibit_idle", eff.InhibitIdle,
	}
	if r := eff.Resolution; r != nil {
		attrs = append(attrs,
			"res", fmt.Sprintf("%dx%d", r.Width, r.Height),
			"refresh_rate", r.RefreshHz,
			"refresh_rate_use_max", r.UseMax)
	}
	logger.Info("effective options", attrs...)
}
