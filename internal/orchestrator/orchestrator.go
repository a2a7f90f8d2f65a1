// Package orchestrator changes the display state around one launched
// application and restores it afterwards.
//
// A run moves through Idle, Applying, Supervising, Restoring and Done.
// Restoring is always entered, even after a launch failure or a recovered
// panic, and only undoes what the apply phase recorded in State.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/1broseidon/hdrlaunch/internal/config"
	"github.com/1broseidon/hdrlaunch/internal/foreground"
	"github.com/1broseidon/hdrlaunch/internal/hdr"
	"github.com/1broseidon/hdrlaunch/internal/inhibit"
	"github.com/1broseidon/hdrlaunch/internal/platform"
	"github.com/1broseidon/hdrlaunch/internal/resolution"
	"github.com/1broseidon/hdrlaunch/internal/supervisor"
)

// Phase is a step of one run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseApplying
	PhaseSupervising
	PhaseRestoring
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApplying:
		return "applying"
	case PhaseSupervising:
		return "supervising"
	case PhaseRestoring:
		return "restoring"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State records what the apply phase changed so teardown can undo exactly
// that.
type State struct {
	// OriginalMode is the display mode read before any change, nil when it
	// could not be read or no resolution was configured.
	OriginalMode *platform.DisplayMode

	HDRRequested bool
	// HDRApplied is set when toggle_hdr turned HDR on; teardown turns it
	// off again.
	HDRApplied bool
	// HDRLeftEnabled is set when enable_hdr turned HDR on. It is never
	// undone.
	HDRLeftEnabled bool
	// ResolutionChanged is set when a mode change was issued against a
	// known snapshot in a waiting run.
	ResolutionChanged bool

	Fatal error
}

// Supervisor launches the application.
type Supervisor interface {
	Spawn(spec supervisor.Spec) error
	Run(spec supervisor.Spec, onLine func(string)) (supervisor.Exit, error)
}

// Deps are the collaborators of a run.
type Deps struct {
	Display    platform.DisplaySettings
	HDR        platform.HDRVendor // nil = no vendor api
	Supervisor Supervisor
	// Window creates the placeholder window; nil disables it.
	Window    foreground.Factory
	Inhibitor inhibit.Inhibitor
	Clock     clockwork.Clock
	Logger    *slog.Logger
	// WorkDir is the working directory of the launched application.
	WorkDir string
}

// Result is the outcome of Run.
type Result struct {
	ExitCode int
	State    State
	// ChildExit is the exit code of a waited-for child, nil otherwise.
	ChildExit *int
	Err       error
}

// Orchestrator performs one run. It is not reusable.
type Orchestrator struct {
	deps   Deps
	cfg    config.Effective
	logger *slog.Logger
	clock  clockwork.Clock

	phase       Phase
	resolution  *resolution.Controller
	hdr         *hdr.Controller
	placeholder *foreground.Placeholder
	release     func()
}

// New creates an orchestrator for cfg.
func New(deps Deps, cfg config.Effective) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		deps:       deps,
		cfg:        cfg,
		logger:     logger,
		clock:      clock,
		resolution: resolution.NewController(deps.Display, logger),
		release:    func() {},
	}
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Run applies the configured display state, supervises the application
// and restores the display state. It blocks until the application exits
// (wait mode), the placeholder window closes or ctx is done (remote desktop
// mode), or the application is spawned (detach mode). ctx never interrupts
// a running child.
func (o *Orchestrator) Run(ctx context.Context) Result {
	st := State{HDRRequested: o.cfg.HDRRequested()}
	start := o.clock.Now()

	res := o.guard(&st, func() Result {
		o.setPhase(PhaseApplying)
		o.apply(&st)

		o.setPhase(PhaseSupervising)
		return o.supervise(ctx)
	})

	o.setPhase(PhaseRestoring)
	o.teardown(&st)

	o.setPhase(PhaseDone)
	res.State = st
	o.logger.Info("run finished",
		"exit_code", res.ExitCode,
		"elapsed", o.clock.Since(start).Round(time.Millisecond).String())
	return res
}

func (o *Orchestrator) setPhase(p Phase) {
	o.logger.Debug("phase", "from", o.phase.String(), "to", p.String())
	o.phase = p
}

// guard runs fn and turns a panic into a fatal result.
func (o *Orchestrator) guard(st *State, fn func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			st.Fatal = fmt.Errorf("panic during %s: %v", o.phase, r)
			o.logger.Error("unexpected failure, restoring display state", "phase", o.phase.String(), "error", st.Fatal)
			res = Result{ExitCode: 1, Err: st.Fatal}
		}
	}()
	return fn()
}

func (o *Orchestrator) apply(st *State) {
	// enable_hdr goes first; it is not tied to the application's lifetime.
	if o.cfg.EnableHDR {
		st.HDRLeftEnabled = o.enableHDR()
	}

	if r := o.cfg.Resolution; r != nil {
		o.applyResolution(st, r)
	}

	if !o.cfg.Wait() {
		return
	}

	if o.cfg.CompatibilityWindow && o.deps.Window != nil {
		o.placeholder = foreground.Start(o.deps.Window, o.logger)
		<-o.placeholder.Ready()
	}

	if o.cfg.ToggleHDR {
		st.HDRApplied = o.enableHDR()
	}
}

func (o *Orchestrator) applyResolution(st *State, r *config.Resolution) {
	snapshot, err := o.deps.Display.SavedMode()
	if err != nil {
		o.logger.Warn("failed to read saved display mode, using current mode", "error", err)
		snapshot, err = o.deps.Display.CurrentMode()
	}
	if err != nil {
		o.logger.Warn("failed to read display mode, it will not be restored", "error", err)
	} else {
		st.OriginalMode = &snapshot
		o.logger.Info("saved original display mode", "mode", snapshot.String())
	}

	out := o.resolution.Apply(resolution.Request{
		Width:         r.Width,
		Height:        r.Height,
		RefreshHz:     r.RefreshHz,
		UseMaxRefresh: r.UseMax,
		Persist:       o.cfg.Wait(),
	})

	if !o.cfg.Wait() {
		if out.Mutated {
			o.logger.Info("display mode left to the detached application")
		}
		return
	}
	st.ResolutionChanged = st.OriginalMode != nil && out.Mutated
}

// enableHDR turns HDR on and reports whether any display accepted it.
func (o *Orchestrator) enableHDR() bool {
	ctrl, err := o.hdrController()
	if err != nil {
		o.logger.Warn("hdr unavailable", "error", err)
		return false
	}
	ok, err := ctrl.SetHDRMode(true, o.cfg.BPC)
	if err != nil {
		o.logger.Warn("some displays rejected hdr", "error", err)
	}
	if !ok {
		o.logger.Warn("failed to enable hdr")
	}
	return ok
}

func (o *Orchestrator) hdrController() (*hdr.Controller, error) {
	if o.hdr != nil {
		return o.hdr, nil
	}
	ctrl, err := hdr.NewController(o.deps.HDR, o.logger)
	if err != nil {
		return nil, err
	}
	o.hdr = ctrl
	return ctrl, nil
}

func (o *Orchestrator) supervise(ctx context.Context) Result {
	if o.cfg.InhibitIdle && o.cfg.Wait() {
		o.release = inhibit.Hold(o.deps.Inhibitor, "running "+o.applicationName(), o.logger)
	}

	switch o.cfg.Mode {
	case config.DetachImmediately:
		return o.detach()
	case config.WaitForChildProcess:
		return o.wait(ctx)
	case config.PumpForegroundWindow:
		return o.pump(ctx)
	default:
		panic(fmt.Sprintf("unknown execution mode %v", o.cfg.Mode))
	}
}

func (o *Orchestrator) applicationName() string {
	if o.cfg.Launcher == "" {
		return "remote desktop session"
	}
	return o.cfg.Launcher
}

func (o *Orchestrator) command() (supervisor.Spec, error) {
	spec, err := supervisor.ResolveCommand(o.cfg.Launcher, o.cfg.LauncherArgs)
	if err != nil {
		return supervisor.Spec{}, err
	}
	spec.Dir = o.deps.WorkDir
	return spec, nil
}

func (o *Orchestrator) detach() Result {
	spec, err := o.command()
	if err != nil {
		o.logger.Error("failed to launch application", "error", err)
		return Result{ExitCode: 1, Err: err}
	}
	o.logger.Info("launching application and detaching", "command", spec.String())
	if err := o.deps.Supervisor.Spawn(spec); err != nil {
		o.logLaunchError(err)
		return Result{ExitCode: 1, Err: err}
	}
	return Result{}
}

func (o *Orchestrator) wait(ctx context.Context) Result {
	spec, err := o.command()
	if err != nil {
		o.logger.Error("failed to launch application", "error", err)
		return Result{ExitCode: 1, Err: err}
	}
	if err := ctx.Err(); err != nil {
		o.logger.Warn("interrupted before launch", "error", err)
		return Result{ExitCode: 1, Err: err}
	}

	o.logger.Info("launching application", "command", spec.String())
	exit, err := o.deps.Supervisor.Run(spec, func(line string) {
		o.logger.Info("subprocess", "line", line)
	})
	if err != nil {
		o.logLaunchError(err)
		return Result{ExitCode: 1, Err: err}
	}

	end := o.clock.Now()
	o.logger.Info("application exited",
		"exit_code", exit.Code,
		"runtime", strings.TrimSpace(humanize.RelTime(end.Add(-exit.Runtime), end, "", "")))
	code := exit.Code
	return Result{ExitCode: code, ChildExit: &code}
}

func (o *Orchestrator) logLaunchError(err error) {
	var le *supervisor.LaunchError
	if errors.As(err, &le) {
		o.logger.Error("failed to launch application", "path", le.Path, "code", le.Code(), "error", le.Err)
		return
	}
	o.logger.Error("application supervision failed", "error", err)
}

func (o *Orchestrator) pump(ctx context.Context) Result {
	if o.placeholder == nil {
		o.logger.Warn("no placeholder window, waiting for interrupt")
		<-ctx.Done()
		return Result{}
	}
	if err := o.placeholder.Err(); err != nil {
		return Result{ExitCode: 1, Err: err}
	}
	o.logger.Info("waiting for the placeholder window to close")
	select {
	case <-o.placeholder.Done():
	case <-ctx.Done():
		o.logger.Info("interrupted, closing placeholder window")
	}
	return Result{}
}

func (o *Orchestrator) teardown(st *State) {
	if st.HDRApplied {
		o.safely("disable hdr", func() {
			ok, err := o.hdr.SetHDRMode(false, o.cfg.BPC)
			if err != nil {
				o.logger.Warn("some displays rejected hdr disable", "error", err)
			}
			if !ok {
				o.logger.Warn("failed to disable hdr")
			}
		})
	}

	if st.ResolutionChanged {
		if o.cfg.RestoreResolution {
			o.safely("restore display mode", func() {
				o.resolution.Restore(*st.OriginalMode)
			})
		} else {
			o.logger.Info("display mode reset disabled, keeping current mode")
		}
	}

	o.safely("close hdr", func() {
		if err := o.hdr.Close(); err != nil {
			o.logger.Warn("failed to release hdr api", "error", err)
		}
	})
	if o.placeholder != nil {
		o.safely("close placeholder window", o.placeholder.Close)
	}
	o.safely("release idle inhibition", o.release)
}

// safely runs one teardown step; a panic is logged and the next step runs.
func (o *Orchestrator) safely(step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("teardown step failed", "step", step, "error", fmt.Sprint(r))
		}
	}()
	fn()
}
