package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vburojevic/simlaunch/internal/bundle"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/output"
	"github.com/vburojevic/simlaunch/internal/selector"
	"github.com/vburojevic/simlaunch/internal/simulator"
)

// InstallCmd installs the packaged app on the simulator matching the
// target device and launches it.
type InstallCmd struct {
	Device            string        `short:"d" help:"Target device identifier, overriding the one built in (e.g. 'iPhone 14 (17.0)')"`
	Bundle            string        `short:"b" default:"${config_bundle}" help:"Resource name of the packaged app, without .app"`
	Resources         string        `short:"r" default:"${config_resources}" help:"Directory containing the packaged app (default: the launcher's Resources)"`
	Match             string        `short:"m" default:"${config_match}" enum:"prefix,exact,contains" help:"How the target is matched against simulators"`
	Platform          string        `default:"${config_platform}" help:"Only consider simulators of this platform (empty for all)"`
	Chooser           string        `default:"${config_chooser}" enum:"auto,tui,dialog" help:"How to ask when several simulators match"`
	Alert             string        `default:"${config_alert}" enum:"auto,always,never" help:"How fatal errors are shown before exiting"`
	BootTimeout       time.Duration `default:"${config_boot_timeout}" help:"How long to wait for the simulator to boot"`
	NoOpen            bool          `help:"Don't bring Simulator.app to the front"`
	Console           bool          `help:"Stream the app's stdout/stderr until it exits"`
	TerminateExisting bool          `help:"Terminate a running instance of the app first"`
}

// Run executes the install command
func (c *InstallCmd) Run(globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.run(ctx, globals)
}

func (c *InstallCmd) run(ctx context.Context, globals *Globals) error {
	emitter := output.NewEmitter(globals.Stdout)

	// Packaging is checked before anything touches simctl.
	app, err := resolvePackagedApp(globals, c.Resources, c.Bundle)
	if err != nil {
		return c.fatal(ctx, globals, emitter, nil, err, "PACKAGING_ERROR")
	}
	globals.Debug("Resolved %s (%s)", app.Path, app.Identifier)
	c.outputPackagedApp(globals, emitter, app)

	match, err := selector.MatcherFor(c.Match)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_FLAGS", err.Error())
	}
	chooser, err := globals.chooser(c.Chooser)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_FLAGS", err.Error())
	}

	mgr := globals.manager()
	devices, err := mgr.ListPlatformDevices(ctx, c.Platform)
	if err != nil {
		err = newCLIError("LIST_FAILED", fmt.Errorf("failed to list simulators: %w", err), hintForTooling(err))
		return c.fatal(ctx, globals, emitter, app, err, "LIST_FAILED")
	}

	target := c.target()
	globals.Debug("Matching %d simulator(s) against %q", len(devices), target)

	sel := selector.New(match, chooser)
	outcome, err := sel.Select(ctx, target, devices)
	if err != nil {
		if errors.Is(err, selector.ErrSelectionCanceled) || errors.Is(err, context.Canceled) {
			emitWarning(globals, emitter, "simulator selection canceled, nothing was installed")
			return err
		}
		return c.fatal(ctx, globals, emitter, app, err, "SELECTION_FAILED")
	}
	device := outcome.Device
	c.outputSelection(globals, emitter, outcome, target)

	opts := simulator.LaunchOptions{
		BootTimeout:       c.BootTimeout,
		OpenSimulatorApp:  !c.NoOpen,
		TerminateExisting: c.TerminateExisting,
	}
	if c.Console {
		var mu sync.Mutex
		opts.Console = func(stream, line string) {
			mu.Lock()
			defer mu.Unlock()
			c.outputConsoleLine(globals, emitter, stream, line, app.Identifier)
		}
	}

	if !device.IsBooted() {
		emitInfo(globals, emitter, "Booting "+device.Identifier(), device.Name, device.UDID)
	}
	c.outputInstall(globals, emitter, app, device)

	res, err := mgr.InstallAndLaunch(ctx, app, device, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			emitWarning(globals, emitter, "interrupted before the app was launched")
			return err
		}
		err = newCLIError("INSTALL_FAILED", fmt.Errorf("failed to install %s on %s: %w", app.Identifier, device.Label(), err), hintForTooling(err))
		return c.fatal(ctx, globals, emitter, app, err, "INSTALL_FAILED")
	}

	if c.Console {
		emitInfo(globals, emitter, "App exited", device.Name, device.UDID)
		return nil
	}
	c.outputLaunched(globals, emitter, app, device, res.PID)
	return nil
}

// target is the identifier simulators are matched against.
func (c *InstallCmd) target() string {
	if c.Device != "" {
		return c.Device
	}
	return TargetDevice
}

// fatal reports err, shows the alert and returns err for the exit status.
func (c *InstallCmd) fatal(ctx context.Context, globals *Globals, emitter *output.Emitter, app *domain.PackagedApp, err error, fallbackCode string) error {
	reportError(globals, emitter, err, fallbackCode)

	alerter, aerr := globals.alerter(c.Alert)
	if aerr != nil {
		globals.Debug("alert unavailable: %v", aerr)
		return err
	}
	title := "Unable to launch app"
	if app != nil {
		title = "Unable to launch " + app.Title()
	}
	// The alert must still show when ctx was canceled by a signal.
	if aerr := alerter.Alert(context.WithoutCancel(ctx), title, err.Error()); aerr != nil {
		globals.Debug("alert failed: %v", aerr)
	}
	return err
}

func (c *InstallCmd) outputPackagedApp(globals *Globals, emitter *output.Emitter, app *domain.PackagedApp) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		emitter.PackagedApp(app)
		return
	}
	fmt.Fprintf(globals.Stdout, "%s %s\n", output.Styles.Label.Render("App:"), output.Styles.Value.Render(app.Title()+" ("+app.Identifier+")"))
}

func (c *InstallCmd) outputSelection(globals *Globals, emitter *output.Emitter, outcome selector.Outcome, target string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		emitter.Selection(outcome.Kind.String(), target, outcome.Device, len(outcome.Candidates))
		return
	}
	how := "only match"
	if outcome.Kind == selector.UserSelected {
		how = fmt.Sprintf("chosen from %d matches", len(outcome.Candidates))
	}
	fmt.Fprintf(globals.Stdout, "%s %s %s\n", output.Styles.Label.Render("Simulator:"), output.Styles.Value.Render(outcome.Device.Label()), output.Styles.Muted.Render("("+how+")"))
}

func (c *InstallCmd) outputInstall(globals *Globals, emitter *output.Emitter, app *domain.PackagedApp, device domain.Device) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		emitter.Install(app, device)
		return
	}
	fmt.Fprintf(globals.Stdout, "Installing %s on %s...\n", app.Title(), device.Identifier())
}

// outputLaunched is emitted even in quiet mode; it is the command's result.
func (c *InstallCmd) outputLaunched(globals *Globals, emitter *output.Emitter, app *domain.PackagedApp, device domain.Device, pid int) {
	if globals.Format == "ndjson" {
		emitter.Launched(app.Identifier, device, pid)
		return
	}
	msg := fmt.Sprintf("Launched %s on %s", app.Identifier, device.Identifier())
	if pid > 0 {
		msg += fmt.Sprintf(" (pid %d)", pid)
	}
	fmt.Fprintln(globals.Stdout, output.Styles.Success.Render(msg))
}

func (c *InstallCmd) outputConsoleLine(globals *Globals, emitter *output.Emitter, stream, line, process string) {
	if globals.Format == "ndjson" {
		emitter.Console(stream, line, process)
		return
	}
	if stream == "stderr" {
		fmt.Fprintln(globals.Stderr, line)
		return
	}
	fmt.Fprintln(globals.Stdout, line)
}

// resolvePackagedApp resolves the bundle named name inside resourcesDir,
// defaulting both to the launcher's own Resources/Packaged.app.
func resolvePackagedApp(globals *Globals, resourcesDir, name string) (*domain.PackagedApp, error) {
	if name == "" {
		name = bundle.DefaultName
	}
	if resourcesDir == "" {
		dir, err := bundle.ResourcesDir()
		if err != nil {
			return nil, &bundle.Error{Kind: bundle.BundleNotFound, Path: name + bundle.Extension, Err: err}
		}
		resourcesDir = dir
	}
	return bundle.Resolve(globals.fs(), resourcesDir, name)
}
