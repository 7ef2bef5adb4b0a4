package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"
	"github.com/vburojevic/simlaunch/internal/alert"
	"github.com/vburojevic/simlaunch/internal/config"
	"github.com/vburojevic/simlaunch/internal/dialog"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/logging"
	"github.com/vburojevic/simlaunch/internal/output"
	"github.com/vburojevic/simlaunch/internal/selector"
	"github.com/vburojevic/simlaunch/internal/simulator"
	"go.uber.org/zap"
)

// CLI is the root command structure for simlaunch
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format"`
	Quiet   bool   `short:"q" help:"Suppress info and warning output"`
	Verbose bool   `short:"v" help:"Show debug output (simctl calls, selection details)"`

	// Commands
	Install InstallCmd `cmd:"" default:"withargs" help:"Install and launch the packaged app on a matching simulator"`
	Inspect InspectCmd `cmd:"" help:"Show the packaged app without installing it"`
	List    ListCmd    `cmd:"" help:"List simulators and whether they match the target device"`
	Doctor  DoctorCmd  `cmd:"" help:"Check system requirements and packaging"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage configuration"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Vars returns the kong variables that feed flag defaults from cfg.
func Vars(cfg *config.Config) kong.Vars {
	if cfg == nil {
		cfg = config.Default()
	}
	return kong.Vars{
		"config_format":       cfg.Format,
		"config_bundle":       cfg.Defaults.Bundle,
		"config_resources":    cfg.Defaults.ResourcesDir,
		"config_match":        cfg.Defaults.Match,
		"config_platform":     cfg.Defaults.Platform,
		"config_chooser":      cfg.Defaults.Chooser,
		"config_alert":        cfg.Defaults.Alert,
		"config_boot_timeout": cfg.Defaults.BootTimeout,
	}
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *zap.Logger

	// Collaborators; nil selects the real implementation.
	FS      afero.Fs
	Manager *simulator.Manager
	Chooser selector.Chooser
	Alerter alert.Alerter
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  cli.Format,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}

	// Apply config values if CLI flags weren't explicitly set
	if cfg != nil {
		if !cli.Quiet && cfg.Quiet {
			g.Quiet = cfg.Quiet
		}
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}

	g.Logger = logging.New(g.Stderr, g.Verbose)
	return g
}

// Debug logs a debug message; it is only shown in verbose mode
func (g *Globals) Debug(format string, args ...interface{}) {
	g.logger().Sugar().Debugf(format, args...)
}

func (g *Globals) logger() *zap.Logger {
	if g.Logger == nil {
		g.Logger = logging.New(g.Stderr, g.Verbose)
	}
	return g.Logger
}

func (g *Globals) fs() afero.Fs {
	if g.FS == nil {
		g.FS = afero.NewOsFs()
	}
	return g.FS
}

func (g *Globals) manager() *simulator.Manager {
	if g.Manager == nil {
		g.Manager = simulator.NewManager()
	}
	return g.Manager
}

func (g *Globals) chooser(mode string) (selector.Chooser, error) {
	if g.Chooser != nil {
		return g.Chooser, nil
	}
	return dialog.New(mode)
}

func (g *Globals) alerter(mode string) (alert.Alerter, error) {
	if g.Alerter != nil {
		return g.Alerter, nil
	}
	return alert.New(mode, g.Stderr, dialog.StdinIsTerminal)
}

// Exit statuses besides the taxonomy codes carried by domain.CodedError.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitCanceled = 3
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, selector.ErrSelectionCanceled) || errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	var coded domain.CodedError
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ExitFailure
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteVersion(Version, Commit, TargetDevice)
	}
	target := TargetDevice
	if target == "" {
		target = "any"
	}
	_, err := fmt.Fprintf(globals.Stdout, "simlaunch version %s (%s), target device: %s\n", Version, Commit, target)
	return err
}

// Build information (set at build time via -ldflags -X)
var (
	Version = "dev"
	Commit  = "none"

	// TargetDevice is the device identifier the packaged app is meant for,
	// e.g. "iPhone 14 (17.0)". Empty matches every simulator.
	TargetDevice = ""
)
