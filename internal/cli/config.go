package cli

import (
	"fmt"

	"github.com/vburojevic/simlaunch/internal/config"
	"github.com/vburojevic/simlaunch/internal/output"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

type configOutput struct {
	Type          string                `json:"type"`
	SchemaVersion int                   `json:"schemaVersion"`
	Format        string                `json:"format"`
	Quiet         bool                  `json:"quiet"`
	Verbose       bool                  `json:"verbose"`
	Defaults      config.DefaultsConfig `json:"defaults"`
	TargetDevice  string                `json:"target_device"`
	File          string                `json:"file,omitempty"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(&configOutput{
			Type:          "config",
			SchemaVersion: output.SchemaVersion,
			Format:        cfg.Format,
			Quiet:         cfg.Quiet,
			Verbose:       cfg.Verbose,
			Defaults:      cfg.Defaults,
			TargetDevice:  TargetDevice,
			File:          config.ConfigFile(),
		})
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  quiet:   %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Defaults:")
	fmt.Fprintf(globals.Stdout, "  bundle:        %s\n", cfg.Defaults.Bundle)
	if cfg.Defaults.ResourcesDir != "" {
		fmt.Fprintf(globals.Stdout, "  resources_dir: %s\n", cfg.Defaults.ResourcesDir)
	}
	fmt.Fprintf(globals.Stdout, "  match:         %s\n", cfg.Defaults.Match)
	fmt.Fprintf(globals.Stdout, "  platform:      %s\n", cfg.Defaults.Platform)
	fmt.Fprintf(globals.Stdout, "  chooser:       %s\n", cfg.Defaults.Chooser)
	fmt.Fprintf(globals.Stdout, "  alert:         %s\n", cfg.Defaults.Alert)
	fmt.Fprintf(globals.Stdout, "  boot_timeout:  %s\n", cfg.Defaults.BootTimeout)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "Target device: %s\n", targetDescription(TargetDevice))

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRaw(map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.simlaunch.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.simlaunch.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/simlaunch/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := `# simlaunch configuration file
# Place this file at ./.simlaunch.yaml, ~/.simlaunch.yaml or
# ~/.config/simlaunch/config.yaml

# Output format: "ndjson" (default) or "text"
format: ndjson

# Suppress info and warning output
quiet: false

# Enable verbose/debug output
verbose: false

# Default values for commands
defaults:
  # Resource name of the packaged app, without .app
  bundle: Packaged

  # Directory containing the packaged app (default: the launcher's Resources)
  # resources_dir: ./build

  # How the target device is matched: prefix, exact or contains
  match: prefix

  # Only consider simulators of this platform (empty for all)
  platform: iOS

  # How to ask when several simulators match: auto, tui or dialog
  chooser: auto

  # How fatal errors are shown: auto, always or never
  alert: auto

  # How long to wait for a simulator to boot
  boot_timeout: 60s
`

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
