package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/simlaunch/internal/cli"
	"github.com/vburojevic/simlaunch/internal/config"
)

func main() {
	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults; flags given on the command line
	// still win.
	ctx := kong.Parse(&c,
		kong.Name("simlaunch"),
		kong.Description("Install and launch the packaged app on an iOS Simulator\n\nRun without arguments to install on the simulator matching the built-in target device"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		cli.Vars(cfg),
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	defer globals.Logger.Sync() //nolint:errcheck

	if config.ConfigFile() != "" {
		globals.Debug("Loaded config from %s", config.ConfigFile())
	}

	err = ctx.Run(globals)
	if code := cli.ExitCode(err); code != cli.ExitOK {
		globals.Logger.Sync() //nolint:errcheck
		os.Exit(code)
	}
}
