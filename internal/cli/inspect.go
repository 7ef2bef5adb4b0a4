package cli

import (
	"errors"
	"fmt"

	"github.com/vburojevic/simlaunch/internal/bundle"
	"github.com/vburojevic/simlaunch/internal/output"
)

// InspectCmd resolves the packaged app and prints what would be installed
type InspectCmd struct {
	Bundle    string `short:"b" default:"${config_bundle}" help:"Resource name of the packaged app, without .app"`
	Resources string `short:"r" default:"${config_resources}" help:"Directory containing the packaged app (default: the launcher's Resources)"`
}

// Run executes the inspect command
func (c *InspectCmd) Run(globals *Globals) error {
	emitter := output.NewEmitter(globals.Stdout)

	app, err := resolvePackagedApp(globals, c.Resources, c.Bundle)
	if err != nil {
		var perr *bundle.Error
		if errors.As(err, &perr) {
			globals.Debug("%s", perr.Detail())
		}
		return reportError(globals, emitter, err, "PACKAGING_ERROR")
	}

	if globals.Format == "ndjson" {
		return emitter.PackagedApp(app)
	}

	rows := [][2]string{
		{"Name", app.Title()},
		{"Bundle ID", app.Identifier},
		{"Version", app.Version},
		{"Path", app.Path},
		{"Target", targetDescription(TargetDevice)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(globals.Stdout, "%s %s\n", output.Styles.Label.Render(fmt.Sprintf("%-10s", r[0]+":")), output.Styles.Value.Render(r[1]))
	}
	return nil
}

func targetDescription(target string) string {
	if target == "" {
		return "any simulator"
	}
	return target
}
