package cli

import (
	"fmt"

	"github.com/vburojevic/simlaunch/internal/output"
)

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, emitter *output.Emitter, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" && emitter != nil {
		emitter.WriteWarning(msg)
		return
	}
	fmt.Fprintf(globals.Stderr, "Warning: %s\n", msg)
}

// emitInfo respects format/quiet.
func emitInfo(globals *Globals, emitter *output.Emitter, msg, simulator, udid string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" && emitter != nil {
		emitter.Info(msg, simulator, udid)
		return
	}
	fmt.Fprintln(globals.Stdout, output.Styles.Muted.Render(msg))
}
