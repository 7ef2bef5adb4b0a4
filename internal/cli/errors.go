package cli

import (
	"errors"
	"fmt"

	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so scripts always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint[0])
		}
	}
	return errors.New(message)
}

// reportError emits err and returns it unchanged so the caller keeps the
// exit code. Taxonomy errors carry their own name; anything else uses
// fallbackCode unless it is a *CLIError.
func reportError(globals *Globals, emitter *output.Emitter, err error, fallbackCode string) error {
	code, hint := fallbackCode, hintFor(err)

	var coded domain.CodedError
	var cliErr *CLIError
	switch {
	case errors.As(err, &coded):
		if globals.Format == "ndjson" {
			emitter.CodedError(coded, hint)
			return err
		}
		code = coded.Name()
	case errors.As(err, &cliErr):
		code = cliErr.Code
		if cliErr.Hint != "" {
			hint = cliErr.Hint
		}
	}

	if globals.Format == "ndjson" {
		emitter.Error(code, err.Error(), hint)
		return err
	}
	fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, err.Error())
	if hint != "" {
		fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint)
	}
	return err
}
