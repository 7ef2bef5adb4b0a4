package dialog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/selector"
)

// DefaultPrompt is shown above the list of matching simulators.
const DefaultPrompt = "Select a simulator to install the app on"

// chooseScript receives the prompt followed by the item labels as argv.
// Cancel raises error -128, which osascript reports on stderr.
var chooseScript = []string{
	"on run argv",
	"set promptText to item 1 of argv",
	"set choices to rest of argv",
	`set picked to choose from list choices with title "Simulator" with prompt promptText OK button name "Install" default items {item 1 of choices}`,
	"if picked is false then error number -128",
	"return item 1 of picked",
	"end run",
}

// AppleScript is a Chooser backed by the native "choose from list" dialog.
type AppleScript struct {
	Prompt        string
	OsascriptPath string
}

var _ selector.Chooser = (*AppleScript)(nil)

// Choose shows a modal list of devices and blocks until it is dismissed.
func (a *AppleScript) Choose(ctx context.Context, devices []domain.Device) (domain.Device, error) {
	if len(devices) == 0 {
		return domain.Device{}, errors.New("no simulators to choose from")
	}

	prompt := a.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	args := scriptArgs(chooseScript)
	args = append(args, prompt)
	for _, d := range devices {
		args = append(args, d.Label())
	}

	out, err := exec.CommandContext(ctx, osascript(a.OsascriptPath), args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return domain.Device{}, ctx.Err()
		}
		if isUserCanceled(err) {
			return domain.Device{}, selector.ErrSelectionCanceled
		}
		return domain.Device{}, fmt.Errorf("osascript failed: %w", err)
	}

	picked := strings.TrimSpace(string(out))
	for _, d := range devices {
		if d.Label() == picked {
			return d, nil
		}
	}
	return domain.Device{}, fmt.Errorf("unexpected selection %q", picked)
}

func scriptArgs(lines []string) []string {
	args := make([]string, 0, 2*len(lines))
	for _, l := range lines {
		args = append(args, "-e", l)
	}
	return args
}

func osascript(path string) string {
	if path == "" {
		return "osascript"
	}
	return path
}

func isUserCanceled(err error) bool {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return false
	}
	stderr := string(ee.Stderr)
	return strings.Contains(stderr, "-128") || strings.Contains(strings.ToLower(stderr), "user canceled")
}
