// Package alert presents fatal errors to the user before the launcher exits.
package alert

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Alerter shows a blocking error message.
type Alerter interface {
	Alert(ctx context.Context, title, message string) error
}

// Modes accepted by New.
const (
	ModeAuto   = "auto"
	ModeAlways = "always"
	ModeNever  = "never"
)

// New returns the Alerter for mode. "auto" uses the native alert unless
// interactive reports a terminal, in which case the message is drawn on w;
// "always" forces the native alert.
func New(mode string, w io.Writer, interactive func() bool) (Alerter, error) {
	switch mode {
	case ModeNever:
		return Nop{}, nil
	case ModeAlways:
		return &AppleScript{}, nil
	case ModeAuto, "":
		if interactive != nil && interactive() {
			return &Terminal{W: w}, nil
		}
		return &AppleScript{}, nil
	default:
		return nil, fmt.Errorf("unknown alert mode %q (expected auto, always or never)", mode)
	}
}

// Nop discards alerts.
type Nop struct{}

func (Nop) Alert(context.Context, string, string) error { return nil }

// AppleScript shows a critical "display alert" dialog and waits for OK.
type AppleScript struct {
	OsascriptPath string
}

var alertScript = []string{
	"on run argv",
	"display alert (item 1 of argv) message (item 2 of argv) as critical buttons {\"OK\"} default button \"OK\"",
	"end run",
}

func (a *AppleScript) Alert(ctx context.Context, title, message string) error {
	path := a.OsascriptPath
	if path == "" {
		path = "osascript"
	}

	args := make([]string, 0, 2*len(alertScript)+2)
	for _, l := range alertScript {
		args = append(args, "-e", l)
	}
	args = append(args, title, message)

	if out, err := exec.CommandContext(ctx, path, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript alert failed: %s", strings.TrimSpace(string(out)))
	}
	return nil
}

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Terminal draws the alert as a bordered box.
type Terminal struct {
	W io.Writer
}

func (t *Terminal) Alert(_ context.Context, title, message string) error {
	_, err := fmt.Fprintln(t.W, boxStyle.Render(titleStyle.Render(title)+"\n"+message))
	return err
}
