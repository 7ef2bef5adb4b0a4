package dialog

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/selector"
)

// Modes accepted by New.
const (
	ModeAuto   = "auto"
	ModeTUI    = "tui"
	ModeDialog = "dialog"
)

// New returns the chooser for mode. "auto" picks the terminal picker when
// stdin is a terminal and the native dialog otherwise (e.g. when launched
// from Finder).
func New(mode string) (selector.Chooser, error) {
	switch mode {
	case ModeTUI:
		return &TUI{}, nil
	case ModeDialog:
		return &AppleScript{}, nil
	case ModeAuto, "":
		return &Auto{}, nil
	default:
		return nil, fmt.Errorf("unknown chooser %q (expected auto, tui or dialog)", mode)
	}
}

// Auto defers the TUI/dialog decision until a choice is needed.
type Auto struct {
	// IsTerminal overrides terminal detection.
	IsTerminal func() bool
}

func (a *Auto) Choose(ctx context.Context, devices []domain.Device) (domain.Device, error) {
	isTerm := a.IsTerminal
	if isTerm == nil {
		isTerm = StdinIsTerminal
	}
	if isTerm() {
		return (&TUI{}).Choose(ctx, devices)
	}
	return (&AppleScript{}).Choose(ctx, devices)
}

// StdinIsTerminal reports whether the process can prompt on the terminal.
func StdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
