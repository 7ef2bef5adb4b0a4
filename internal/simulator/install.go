package simulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/vburojevic/simlaunch/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultBootTimeout bounds how long InstallAndLaunch waits for a boot.
const DefaultBootTimeout = 60 * time.Second

// LaunchOptions controls InstallAndLaunch.
type LaunchOptions struct {
	BootTimeout       time.Duration
	OpenSimulatorApp  bool
	TerminateExisting bool
	// Console, when set, launches with --console and receives every line the
	// app writes to stdout ("stdout") or stderr ("stderr"). The call then
	// blocks until the app exits or ctx is done.
	Console func(stream, line string)
}

// LaunchResult describes a launched app.
type LaunchResult struct {
	PID int
}

// InstallAndLaunch boots device when needed, installs app on it and launches
// it. Nothing is retried.
func (m *Manager) InstallAndLaunch(ctx context.Context, app *domain.PackagedApp, device domain.Device, opts LaunchOptions) (*LaunchResult, error) {
	timeout := opts.BootTimeout
	if timeout <= 0 {
		timeout = DefaultBootTimeout
	}

	if err := m.EnsureBooted(ctx, device.UDID, timeout); err != nil {
		return nil, err
	}

	if opts.OpenSimulatorApp {
		// Best effort: the install works headless as well.
		_ = m.OpenSimulatorApp(ctx, device.UDID)
	}

	if err := m.Install(ctx, device.UDID, app.Path); err != nil {
		return nil, err
	}

	if opts.Console != nil {
		return &LaunchResult{}, m.LaunchConsole(ctx, device.UDID, app.Identifier, opts.TerminateExisting, opts.Console)
	}
	return m.Launch(ctx, device.UDID, app.Identifier, opts.TerminateExisting)
}

// OpenSimulatorApp brings Simulator.app to the front showing udid.
func (m *Manager) OpenSimulatorApp(ctx context.Context, udid string) error {
	cmd := exec.CommandContext(ctx, m.openPath, "-a", "Simulator", "--args", "-CurrentDeviceUDID", udid)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to open Simulator: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// Install installs the .app bundle at appPath on udid.
func (m *Manager) Install(ctx context.Context, udid, appPath string) error {
	cmd := exec.CommandContext(ctx, m.xcrunPath, "simctl", "install", udid, appPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("simctl install failed: %s", commandFailure(err, output))
	}
	return nil
}

// Launch starts bundleID on udid and returns the reported PID.
func (m *Manager) Launch(ctx context.Context, udid, bundleID string, terminateExisting bool) (*LaunchResult, error) {
	cmd := exec.CommandContext(ctx, m.xcrunPath, launchArgs(udid, bundleID, terminateExisting, false)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("simctl launch failed: %s", commandFailure(err, output))
	}
	return &LaunchResult{PID: parseLaunchPID(string(output))}, nil
}

// LaunchConsole launches bundleID attached to its console and forwards each
// output line to sink until the process exits.
func (m *Manager) LaunchConsole(ctx context.Context, udid, bundleID string, terminateExisting bool, sink func(stream, line string)) error {
	group, gctx := errgroup.WithContext(ctx)

	// A failing reader cancels gctx, which stops the app as well.
	cmd := exec.CommandContext(gctx, m.xcrunPath, launchArgs(udid, bundleID, terminateExisting, true)...)

	// Capture both stdout and stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch app: %w", err)
	}

	group.Go(func() error { return scanLines(gctx, stdout, "stdout", sink) })
	group.Go(func() error { return scanLines(gctx, stderr, "stderr", sink) })

	// Drain both pipes before Wait closes them.
	scanErr := group.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil
	}
	if scanErr != nil {
		return scanErr
	}
	if waitErr != nil {
		return fmt.Errorf("app exited: %w", waitErr)
	}
	return nil
}

// scanLines forwards lines from r to sink. It always reads r to EOF so a
// writer that outlives the scan never blocks on a full pipe.
func scanLines(ctx context.Context, r io.Reader, stream string, sink func(stream, line string)) error {
	defer io.Copy(io.Discard, r) //nolint:errcheck

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		sink(stream, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("%s line too long (>1MiB): %w", stream, err)
		}
		return fmt.Errorf("%s read error: %w", stream, err)
	}
	return nil
}

func launchArgs(udid, bundleID string, terminateExisting, console bool) []string {
	args := []string{"simctl", "launch"}
	if console {
		args = append(args, "--console")
	}
	if terminateExisting {
		args = append(args, "--terminate-running-process")
	}
	return append(args, udid, bundleID)
}

// parseLaunchPID reads "com.example.App: 12345" as printed by simctl launch.
func parseLaunchPID(output string) int {
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		_, pid, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(pid)); err == nil {
			return n
		}
	}
	return 0
}

func commandFailure(err error, output []byte) string {
	if msg := strings.TrimSpace(string(output)); msg != "" {
		return msg
	}
	return err.Error()
}
