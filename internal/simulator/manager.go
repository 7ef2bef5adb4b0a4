package simulator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/tidwall/gjson"
	"github.com/vburojevic/simlaunch/internal/domain"
)

// Manager handles simulator discovery and lifecycle operations
type Manager struct {
	xcrunPath    string
	openPath     string
	pollInterval time.Duration
	clock        clock.Clock
}

// Option configures a Manager.
type Option func(*Manager)

// WithXcrunPath overrides the xcrun executable.
func WithXcrunPath(path string) Option {
	return func(m *Manager) { m.xcrunPath = path }
}

// WithClock sets the clock used for boot polling.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithPollInterval sets how often boot state is checked.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) { m.pollInterval = d }
}

// NewManager creates a new simulator manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		xcrunPath:    "xcrun",
		openPath:     "open",
		pollInterval: 2 * time.Second,
		clock:        clock.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ListDevices returns all available simulators in the order simctl reports them
func (m *Manager) ListDevices(ctx context.Context) ([]domain.Device, error) {
	cmd := exec.CommandContext(ctx, m.xcrunPath, "simctl", "list", "devices", "--json")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("simctl list failed: %w", err)
	}
	return parseDeviceList(output)
}

func parseDeviceList(output []byte) ([]domain.Device, error) {
	if !gjson.ValidBytes(output) {
		return nil, errors.New("failed to parse simctl output: invalid JSON")
	}
	root := gjson.GetBytes(output, "devices")
	if !root.IsObject() {
		return nil, errors.New("failed to parse simctl output: missing devices")
	}

	var devices []domain.Device
	root.ForEach(func(runtime, devs gjson.Result) bool {
		if !devs.IsArray() {
			return true
		}
		// Extract iOS version from runtime identifier
		// e.g., "com.apple.CoreSimulator.SimRuntime.iOS-17-0" -> "iOS 17.0"
		runtimeName := parseRuntimeName(runtime.String())

		devs.ForEach(func(_, d gjson.Result) bool {
			// Older Xcode releases report "availability": "(available)".
			available := d.Get("isAvailable").Bool() || d.Get("availability").String() == "(available)"
			if !available {
				return true
			}

			var lastBooted *time.Time
			if s := d.Get("lastBootedAt").String(); s != "" {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					lastBooted = &t
				}
			}

			devices = append(devices, domain.Device{
				UDID:                 d.Get("udid").String(),
				Name:                 d.Get("name").String(),
				State:                domain.DeviceState(d.Get("state").String()),
				IsAvailable:          true,
				DeviceTypeIdentifier: d.Get("deviceTypeIdentifier").String(),
				RuntimeIdentifier:    runtimeName,
				LastBootedAt:         lastBooted,
			})
			return true
		})
		return true
	})

	return devices, nil
}

// ListPlatformDevices returns available simulators whose runtime belongs to
// platform ("iOS", "tvOS", ...). An empty platform returns every device.
func (m *Manager) ListPlatformDevices(ctx context.Context, platform string) ([]domain.Device, error) {
	devices, err := m.ListDevices(ctx)
	if err != nil || platform == "" {
		return devices, err
	}

	var filtered []domain.Device
	for _, d := range devices {
		if strings.EqualFold(d.Platform(), platform) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// BootDevice boots a simulator by UDID
func (m *Manager) BootDevice(ctx context.Context, udid string) error {
	cmd := exec.CommandContext(ctx, m.xcrunPath, "simctl", "boot", udid)
	output, err := cmd.CombinedOutput()
	if err != nil {
		// Check if already booted
		if strings.Contains(string(output), "current state: Booted") {
			return nil // Already booted, not an error
		}
		return fmt.Errorf("failed to boot device: %s", strings.TrimSpace(string(output)))
	}
	return nil
}

// GetDeviceInfo returns the current info for a device by UDID
func (m *Manager) GetDeviceInfo(ctx context.Context, udid string) (*domain.Device, error) {
	devices, err := m.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		if d.UDID == udid {
			return &d, nil
		}
	}

	return nil, fmt.Errorf("device not found: %s", udid)
}

// WaitForBoot waits for a device to finish booting
func (m *Manager) WaitForBoot(ctx context.Context, udid string, timeout time.Duration) error {
	deadline := m.clock.Now().Add(timeout)
	ticker := m.clock.Ticker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			device, err := m.GetDeviceInfo(ctx, udid)
			if err == nil && device.IsBooted() {
				return nil
			}

			if m.clock.Now().After(deadline) {
				return fmt.Errorf("timeout waiting for device %s to boot", udid)
			}
		}
	}
}

// EnsureBooted boots a device if it's not already booted and waits for boot to complete
func (m *Manager) EnsureBooted(ctx context.Context, udid string, timeout time.Duration) error {
	device, err := m.GetDeviceInfo(ctx, udid)
	if err != nil {
		return err
	}

	if device.IsBooted() {
		return nil
	}

	if err := m.BootDevice(ctx, udid); err != nil {
		return err
	}

	return m.WaitForBoot(ctx, udid, timeout)
}

// parseRuntimeName extracts a human-readable runtime name from the identifier
func parseRuntimeName(runtime string) string {
	// Example: "com.apple.CoreSimulator.SimRuntime.iOS-17-0" -> "iOS 17.0"
	// Example: "com.apple.CoreSimulator.SimRuntime.watchOS-10-0" -> "watchOS 10.0"

	// Older simctl used "iOS 9.0" directly as the key.
	if strings.Contains(runtime, " ") {
		return runtime
	}

	parts := strings.Split(runtime, ".")
	if len(parts) == 0 {
		return runtime
	}

	lastPart := parts[len(parts)-1]

	// Replace dashes with dots for version numbers, but keep first part
	// e.g., "iOS-17-0" -> "iOS 17.0"
	segments := strings.Split(lastPart, "-")
	if len(segments) >= 2 {
		os := segments[0]
		version := strings.Join(segments[1:], ".")
		return fmt.Sprintf("%s %s", os, version)
	}

	return lastPart
}
