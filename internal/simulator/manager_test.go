package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/simulator/simtest"
)

const ios17 = "com.apple.CoreSimulator.SimRuntime.iOS-17-0"

func TestNewManager(t *testing.T) {
	t.Run("creates manager with default values", func(t *testing.T) {
		mgr := NewManager()
		assert.NotNil(t, mgr)
		assert.Equal(t, "xcrun", mgr.xcrunPath)
		assert.Equal(t, "open", mgr.openPath)
		assert.NotZero(t, mgr.pollInterval)
		assert.NotNil(t, mgr.clock)
	})

	t.Run("applies options", func(t *testing.T) {
		mock := clock.NewMock()
		mgr := NewManager(WithXcrunPath("/tmp/xcrun"), WithClock(mock), WithPollInterval(time.Second))
		assert.Equal(t, "/tmp/xcrun", mgr.xcrunPath)
		assert.Equal(t, mock, mgr.clock)
		assert.Equal(t, time.Second, mgr.pollInterval)
	})
}

func TestParseRuntimeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"com.apple.CoreSimulator.SimRuntime.iOS-17-0", "iOS 17.0"},
		{"com.apple.CoreSimulator.SimRuntime.iOS-17-2", "iOS 17.2"},
		{"com.apple.CoreSimulator.SimRuntime.iOS-18-0", "iOS 18.0"},
		{"com.apple.CoreSimulator.SimRuntime.watchOS-10-0", "watchOS 10.0"},
		{"com.apple.CoreSimulator.SimRuntime.tvOS-17-0", "tvOS 17.0"},
		{"com.apple.CoreSimulator.SimRuntime.visionOS-1-0", "visionOS 1.0"},
		{"iOS-17-0", "iOS 17.0"},
		{"iOS 9.0", "iOS 9.0"},
		{"simple", "simple"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseRuntimeName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseDeviceList(t *testing.T) {
	t.Run("keeps simctl order and skips unavailable devices", func(t *testing.T) {
		raw := `{
  "devices": {
    "com.apple.CoreSimulator.SimRuntime.iOS-17-0": [
      {"udid": "B", "name": "iPhone 14 Pro", "state": "Shutdown", "isAvailable": true, "deviceTypeIdentifier": "com.apple.CoreSimulator.SimDeviceType.iPhone-14-Pro"},
      {"udid": "A", "name": "iPhone 14", "state": "Booted", "isAvailable": true, "lastBootedAt": "2025-12-14T22:00:00Z"},
      {"udid": "X", "name": "iPhone 8", "state": "Shutdown", "isAvailable": false}
    ],
    "iOS 9.0": [
      {"udid": "OLD", "name": "iPhone 6", "state": "Shutdown", "availability": "(available)"}
    ]
  }
}`
		devices, err := parseDeviceList([]byte(raw))
		require.NoError(t, err)
		require.Len(t, devices, 3)

		assert.Equal(t, "B", devices[0].UDID)
		assert.Equal(t, "iPhone 14 Pro (17.0)", devices[0].Identifier())
		assert.Equal(t, "com.apple.CoreSimulator.SimDeviceType.iPhone-14-Pro", devices[0].DeviceTypeIdentifier)

		assert.True(t, devices[1].IsBooted())
		require.NotNil(t, devices[1].LastBootedAt)
		assert.Equal(t, 2025, devices[1].LastBootedAt.Year())

		assert.Equal(t, "iPhone 6 (9.0)", devices[2].Identifier())
		assert.Equal(t, "iOS", devices[2].Platform())
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := parseDeviceList([]byte("not json"))
		assert.Error(t, err)
	})

	t.Run("rejects output without devices", func(t *testing.T) {
		_, err := parseDeviceList([]byte(`{"runtimes": []}`))
		assert.Error(t, err)
	})
}

func TestListPlatformDevices(t *testing.T) {
	stub := simtest.New(t)
	stub.SetDevices(map[string][]simtest.Device{
		ios17: {{UDID: "A", Name: "iPhone 14", State: "Shutdown", IsAvailable: true}},
		"com.apple.CoreSimulator.SimRuntime.watchOS-10-0": {{UDID: "W", Name: "Apple Watch", State: "Shutdown", IsAvailable: true}},
	})
	mgr := NewManager(WithXcrunPath(stub.Xcrun()))
	ctx := context.Background()

	all, err := mgr.ListPlatformDevices(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ios, err := mgr.ListPlatformDevices(ctx, "ios")
	require.NoError(t, err)
	require.Len(t, ios, 1)
	assert.Equal(t, "A", ios[0].UDID)

	assert.Equal(t, []string{
		"xcrun simctl list devices --json",
		"xcrun simctl list devices --json",
	}, stub.Calls())
}

func TestListDevicesFailure(t *testing.T) {
	mgr := NewManager(WithXcrunPath("/nonexistent/xcrun"))
	_, err := mgr.ListDevices(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "simctl list failed")
}

func TestWaitForBoot(t *testing.T) {
	devices := func(state string) map[string][]simtest.Device {
		return map[string][]simtest.Device{
			ios17: {{UDID: "AAA", Name: "iPhone 14", State: state, IsAvailable: true}},
		}
	}

	run := func(mgr *Manager, mock *clock.Mock, timeout time.Duration) error {
		done := make(chan error, 1)
		go func() { done <- mgr.WaitForBoot(context.Background(), "AAA", timeout) }()
		for {
			select {
			case err := <-done:
				return err
			case <-time.After(20 * time.Millisecond):
				mock.Add(time.Second)
			}
		}
	}

	t.Run("returns once the device reports booted", func(t *testing.T) {
		stub := simtest.New(t)
		stub.SetDevices(devices("Booted"))
		mock := clock.NewMock()
		mgr := NewManager(WithXcrunPath(stub.Xcrun()), WithClock(mock), WithPollInterval(time.Second))

		assert.NoError(t, run(mgr, mock, 10*time.Second))
	})

	t.Run("times out when the device never boots", func(t *testing.T) {
		stub := simtest.New(t)
		stub.SetDevices(devices("Shutdown"))
		mock := clock.NewMock()
		mgr := NewManager(WithXcrunPath(stub.Xcrun()), WithClock(mock), WithPollInterval(time.Second))

		err := run(mgr, mock, 3*time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		mgr := NewManager(WithClock(clock.NewMock()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, mgr.WaitForBoot(ctx, "AAA", time.Minute), context.Canceled)
	})
}

func TestEnsureBooted(t *testing.T) {
	t.Run("skips boot for a booted device", func(t *testing.T) {
		stub := simtest.New(t)
		stub.SetDevices(map[string][]simtest.Device{
			ios17: {{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true}},
		})
		mgr := NewManager(WithXcrunPath(stub.Xcrun()))

		require.NoError(t, mgr.EnsureBooted(context.Background(), "AAA", time.Minute))
		assert.Empty(t, stub.CallsWithPrefix("xcrun simctl boot"))
	})

	t.Run("boots a shutdown device and waits", func(t *testing.T) {
		stub := simtest.New(t)
		stub.SetDevices(map[string][]simtest.Device{
			ios17: {{UDID: "AAA", Name: "iPhone 14", State: "Shutdown", IsAvailable: true}},
		})
		stub.SetBootedDevices(map[string][]simtest.Device{
			ios17: {{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true}},
		})
		mgr := NewManager(WithXcrunPath(stub.Xcrun()), WithPollInterval(10*time.Millisecond))

		require.NoError(t, mgr.EnsureBooted(context.Background(), "AAA", 5*time.Second))
		assert.Equal(t, []string{"xcrun simctl boot AAA"}, stub.CallsWithPrefix("xcrun simctl boot"))
	})

	t.Run("unknown device", func(t *testing.T) {
		stub := simtest.New(t)
		mgr := NewManager(WithXcrunPath(stub.Xcrun()))
		assert.Error(t, mgr.EnsureBooted(context.Background(), "ZZZ", time.Minute))
	})
}

func TestDeviceIdentity(t *testing.T) {
	d := domain.Device{UDID: "AAA", Name: "iPhone 14", RuntimeIdentifier: "iOS 17.0"}
	assert.Equal(t, "iPhone 14 (17.0)", d.Identifier())
	assert.Equal(t, "iPhone 14 (17.0) [AAA]", d.Label())

	bare := domain.Device{UDID: "BBB", Name: "Custom"}
	assert.Equal(t, "Custom", bare.Identifier())
	assert.Empty(t, bare.Platform())
}
