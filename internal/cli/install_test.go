package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/simlaunch/internal/bundle"
	"github.com/vburojevic/simlaunch/internal/domain"
	"github.com/vburojevic/simlaunch/internal/selector"
	"github.com/vburojevic/simlaunch/internal/simulator"
	"github.com/vburojevic/simlaunch/internal/simulator/simtest"
)

const (
	ios17  = "com.apple.CoreSimulator.SimRuntime.iOS-17-0"
	tvOS17 = "com.apple.CoreSimulator.SimRuntime.tvOS-17-0"

	resourcesDir = "/Applications/Launcher.app/Contents/Resources"
)

var packagedAppPath = filepath.Join(resourcesDir, "Packaged.app")

const validInfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.example.App</string>
	<key>CFBundleDisplayName</key>
	<string>Example</string>
	<key>CFBundleShortVersionString</key>
	<string>1.2</string>
</dict>
</plist>
`

// packagedFS returns a filesystem holding Packaged.app with infoPlist, or an
// empty resources directory when infoPlist is "".
func packagedFS(t *testing.T, infoPlist string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(resourcesDir, 0o755))
	if infoPlist != "" {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(packagedAppPath, "Info.plist"), []byte(infoPlist), 0o644))
	}
	return fs
}

type recordedAlert struct {
	title   string
	message string
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

func (r *recordingAlerter) Alert(_ context.Context, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, recordedAlert{title: title, message: message})
	return nil
}

// scriptedChooser records the candidates it was offered and answers with
// pick.
type scriptedChooser struct {
	offered [][]domain.Device
	pick    func([]domain.Device) (domain.Device, error)
}

func (s *scriptedChooser) Choose(_ context.Context, devices []domain.Device) (domain.Device, error) {
	s.offered = append(s.offered, devices)
	return s.pick(devices)
}

func pickIndex(i int) func([]domain.Device) (domain.Device, error) {
	return func(devices []domain.Device) (domain.Device, error) {
		return devices[i], nil
	}
}

type installFixture struct {
	stub    *simtest.Stub
	globals *Globals
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	alerter *recordingAlerter
	chooser *scriptedChooser
}

func newInstallFixture(t *testing.T, format string, devices []simtest.Device) *installFixture {
	t.Helper()
	stub := simtest.New(t).OnPath()
	stub.SetDevices(map[string][]simtest.Device{ios17: devices})

	globals, stdout, stderr := testGlobals(format)
	globals.FS = packagedFS(t, validInfoPlist)
	globals.Manager = simulator.NewManager(simulator.WithPollInterval(10 * time.Millisecond))

	f := &installFixture{
		stub:    stub,
		globals: globals,
		stdout:  stdout,
		stderr:  stderr,
		alerter: &recordingAlerter{},
		chooser: &scriptedChooser{pick: pickIndex(0)},
	}
	globals.Alerter = f.alerter
	globals.Chooser = f.chooser
	return f
}

func (f *installFixture) run(t *testing.T, cmd *InstallCmd) error {
	t.Helper()
	if cmd.Resources == "" {
		cmd.Resources = resourcesDir
	}
	return cmd.run(context.Background(), f.globals)
}

func TestInstall_SingleMatchInstallsWithoutDialog(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
	})

	err := f.run(t, &InstallCmd{Device: "iPhone 14"})
	require.NoError(t, err)

	assert.Empty(t, f.chooser.offered, "no dialog for a single match")
	assert.Empty(t, f.alerter.alerts)
	assert.Equal(t, []string{"xcrun simctl install AAA " + packagedAppPath}, f.stub.CallsWithPrefix("xcrun simctl install"))
	assert.Equal(t, []string{"xcrun simctl launch AAA com.example.App"}, f.stub.CallsWithPrefix("xcrun simctl launch"))
	assert.Equal(t, []string{"open -a Simulator --args -CurrentDeviceUDID AAA"}, f.stub.CallsWithPrefix("open"))

	events := decodeLines(t, f.stdout)
	assert.Equal(t, []string{"packaged_app", "selection", "install", "launched"}, eventTypes(events))
	assert.Equal(t, "auto", events[1]["mode"])
	assert.EqualValues(t, 1, events[1]["candidates"])
	assert.Equal(t, "com.example.App", events[3]["bundle_id"])
	assert.EqualValues(t, 4242, events[3]["pid"])
}

func TestInstall_MultipleMatchesAskTheUser(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
		{UDID: "BBB", Name: "iPhone 14 Pro", State: "Booted", IsAvailable: true},
		{UDID: "CCC", Name: "iPhone 15", State: "Booted", IsAvailable: true},
	})
	f.chooser.pick = pickIndex(1)

	err := f.run(t, &InstallCmd{Device: "iPhone 14", NoOpen: true})
	require.NoError(t, err)

	require.Len(t, f.chooser.offered, 1)
	offered := f.chooser.offered[0]
	require.Len(t, offered, 2)
	assert.Equal(t, "AAA", offered[0].UDID)
	assert.Equal(t, "BBB", offered[1].UDID)

	assert.Equal(t, []string{"xcrun simctl install BBB " + packagedAppPath}, f.stub.CallsWithPrefix("xcrun simctl install"))
	assert.Empty(t, f.stub.CallsWithPrefix("open"))

	events := decodeLines(t, f.stdout)
	require.Len(t, events, 4)
	assert.Equal(t, "user", events[1]["mode"])
	assert.Equal(t, "BBB", events[1]["udid"])
	assert.EqualValues(t, 2, events[1]["candidates"])
}

func TestInstall_NoMatchIsFatal(t *testing.T) {
	f := newInstallFixture(t, "ndjson", nil)

	err := f.run(t, &InstallCmd{Device: "iPhone 99"})
	require.Error(t, err)

	var none *selector.NoSuitableDeviceError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, "iPhone 99", none.Target)
	assert.Equal(t, 2, ExitCode(err))

	assert.Empty(t, f.stub.CallsWithPrefix("xcrun simctl install"))
	assert.Empty(t, f.chooser.offered)

	require.Len(t, f.alerter.alerts, 1)
	assert.Equal(t, "Unable to launch Example", f.alerter.alerts[0].title)
	assert.Equal(t, `No simulator matching "iPhone 99" was found.`, f.alerter.alerts[0].message)

	events := decodeLines(t, f.stdout)
	last := events[len(events)-1]
	assert.Equal(t, "error", last["type"])
	assert.Equal(t, "NO_SUITABLE_DEVICE", last["code"])
	assert.EqualValues(t, 2, last["errorCode"])
	assert.NotEmpty(t, last["hint"])
}

func TestInstall_PlatformFilterExcludesOtherRuntimes(t *testing.T) {
	f := newInstallFixture(t, "ndjson", nil)
	f.stub.SetDevices(map[string][]simtest.Device{
		tvOS17: {{UDID: "TTT", Name: "Apple TV", State: "Booted", IsAvailable: true}},
	})

	err := f.run(t, &InstallCmd{Platform: "iOS"})
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
	assert.Empty(t, f.stub.CallsWithPrefix("xcrun simctl install"))
}

func TestInstall_PackagingErrorsStopBeforeSimctl(t *testing.T) {
	tests := []struct {
		name      string
		infoPlist string
		bundle    string
		kind      bundle.ErrorKind
		code      string
	}{
		{"bundle missing", "", "", bundle.BundleNotFound, "BUNDLE_NOT_FOUND"},
		{"other bundle name", validInfoPlist, "Missing", bundle.BundleNotFound, "BUNDLE_NOT_FOUND"},
		{"manifest unparsable", "not a plist <", "", bundle.ManifestNotFound, "MANIFEST_NOT_FOUND"},
		{"identifier missing", `<plist version="1.0"><dict><key>CFBundleName</key><string>X</string></dict></plist>`, "", bundle.IdentifierNotFound, "IDENTIFIER_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInstallFixture(t, "ndjson", []simtest.Device{
				{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
			})
			f.globals.FS = packagedFS(t, tt.infoPlist)

			err := f.run(t, &InstallCmd{Bundle: tt.bundle})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 1, ExitCode(err))

			assert.Empty(t, f.stub.Calls(), "simctl must not run for a broken package")
			require.Len(t, f.alerter.alerts, 1)
			assert.Equal(t, "Unable to launch app", f.alerter.alerts[0].title)
			assert.Equal(t, tt.kind.Error(), f.alerter.alerts[0].message)

			events := decodeLines(t, f.stdout)
			require.Len(t, events, 1)
			assert.Equal(t, tt.code, events[0]["code"])
		})
	}
}

func TestInstall_CanceledSelectionInstallsNothing(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
		{UDID: "BBB", Name: "iPhone 14 Pro", State: "Booted", IsAvailable: true},
	})
	f.chooser.pick = func([]domain.Device) (domain.Device, error) {
		return domain.Device{}, selector.ErrSelectionCanceled
	}

	err := f.run(t, &InstallCmd{Device: "iPhone 14"})
	require.ErrorIs(t, err, selector.ErrSelectionCanceled)
	assert.Equal(t, ExitCanceled, ExitCode(err))

	assert.Empty(t, f.stub.CallsWithPrefix("xcrun simctl install"))
	assert.Empty(t, f.alerter.alerts, "canceling is not an error worth an alert")

	events := decodeLines(t, f.stdout)
	assert.Equal(t, []string{"packaged_app", "warning"}, eventTypes(events))
}

func TestInstall_ChooserAnswerMustBeACandidate(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
		{UDID: "BBB", Name: "iPhone 14 Pro", State: "Booted", IsAvailable: true},
	})
	f.chooser.pick = func([]domain.Device) (domain.Device, error) {
		return domain.Device{UDID: "ZZZ", Name: "iPad"}, nil
	}

	err := f.run(t, &InstallCmd{Device: "iPhone 14"})
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, f.stub.CallsWithPrefix("xcrun simctl install"))
	assert.Len(t, f.alerter.alerts, 1)
}

func TestInstall_InstallFailure(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
	})
	f.stub.FailInstall("An application bundle was not found at the provided path.")

	err := f.run(t, &InstallCmd{NoOpen: true})
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))

	var cliErr *CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, "INSTALL_FAILED", cliErr.Code)

	assert.Empty(t, f.stub.CallsWithPrefix("xcrun simctl launch"))
	require.Len(t, f.alerter.alerts, 1)
	assert.Contains(t, f.alerter.alerts[0].message, "bundle was not found")

	events := decodeLines(t, f.stdout)
	last := events[len(events)-1]
	assert.Equal(t, "INSTALL_FAILED", last["code"])
}

func TestInstall_BootsShutdownSimulator(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Shutdown", IsAvailable: true},
	})
	f.stub.SetBootedDevices(map[string][]simtest.Device{
		ios17: {{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true}},
	})

	err := f.run(t, &InstallCmd{NoOpen: true, BootTimeout: 5 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, []string{"xcrun simctl boot AAA"}, f.stub.CallsWithPrefix("xcrun simctl boot"))
	events := decodeLines(t, f.stdout)
	assert.Equal(t, []string{"packaged_app", "selection", "info", "install", "launched"}, eventTypes(events))
}

func TestInstall_ConsoleStreamsAppOutput(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
	})

	err := f.run(t, &InstallCmd{NoOpen: true, Console: true, TerminateExisting: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"xcrun simctl launch --console --terminate-running-process AAA com.example.App"}, f.stub.CallsWithPrefix("xcrun simctl launch"))

	var messages []string
	for _, e := range decodeLines(t, f.stdout) {
		if e["type"] == "console" {
			messages = append(messages, e["stream"].(string)+":"+e["message"].(string))
		}
	}
	assert.Contains(t, messages, "stdout:hello from app")
	assert.Contains(t, messages, "stderr:warning from app")
}

func TestInstall_QuietOnlyReportsLaunch(t *testing.T) {
	f := newInstallFixture(t, "ndjson", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
	})
	f.globals.Quiet = true

	require.NoError(t, f.run(t, &InstallCmd{NoOpen: true}))
	assert.Equal(t, []string{"launched"}, eventTypes(decodeLines(t, f.stdout)))
}

func TestInstall_TextOutput(t *testing.T) {
	f := newInstallFixture(t, "text", []simtest.Device{
		{UDID: "AAA", Name: "iPhone 14", State: "Booted", IsAvailable: true},
	})

	require.NoError(t, f.run(t, &InstallCmd{Device: "iPhone 14", NoOpen: true}))

	out := f.stdout.String()
	assert.Contains(t, out, "Example (com.example.App)")
	assert.Contains(t, out, "iPhone 14 (17.0) [AAA]")
	assert.Contains(t, out, "Installing Example on iPhone 14 (17.0)...")
	assert.Contains(t, out, "Launched com.example.App on iPhone 14 (17.0) (pid 4242)")
}

func TestInstall_TextErrorGoesToStderr(t *testing.T) {
	f := newInstallFixture(t, "text", nil)

	err := f.run(t, &InstallCmd{Device: "iPhone 99"})
	require.Error(t, err)
	assert.Contains(t, f.stderr.String(), "Error [NO_SUITABLE_DEVICE]")
	assert.Contains(t, f.stderr.String(), "Hint:")
}
