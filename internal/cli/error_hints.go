package cli

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/vburojevic/simlaunch/internal/bundle"
	"github.com/vburojevic/simlaunch/internal/selector"
)

func hintFor(err error) string {
	if err == nil {
		return ""
	}
	if h := hintForPackaging(err); h != "" {
		return h
	}
	if h := hintForDeviceLookup(err); h != "" {
		return h
	}
	return hintForTooling(err)
}

func hintForPackaging(err error) string {
	switch {
	case errors.Is(err, bundle.BundleNotFound):
		return "Place the app at Contents/Resources/" + bundle.DefaultName + bundle.Extension + " or pass --resources; try `simlaunch inspect`"
	case errors.Is(err, bundle.ManifestNotFound):
		return "The packaged app has no readable Info.plist; rebuild it with Xcode for the simulator"
	case errors.Is(err, bundle.IdentifierNotFound):
		return "Set CFBundleIdentifier in the packaged app's Info.plist"
	}
	return ""
}

func hintForDeviceLookup(err error) string {
	var none *selector.NoSuitableDeviceError
	if errors.As(err, &none) {
		return "Create a matching simulator in Xcode > Window > Devices and Simulators; try `simlaunch list`"
	}
	if errors.Is(err, selector.ErrDialogActive) {
		return "Finish the open simulator selection first"
	}
	return ""
}

func hintForTooling(err error) string {
	msg := err.Error()

	// Common xcrun/Xcode-select problems.
	if strings.Contains(msg, "invalid active developer path") {
		return "Xcode CLI tools not configured; run `xcode-select --install` or `sudo xcode-select -s /Applications/Xcode.app/Contents/Developer` (then `simlaunch doctor`)"
	}
	if strings.Contains(strings.ToLower(msg), "license") && strings.Contains(strings.ToLower(msg), "xcodebuild") {
		return "Xcode license may not be accepted; try `sudo xcodebuild -license accept` (then `simlaunch doctor`)"
	}

	if isCommandNotFound(err, "xcrun") {
		return "xcrun not found; install Xcode Command Line Tools with `xcode-select --install` (then `simlaunch doctor`)"
	}

	return ""
}

func isCommandNotFound(err error, name string) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, exec.ErrNotFound) && name == "" {
		return true
	}

	var ee *exec.Error
	if errors.As(err, &ee) && strings.EqualFold(ee.Name, name) && errors.Is(ee.Err, exec.ErrNotFound) {
		return true
	}

	var pe *os.PathError
	if errors.As(err, &pe) && errors.Is(pe.Err, exec.ErrNotFound) {
		if strings.EqualFold(pe.Path, name) || strings.HasSuffix(pe.Path, string(os.PathSeparator)+name) {
			return true
		}
	}

	// Fallback to string matching for wrapped errors.
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") && strings.Contains(msg, name) {
		return true
	}
	if strings.Contains(msg, "No such file or directory") && strings.Contains(msg, name) {
		return true
	}

	return false
}
