// Package simtest provides stub xcrun, open and osascript executables for
// tests that drive simctl without a real Xcode installation.
package simtest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const xcrunScript = `#!/bin/sh
dir="$(cd "$(dirname "$0")" && pwd)"
echo "xcrun $*" >> "$dir/calls.log"

if [ "$#" -ge 4 ] && [ "$1" = "simctl" ] && [ "$2" = "list" ] && [ "$3" = "devices" ]; then
  cat "$dir/devices.json"
  exit 0
fi

if [ "$#" -ge 2 ] && [ "$1" = "simctl" ] && [ "$2" = "boot" ]; then
  if [ -f "$dir/booted.json" ]; then
    cp "$dir/booted.json" "$dir/devices.json"
  fi
  exit 0
fi

if [ "$#" -ge 2 ] && [ "$1" = "simctl" ] && [ "$2" = "install" ]; then
  if [ -f "$dir/install.fail" ]; then
    cat "$dir/install.fail" >&2
    exit 1
  fi
  exit 0
fi

if [ "$#" -ge 2 ] && [ "$1" = "simctl" ] && [ "$2" = "launch" ]; then
  console=0
  for a in "$@"; do
    [ "$a" = "--console" ] && console=1
    last="$a"
  done
  echo "$last: 4242"
  if [ "$console" = "1" ] && [ -f "$dir/console.long" ]; then
    head -c "$(cat "$dir/console.long")" /dev/zero | tr '\000' 'x'
    echo
    head -c 524288 /dev/zero | tr '\000' 'y'
    echo
    exit 0
  fi
  if [ "$console" = "1" ]; then
    echo "hello from app"
    echo "warning from app" >&2
  fi
  exit 0
fi

echo "stub: unsupported xcrun args: $*" >&2
exit 1
`

const openScript = `#!/bin/sh
dir="$(cd "$(dirname "$0")" && pwd)"
echo "open $*" >> "$dir/calls.log"
exit 0
`

const osascriptScript = `#!/bin/sh
dir="$(cd "$(dirname "$0")" && pwd)"
echo "osascript $*" >> "$dir/calls.log"
if [ -f "$dir/osascript.err" ]; then
  cat "$dir/osascript.err" >&2
  exit 1
fi
if [ -f "$dir/osascript.out" ]; then
  cat "$dir/osascript.out"
fi
exit 0
`

// Device is a simulator entry as simctl prints it.
type Device struct {
	UDID        string `json:"udid"`
	Name        string `json:"name"`
	State       string `json:"state"`
	IsAvailable bool   `json:"isAvailable"`
}

// Stub is a directory holding the stub executables and their state files.
type Stub struct {
	t   *testing.T
	Dir string
}

// New writes the stubs into a temp dir. Call OnPath to make exec.LookPath
// find them.
func New(t *testing.T) *Stub {
	t.Helper()
	s := &Stub{t: t, Dir: t.TempDir()}
	s.write("xcrun", xcrunScript, 0o755)
	s.write("open", openScript, 0o755)
	s.write("osascript", osascriptScript, 0o755)
	s.SetDevices(map[string][]Device{})
	return s
}

// OnPath puts the stub directory first on PATH for the rest of the test.
func (s *Stub) OnPath() *Stub {
	s.t.Setenv("PATH", s.Dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return s
}

// Xcrun is the path of the stub xcrun.
func (s *Stub) Xcrun() string { return filepath.Join(s.Dir, "xcrun") }

// SetDevices sets the `simctl list devices --json` response, keyed by runtime.
func (s *Stub) SetDevices(devices map[string][]Device) {
	s.writeJSON("devices.json", devices)
}

// SetDevicesRaw sets the list response verbatim.
func (s *Stub) SetDevicesRaw(raw string) {
	s.write("devices.json", raw, 0o644)
}

// SetBootedDevices sets the list response that replaces the current one after
// `simctl boot` runs.
func (s *Stub) SetBootedDevices(devices map[string][]Device) {
	s.writeJSON("booted.json", devices)
}

// FailInstall makes `simctl install` exit 1 printing message.
func (s *Stub) FailInstall(message string) {
	s.write("install.fail", message+"\n", 0o644)
}

// SetLongConsoleLine makes `simctl launch --console` print a single stdout
// line of n bytes followed by another 512 KiB line.
func (s *Stub) SetLongConsoleLine(n int) {
	s.write("console.long", strconv.Itoa(n), 0o644)
}

// SetOsascriptOutput sets what osascript prints on success.
func (s *Stub) SetOsascriptOutput(out string) {
	s.write("osascript.out", out+"\n", 0o644)
}

// FailOsascript makes osascript exit 1 printing message on stderr.
func (s *Stub) FailOsascript(message string) {
	s.write("osascript.err", message+"\n", 0o644)
}

// Calls returns every recorded invocation, e.g. "xcrun simctl install ...".
func (s *Stub) Calls() []string {
	data, err := os.ReadFile(filepath.Join(s.Dir, "calls.log"))
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// CallsWithPrefix filters Calls by prefix.
func (s *Stub) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Stub) writeJSON(name string, v any) {
	s.t.Helper()
	data, err := json.Marshal(map[string]any{"devices": v})
	if err != nil {
		s.t.Fatalf("marshal %s: %v", name, err)
	}
	s.write(name, string(data), 0o644)
}

func (s *Stub) write(name, content string, mode os.FileMode) {
	s.t.Helper()
	if err := os.WriteFile(filepath.Join(s.Dir, name), []byte(content), mode); err != nil {
		s.t.Fatalf("write %s: %v", name, err)
	}
}
