package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vburojevic/simlaunch/internal/domain"
)

// NDJSONWriter writes launcher events as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep paths and app output unescaped
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// PackagedAppOutput describes the resolved bundle
type PackagedAppOutput struct {
	Type          string `json:"type"` // Always "packaged_app"
	SchemaVersion int    `json:"schemaVersion"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	BundleID      string `json:"bundle_id"`
	DisplayName   string `json:"display_name,omitempty"`
	Version       string `json:"version,omitempty"`
}

// SelectionOutput reports how the target simulator was determined
type SelectionOutput struct {
	Type          string `json:"type"` // Always "selection"
	SchemaVersion int    `json:"schemaVersion"`
	Mode          string `json:"mode"` // "auto" or "user"
	Target        string `json:"target"`
	Simulator     string `json:"simulator"`
	UDID          string `json:"udid"`
	Runtime       string `json:"runtime,omitempty"`
	Candidates    int    `json:"candidates"`
}

// SimulatorOutput is one entry of the list command
type SimulatorOutput struct {
	Type          string `json:"type"` // Always "simulator"
	SchemaVersion int    `json:"schemaVersion"`
	UDID          string `json:"udid"`
	Name          string `json:"name"`
	Identifier    string `json:"identifier"`
	State         string `json:"state"`
	Runtime       string `json:"runtime"`
	Matches       bool   `json:"matches"`
}

// InstallOutput marks the start of the install on the chosen simulator
type InstallOutput struct {
	Type          string `json:"type"` // Always "install"
	SchemaVersion int    `json:"schemaVersion"`
	BundleID      string `json:"bundle_id"`
	Path          string `json:"path"`
	Simulator     string `json:"simulator"`
	UDID          string `json:"udid"`
}

// LaunchedOutput signals that the app was installed and started
type LaunchedOutput struct {
	Type          string `json:"type"` // Always "launched"
	SchemaVersion int    `json:"schemaVersion"`
	Timestamp     string `json:"timestamp"`
	BundleID      string `json:"bundle_id"`
	Simulator     string `json:"simulator"`
	UDID          string `json:"udid"`
	PID           int    `json:"pid,omitempty"`
}

// ConsoleOutput represents a line of app console output
type ConsoleOutput struct {
	Type          string `json:"type"` // Always "console"
	SchemaVersion int    `json:"schemaVersion"`
	Timestamp     string `json:"timestamp"`
	Stream        string `json:"stream"` // "stdout" or "stderr"
	Message       string `json:"message"`
	Process       string `json:"process,omitempty"`
}

// InfoOutput represents an informational message
type InfoOutput struct {
	Type          string `json:"type"` // Always "info"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
	Simulator     string `json:"simulator,omitempty"`
	UDID          string `json:"udid,omitempty"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// VersionOutput describes the build
type VersionOutput struct {
	Type          string `json:"type"` // Always "version"
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	TargetDevice  string `json:"target_device"`
}

// WritePackagedApp outputs the resolved bundle
func (w *NDJSONWriter) WritePackagedApp(app *domain.PackagedApp) error {
	return w.encoder.Encode(&PackagedAppOutput{
		Type:          "packaged_app",
		SchemaVersion: SchemaVersion,
		Name:          app.Name,
		Path:          app.Path,
		BundleID:      app.Identifier,
		DisplayName:   app.DisplayName,
		Version:       app.Version,
	})
}

// WriteSelection outputs the selected simulator
func (w *NDJSONWriter) WriteSelection(mode, target string, device domain.Device, candidates int) error {
	return w.encoder.Encode(&SelectionOutput{
		Type:          "selection",
		SchemaVersion: SchemaVersion,
		Mode:          mode,
		Target:        target,
		Simulator:     device.Name,
		UDID:          device.UDID,
		Runtime:       device.RuntimeIdentifier,
		Candidates:    candidates,
	})
}

// WriteSimulator outputs a list entry
func (w *NDJSONWriter) WriteSimulator(device domain.Device, matches bool) error {
	return w.encoder.Encode(&SimulatorOutput{
		Type:          "simulator",
		SchemaVersion: SchemaVersion,
		UDID:          device.UDID,
		Name:          device.Name,
		Identifier:    device.Identifier(),
		State:         string(device.State),
		Runtime:       device.RuntimeIdentifier,
		Matches:       matches,
	})
}

// WriteInstall outputs an install event
func (w *NDJSONWriter) WriteInstall(app *domain.PackagedApp, device domain.Device) error {
	return w.encoder.Encode(&InstallOutput{
		Type:          "install",
		SchemaVersion: SchemaVersion,
		BundleID:      app.Identifier,
		Path:          app.Path,
		Simulator:     device.Name,
		UDID:          device.UDID,
	})
}

// WriteLaunched outputs a launch confirmation
func (w *NDJSONWriter) WriteLaunched(bundleID string, device domain.Device, pid int) error {
	return w.encoder.Encode(&LaunchedOutput{
		Type:          "launched",
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		BundleID:      bundleID,
		Simulator:     device.Name,
		UDID:          device.UDID,
		PID:           pid,
	})
}

// WriteConsole outputs one line of app output
func (w *NDJSONWriter) WriteConsole(stream, message, process string) error {
	return w.encoder.Encode(&ConsoleOutput{
		Type:          "console",
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Stream:        stream,
		Message:       message,
		Process:       process,
	})
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	err := domain.NewErrorOutput(code, message)
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteCodedError outputs an error from one of the launcher's taxonomies
func (w *NDJSONWriter) WriteCodedError(ce domain.CodedError, hint string) error {
	err := domain.NewErrorOutput(ce.Name(), ce.Error())
	err.SchemaVersion = SchemaVersion
	err.ErrorCode = ce.Code()
	err.Domain = ce.Domain()
	err.Hint = hint
	return w.encoder.Encode(err)
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}

// WriteInfo outputs an informational message
func (w *NDJSONWriter) WriteInfo(message, simulator, udid string) error {
	return w.encoder.Encode(&InfoOutput{
		Type:          "info",
		SchemaVersion: SchemaVersion,
		Message:       message,
		Simulator:     simulator,
		UDID:          udid,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// WriteVersion outputs build information
func (w *NDJSONWriter) WriteVersion(version, commit, target string) error {
	return w.encoder.Encode(&VersionOutput{
		Type:          "version",
		SchemaVersion: SchemaVersion,
		Version:       version,
		Commit:        commit,
		TargetDevice:  target,
	})
}
