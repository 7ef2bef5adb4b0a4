package output

import (
	"io"

	"github.com/vburojevic/simlaunch/internal/domain"
)

// Emitter wraps NDJSONWriter with helpers that reuse one encoder.
type Emitter struct {
	w *NDJSONWriter
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: NewNDJSONWriter(w)}
}

func (e *Emitter) PackagedApp(app *domain.PackagedApp) error { return e.w.WritePackagedApp(app) }
func (e *Emitter) Error(code, msg string, hint ...string) error {
	return e.w.WriteError(code, msg, hint...)
}
func (e *Emitter) CodedError(ce domain.CodedError, hint string) error {
	return e.w.WriteCodedError(ce, hint)
}
func (e *Emitter) WriteWarning(msg string) error { return e.w.WriteWarning(msg) }
func (e *Emitter) Info(msg, sim, udid string) error {
	return e.w.WriteInfo(msg, sim, udid)
}
func (e *Emitter) Selection(mode, target string, device domain.Device, candidates int) error {
	return e.w.WriteSelection(mode, target, device, candidates)
}
func (e *Emitter) Install(app *domain.PackagedApp, device domain.Device) error {
	return e.w.WriteInstall(app, device)
}
func (e *Emitter) Launched(bundleID string, device domain.Device, pid int) error {
	return e.w.WriteLaunched(bundleID, device, pid)
}
func (e *Emitter) Console(stream, msg, process string) error {
	return e.w.WriteConsole(stream, msg, process)
}
func (e *Emitter) Simulator(device domain.Device, matches bool) error {
	return e.w.WriteSimulator(device, matches)
}
