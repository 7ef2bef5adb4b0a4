package selector

import (
	"errors"
	"fmt"

	"github.com/vburojevic/simlaunch/internal/domain"
)

// DeviceErrorCode is shared by every device lookup failure.
const DeviceErrorCode = 2

// NoSuitableDeviceError means no available simulator matched the target.
type NoSuitableDeviceError struct {
	Target string
}

var _ domain.CodedError = (*NoSuitableDeviceError)(nil)

func (e *NoSuitableDeviceError) Error() string {
	return fmt.Sprintf("No simulator matching %q was found.", e.Target)
}

func (e *NoSuitableDeviceError) Code() int      { return DeviceErrorCode }
func (e *NoSuitableDeviceError) Domain() string { return domain.ErrorDomain }
func (e *NoSuitableDeviceError) Name() string   { return "NO_SUITABLE_DEVICE" }

var (
	// ErrSelectionCanceled is returned by a Chooser when the user dismisses
	// the choice without picking a device.
	ErrSelectionCanceled = errors.New("simulator selection canceled")

	// ErrDialogActive is returned when a choice is requested while another
	// one is still waiting for the user.
	ErrDialogActive = errors.New("a simulator selection dialog is already open")
)
