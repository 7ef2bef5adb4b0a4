package domain

import (
	"strings"
	"time"
)

// DeviceState represents the current state of a simulator
type DeviceState string

const (
	DeviceStateShutdown     DeviceState = "Shutdown"
	DeviceStateBooted       DeviceState = "Booted"
	DeviceStateBooting      DeviceState = "Booting"
	DeviceStateCreating     DeviceState = "Creating"
	DeviceStateShuttingDown DeviceState = "Shutting Down"
)

// Device represents an iOS Simulator device
type Device struct {
	UDID                 string      `json:"udid"`
	Name                 string      `json:"name"`
	State                DeviceState `json:"state"`
	IsAvailable          bool        `json:"isAvailable"`
	DeviceTypeIdentifier string      `json:"deviceTypeIdentifier"`
	RuntimeIdentifier    string      `json:"runtime"`
	LastBootedAt         *time.Time  `json:"lastBootedAt,omitempty"`
}

// IsBooted returns true if the device is currently booted
func (d *Device) IsBooted() bool {
	return d.State == DeviceStateBooted
}

// Platform returns the OS family of the runtime, e.g. "iOS" for "iOS 17.0".
func (d *Device) Platform() string {
	platform, _, _ := strings.Cut(d.RuntimeIdentifier, " ")
	return platform
}

// OSVersion returns the runtime version, e.g. "17.0" for "iOS 17.0".
func (d *Device) OSVersion() string {
	_, version, ok := strings.Cut(d.RuntimeIdentifier, " ")
	if !ok {
		return ""
	}
	return version
}

// Identifier is the string a target device identifier is matched against,
// formatted like "iPhone 14 (17.0)".
func (d *Device) Identifier() string {
	if v := d.OSVersion(); v != "" {
		return d.Name + " (" + v + ")"
	}
	return d.Name
}

// Label is Identifier plus the UDID; unique across devices.
func (d *Device) Label() string {
	return d.Identifier() + " [" + d.UDID + "]"
}
