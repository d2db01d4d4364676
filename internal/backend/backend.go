package backend

import "context"

// ProgressFunc receives human-readable troubleshooter progress messages.
type ProgressFunc func(msg string)

// Backend is the contract every vendor adapter implements. The middleman
// aggregates backends; the UI never talks to one directly.
//
// Implementations translate every vendor-specific failure into a wrapped
// error string at this boundary. No vendor exception types cross it.
type Backend interface {
	// ID is the stable backend identifier, used in persistence paths and
	// device ownership records.
	ID() string

	// Init establishes the connection to the vendor daemon or library.
	// It must not panic; a missing or broken daemon is an error return.
	Init(ctx context.Context) error

	// GetDevices enumerates all controllable devices. Devices are built
	// fresh on every call.
	GetDevices(ctx context.Context) ([]*Device, error)

	// GetDeviceByName returns the device with the given display name, or
	// ErrDeviceNotFound.
	GetDeviceByName(ctx context.Context, name string) (*Device, error)

	// GetDeviceBySerial returns the device with the given serial, or
	// ErrDeviceNotFound.
	GetDeviceBySerial(ctx context.Context, serial string) (*Device, error)

	// GetUnsupportedDevices lists hardware recognised as this vendor's
	// but not controllable by the daemon.
	GetUnsupportedDevices(ctx context.Context) ([]UnknownDevice, error)

	// Troubleshoot runs environment checks, reporting progress along the
	// way. Returns ErrNotSupported on platforms without a troubleshooter.
	Troubleshoot(ctx context.Context, progress ProgressFunc) ([]TestResult, error)

	// Restart restarts the vendor daemon. Returns ErrNotApplicable for
	// backends without a restartable component.
	Restart(ctx context.Context) error
}
