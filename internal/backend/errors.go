package backend

import "errors"

// Domain errors for the backend package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, backend.ErrDeviceNotFound) {
//	    // device unplugged, not a daemon fault
//	}
var (
	// ErrDeviceNotFound is returned when a device cannot be located by
	// name or serial. Callers use this to distinguish "device unplugged"
	// from a communication failure.
	ErrDeviceNotFound = errors.New("backend: device not found")

	// ErrNotSupported is returned when a backend does not implement an
	// optional operation (for example troubleshooting on this platform).
	ErrNotSupported = errors.New("backend: not supported")

	// ErrNotApplicable is returned by Restart when the backend has no
	// restartable daemon component.
	ErrNotApplicable = errors.New("backend: not applicable")

	// ErrBadArgument is returned when the argument passed to Option.Apply
	// does not match the option's variant.
	ErrBadArgument = errors.New("backend: argument does not match option kind")

	// ErrMissingColours is returned when an option is applied with fewer
	// colours than the selected parameter requires.
	ErrMissingColours = errors.New("backend: not enough colours for option")

	// ErrOutOfRange is returned when a slider value is outside its
	// min/max bounds or off the step grid.
	ErrOutOfRange = errors.New("backend: slider value out of range")

	// ErrUnknownParameter is returned when an effect or multiple choice
	// argument names a parameter the option does not carry.
	ErrUnknownParameter = errors.New("backend: unknown parameter")

	// ErrNotBound is returned when Apply or Refresh is called on an
	// option that was never wired to a backend handler.
	ErrNotBound = errors.New("backend: option not bound to a backend")
)
