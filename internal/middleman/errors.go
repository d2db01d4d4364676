package middleman

import "errors"

var (
	// ErrNoActiveEffect indicates no effect option is active on the
	// targeted zone or device.
	ErrNoActiveEffect = errors.New("middleman: no active effect")

	// ErrNoBackends indicates no backend survived initialisation.
	ErrNoBackends = errors.New("middleman: no backends available")

	// ErrUnknownZone indicates the device has no zone with that ID.
	ErrUnknownZone = errors.New("middleman: unknown zone")

	// ErrUnknownOption indicates the zone has no option with that UID.
	ErrUnknownOption = errors.New("middleman: unknown option")
)
