package backend

import "context"

// UnknownVIDPID is the sentinel used when a backend cannot determine a
// device's USB vendor or product ID.
const UnknownVIDPID = "0000"

// Device represents one physical peripheral as reported by a backend.
//
// Devices are rebuilt fresh on every enumeration call; there is no
// long-lived device identity across refreshes. Serial is a best-effort
// unique key: backends synthesize one when the hardware reports a
// degenerate value, and the middleman never assumes global uniqueness
// is enforced.
type Device struct {
	Name          string
	BackendID     string
	Serial        string
	FormFactor    FormFactor
	Monochromatic bool

	// VID and PID are lowercase hex strings, UnknownVIDPID when unknown.
	VID string
	PID string

	FirmwareVersion string
	KeyboardLayout  string

	// DPI is nil for devices without adjustable DPI.
	DPI *DPI

	// Matrix is nil for devices without per-LED addressing.
	Matrix Matrix

	// Zones is ordered and always contains at least the "main" zone.
	Zones []*Zone
}

// GetZone returns the zone with the given ID, or nil.
func (d *Device) GetZone(id string) *Zone {
	for _, z := range d.Zones {
		if z.ID == id {
			return z
		}
	}
	return nil
}

// Refresh re-reads every option in every zone from the authoritative
// source. The first failure is returned after the remaining options have
// been attempted, so a transiently unavailable source degrades to stale
// in-memory values rather than a half-refreshed device.
func (d *Device) Refresh(ctx context.Context) error {
	var firstErr error
	for _, zone := range d.Zones {
		for _, opt := range zone.Options {
			if err := opt.Refresh(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Zone is a named lighting region of a device. Zone IDs are unique
// within a device and stable across refreshes; persistence keys are
// derived from them.
type Zone struct {
	ID      string
	Label   string
	Icon    string
	Options []*Option
}

// DPI describes the adjustable sensor resolution of a pointing device.
type DPI struct {
	X int
	Y int

	Min int
	Max int

	// Stages are the preset steps offered to the user, ascending. When
	// the vendor has no stage table for this sensor the backend
	// synthesizes one.
	Stages []int

	apply   func(ctx context.Context, x, y int) error
	refresh func(ctx context.Context, d *DPI) error
}

// BindDPI wires the DPI sub-entity to its backend handlers.
func (d *DPI) BindDPI(apply func(ctx context.Context, x, y int) error, refresh func(ctx context.Context, d *DPI) error) {
	d.apply = apply
	d.refresh = refresh
}

// Set applies a new X/Y resolution to the hardware.
func (d *DPI) Set(ctx context.Context, x, y int) error {
	if d.apply == nil {
		return ErrNotBound
	}
	if x < d.Min || x > d.Max || y < d.Min || y > d.Max {
		return ErrOutOfRange
	}
	if err := d.apply(ctx, x, y); err != nil {
		return err
	}
	d.X = x
	d.Y = y
	return nil
}

// Refresh re-reads the current resolution from the hardware. On failure
// the previous in-memory values are left unchanged.
func (d *DPI) Refresh(ctx context.Context) error {
	if d.refresh == nil {
		return ErrNotBound
	}
	return d.refresh(ctx, d)
}

// Matrix provides per-LED addressing for devices that support custom
// frames. Set stages a colour in the local buffer; Draw pushes the
// buffer to the hardware.
type Matrix interface {
	// Rows returns the number of addressable rows.
	Rows() int

	// Cols returns the number of addressable columns.
	Cols() int

	// Set stages the colour of the LED at column x, row y.
	Set(x, y int, r, g, b uint8) error

	// Draw submits the staged frame to the device.
	Draw(ctx context.Context) error

	// Clear stages black on every LED.
	Clear()
}

// UnknownDevice describes hardware a backend recognises as its vendor's
// but cannot control, typically because the daemon lacks a driver.
type UnknownDevice struct {
	Name       string
	FormFactor FormFactor
	VID        string
	PID        string
}

// TestState is the outcome of a single troubleshooter check.
type TestState int

// Troubleshooter outcomes. Skipped means the check could not run in this
// environment, which is not a failure.
const (
	TestSkipped TestState = iota
	TestPassed
	TestFailed
)

// TestResult is one troubleshooter finding presented to the user.
type TestResult struct {
	ID         string
	Label      string
	State      TestState
	Suggestion string
}
