package openrazer

import "context"

// EffectRequest carries the arguments for one hardware effect write.
// Only the fields relevant to the chosen effect are read by the daemon.
type EffectRequest struct {
	// Colours are RGB triplets, most effects use zero to three.
	Colours [][3]uint8

	// Speed is the effect speed where supported (reactive: 1-4).
	Speed int

	// Direction is the wave direction (1 right, 2 left).
	Direction int
}

// ZoneState is the daemon's native record of the last applied effect
// for one zone.
type ZoneState struct {
	Effect        string
	Colours       []string
	Speed         int
	WaveDirection int
}

// Client is the connection to the OpenRazer stack. The concrete
// implementation drives the kernel drivers through sysfs; tests use a
// fake.
type Client interface {
	// Connect establishes the daemon session.
	Connect(ctx context.Context) error

	// DaemonVersion returns the daemon version string, empty before
	// Connect succeeds.
	DaemonVersion() string

	// SupportsPersistence reports whether the connected stack records
	// per-zone effect state itself. When false the adapter keeps its
	// own file-backed record regardless of the daemon version.
	SupportsPersistence() bool

	// Devices enumerates the devices the daemon controls.
	Devices(ctx context.Context) ([]DeviceHandle, error)

	// RestartDaemon stops and relaunches the daemon process.
	RestartDaemon(ctx context.Context) error
}

// DeviceHandle is one device as exposed by the daemon client library.
//
// Has answers capability predicates using the daemon's string namespace,
// for example "lighting_logo_spectrum" or "game_mode_led". Optional
// features are gated on Has before the corresponding accessor is called;
// accessors for absent capabilities may error.
type DeviceHandle interface {
	Name() string
	Serial() string
	Type() string
	VID() string
	PID() string
	FirmwareVersion() string
	KeyboardLayout() string

	Has(capability string) bool

	SetEffect(zone, effect string, req EffectRequest) error

	Brightness(zone string) (int, error)
	SetBrightness(zone string, percent int) error
	Active(zone string) (bool, error)
	SetActive(zone string, active bool) error

	GameMode() (bool, error)
	SetGameMode(enabled bool) error

	PollRate() (int, error)
	SetPollRate(rate int) error
	SupportedPollRates() []int

	DPI() (x, y int, err error)
	SetDPI(x, y int) error
	MaxDPI() int
	// DPIStages returns the vendor's fixed stage table, empty when the
	// device has none.
	DPIStages() []int

	IdleTime() (int, error)
	SetIdleTime(seconds int) error
	LowBatteryThreshold() (int, error)
	SetLowBatteryThreshold(percent int) error

	// MatrixDimensions returns (0, 0) for devices without a custom
	// frame buffer.
	MatrixDimensions() (rows, cols int)
	SetMatrix(x, y int, r, g, b uint8) error
	DrawMatrix() error

	// ZonePersistence reads the native per-zone effect record. It
	// errors on daemon versions without persistence support and on
	// zones that keep no record.
	ZonePersistence(zone string) (ZoneState, error)
}
