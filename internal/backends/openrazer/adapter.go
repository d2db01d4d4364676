package openrazer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"

	"github.com/polychromatic/polychromatic-core/internal/backend"
	"github.com/polychromatic/polychromatic-core/internal/persistence"
)

// BackendID identifies this backend in persistence paths and device
// ownership records.
const BackendID = "openrazer"

const (
	connectAttempts = 3
	connectDelay    = 500 * time.Millisecond

	// nativePersistenceMajor is the first daemon major version that
	// records per-zone effect state itself.
	nativePersistenceMajor = 3

	defaultSysfsRoot = "/sys/bus/hid/drivers"
)

// Logger defines the logging interface used by the adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures the adapter.
type Options struct {
	// PersistenceDir is the directory for the file-based persistence
	// fallback, conventionally backends/openrazer/persistence under the
	// application config root.
	PersistenceDir string

	// SysfsRoot overrides the HID driver sysfs root (tests only).
	SysfsRoot string
}

// Adapter implements backend.Backend against the OpenRazer daemon.
type Adapter struct {
	client    Client
	store     *persistence.Store
	sysfsRoot string
	logger    Logger

	// nativePersistence is decided once at Init from the daemon
	// version; older daemons use the file fallback.
	nativePersistence bool

	// enumerateHID lists visible Razer USB hardware; overridden in
	// tests.
	enumerateHID func() []hidDevice
}

// New creates an adapter over a daemon client. The zone tables are
// validated here so a missing row fails construction, not a device
// enumeration at runtime.
func New(client Client, opts Options) (*Adapter, error) {
	if err := validateZoneTables(); err != nil {
		return nil, err
	}

	store, err := persistence.NewStore(opts.PersistenceDir)
	if err != nil {
		return nil, fmt.Errorf("openrazer: %w", err)
	}

	sysfsRoot := opts.SysfsRoot
	if sysfsRoot == "" {
		sysfsRoot = defaultSysfsRoot
	}

	return &Adapter{
		client:       client,
		store:        store,
		sysfsRoot:    sysfsRoot,
		logger:       noopLogger{},
		enumerateHID: enumerateRazerHID,
	}, nil
}

// SetLogger sets the logger for the adapter.
func (a *Adapter) SetLogger(logger Logger) {
	a.logger = logger
	a.store.SetLogger(logger)
}

// ID returns the backend identifier.
func (a *Adapter) ID() string {
	return BackendID
}

// Init connects to the daemon, retrying briefly to ride out daemon
// startup, and decides the persistence strategy: native records need
// both a client that can read them and a daemon version that writes
// them.
func (a *Adapter) Init(ctx context.Context) error {
	err := retry.Do(
		func() error { return a.client.Connect(ctx) },
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("openrazer: connecting to daemon: %v", err)
	}

	version := a.client.DaemonVersion()
	a.nativePersistence = a.client.SupportsPersistence() && daemonHasPersistence(version)
	a.logger.Info("openrazer daemon connected",
		"version", version,
		"native_persistence", a.nativePersistence,
	)
	return nil
}

// GetDevices enumerates the daemon's devices, building each one fresh.
func (a *Adapter) GetDevices(ctx context.Context) ([]*backend.Device, error) {
	handles, err := a.client.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("openrazer: enumerating devices: %v", err)
	}

	devices := make([]*backend.Device, 0, len(handles))
	for _, h := range handles {
		devices = append(devices, a.buildDevice(h))
	}
	return devices, nil
}

// GetDeviceByName returns the device with the given display name.
func (a *Adapter) GetDeviceByName(ctx context.Context, name string) (*backend.Device, error) {
	devices, err := a.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, backend.ErrDeviceNotFound
}

// GetDeviceBySerial returns the device with the given serial.
func (a *Adapter) GetDeviceBySerial(ctx context.Context, serial string) (*backend.Device, error) {
	devices, err := a.GetDevices(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Serial == serial {
			return d, nil
		}
	}
	return nil, backend.ErrDeviceNotFound
}

// Restart stops and relaunches the daemon.
func (a *Adapter) Restart(ctx context.Context) error {
	if err := a.client.RestartDaemon(ctx); err != nil {
		return fmt.Errorf("openrazer: restarting daemon: %v", err)
	}
	return nil
}

// translate converts a vendor client failure into a plain error string.
// Nothing vendor-specific crosses the backend boundary.
func (a *Adapter) translate(op string, h DeviceHandle, err error) error {
	return fmt.Errorf("openrazer: %s (%s): %v", op, h.Name(), err)
}

// buildDevice assembles the capability model for one handle.
func (a *Adapter) buildDevice(h DeviceHandle) *backend.Device {
	serial := deviceSerial(h)

	d := &backend.Device{
		Name:            h.Name(),
		BackendID:       BackendID,
		Serial:          serial,
		FormFactor:      backend.GetFormFactor(normalizeVendorType(h.Type())),
		Monochromatic:   isMonochromatic(h),
		VID:             vidpidOrUnknown(h.VID()),
		PID:             vidpidOrUnknown(h.PID()),
		FirmwareVersion: h.FirmwareVersion(),
		KeyboardLayout:  h.KeyboardLayout(),
		DPI:             a.buildDPI(h),
		Matrix:          a.buildMatrix(h),
	}

	for _, zone := range zoneOrder {
		store := a.zoneStore(h, serial, zone)

		var opts []*backend.Option
		for _, def := range effectDefs {
			if !effectSupported(h, zone, def) {
				continue
			}
			opts = append(opts, a.buildEffectOption(h, zone, store, def))
		}
		if b := a.buildBrightnessOption(h, zone); b != nil {
			opts = append(opts, b)
		}
		if zone == "main" {
			opts = append(opts, a.buildDeviceOptions(h)...)
		}

		// "main" always exists, other zones only when they offer
		// something.
		if len(opts) == 0 && zone != "main" {
			continue
		}
		d.Zones = append(d.Zones, &backend.Zone{
			ID:      zone,
			Label:   zoneLabels[zone],
			Icon:    "zones/" + zone + ".svg",
			Options: opts,
		})
	}

	return d
}

// zoneStore returns the persistence store for one zone of one device.
// Each zone owns its instance; there is no cross-zone or cross-device
// sharing.
func (a *Adapter) zoneStore(h DeviceHandle, serial, zone string) zoneStore {
	if a.nativePersistence {
		return &nativeStore{handle: h, zone: zone, logger: a.logger}
	}
	return &fileStore{store: a.store, serial: serial, zone: zone}
}

// vendorTypeOverrides maps vendor product families to a canonical form
// factor where the daemon's type string is unhelpful.
var vendorTypeOverrides = map[string]string{
	"firefly":     "mousemat",
	"goliathus":   "mousemat",
	"core":        "gpu",
	"blade":       "laptop",
	"basestation": "stand",
	"mug":         "accessory",
}

func normalizeVendorType(vendorType string) string {
	t := strings.ToLower(strings.TrimSpace(vendorType))
	if override, ok := vendorTypeOverrides[t]; ok {
		return override
	}
	return t
}

func isMonochromatic(h DeviceHandle) bool {
	return !h.Has("lighting_led_matrix") && !strings.Contains(h.Name(), "Chroma")
}

func vidpidOrUnknown(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if len(id) != 4 {
		return backend.UnknownVIDPID
	}
	return id
}

// daemonHasPersistence reports whether the daemon records per-zone
// effect state natively.
func daemonHasPersistence(version string) bool {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return false
	}
	return n >= nativePersistenceMajor
}
