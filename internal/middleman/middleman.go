package middleman

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/polychromatic/polychromatic-core/internal/backend"
	"github.com/polychromatic/polychromatic-core/internal/history"
	"github.com/polychromatic/polychromatic-core/internal/procpid"
)

// Logger defines the logging interface used by the Middleman.
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

// HelperLauncher starts a background process that renders a software
// effect document onto a device.
type HelperLauncher interface {
	LaunchEffect(ctx context.Context, serial, path string) error
}

// Options configures a Middleman.
type Options struct {
	// StateDir holds the per-serial software state documents.
	StateDir string

	// Procs manages PID files and signals for helper processes.
	Procs *procpid.Manager

	// Helper relaunches software effects during replay. Optional; when
	// nil, replay falls back to hardware reapplication only.
	Helper HelperLauncher

	// History records successful applies. Optional.
	History *history.Repository
}

// Middleman aggregates vendor backends behind one device list and
// coordinates effect state across them.
type Middleman struct {
	opts   Options
	logger Logger

	mu       sync.RWMutex
	backends []backend.Backend
	ready    []backend.Backend
	devices  []*backend.Device
	cached   bool
}

// New creates a Middleman. Backends are registered before Init.
func New(opts Options) *Middleman {
	return &Middleman{
		opts:   opts,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the middleman.
func (m *Middleman) SetLogger(logger Logger) {
	m.logger = logger
}

// Register adds a backend. Must be called before Init.
func (m *Middleman) Register(b backend.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends = append(m.backends, b)
}

// Init initialises every registered backend. A backend that fails to
// initialise is excluded from the ready set and its error reported;
// the remaining backends stay usable. Only when no backend survives is
// ErrNoBackends returned alongside the collected errors.
func (m *Middleman) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	m.ready = m.ready[:0]
	for _, b := range m.backends {
		if err := b.Init(ctx); err != nil {
			m.logger.Warn("backend failed to initialise", "backend", b.ID(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.ID(), err))
			continue
		}
		m.logger.Info("backend ready", "backend", b.ID())
		m.ready = append(m.ready, b)
	}

	if len(m.ready) == 0 {
		errs = append(errs, ErrNoBackends)
	}
	return errors.Join(errs...)
}

// Backends returns the backends that initialised successfully.
func (m *Middleman) Backends() []backend.Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]backend.Backend, len(m.ready))
	copy(out, m.ready)
	return out
}

// GetDevices returns all devices across ready backends. The list is
// cached until ReloadDeviceCache; a backend that fails enumeration is
// logged and skipped.
func (m *Middleman) GetDevices(ctx context.Context) []*backend.Device {
	m.mu.RLock()
	if m.cached {
		devices := m.devices
		m.mu.RUnlock()
		return devices
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached {
		return m.devices
	}

	var devices []*backend.Device
	for _, b := range m.ready {
		found, err := b.GetDevices(ctx)
		if err != nil {
			m.logger.Warn("device enumeration failed", "backend", b.ID(), "error", err)
			continue
		}
		devices = append(devices, found...)
	}
	m.devices = devices
	m.cached = true
	return devices
}

// ReloadDeviceCache discards the cached device list. The next
// GetDevices call re-enumerates hardware.
func (m *Middleman) ReloadDeviceCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = nil
	m.cached = false
}

// GetDeviceBySerial finds a device by serial across all ready backends,
// or backend.ErrDeviceNotFound.
func (m *Middleman) GetDeviceBySerial(ctx context.Context, serial string) (*backend.Device, error) {
	for _, b := range m.Backends() {
		dev, err := b.GetDeviceBySerial(ctx, serial)
		if err == nil {
			return dev, nil
		}
		if !errors.Is(err, backend.ErrDeviceNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: serial %s", backend.ErrDeviceNotFound, serial)
}

// GetDeviceByName finds a device by display name across all ready
// backends, or backend.ErrDeviceNotFound.
func (m *Middleman) GetDeviceByName(ctx context.Context, name string) (*backend.Device, error) {
	for _, b := range m.Backends() {
		dev, err := b.GetDeviceByName(ctx, name)
		if err == nil {
			return dev, nil
		}
		if !errors.Is(err, backend.ErrDeviceNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: name %s", backend.ErrDeviceNotFound, name)
}

// GetActiveEffect returns the zone's active effect option, or nil when
// no effect is marked active.
func (m *Middleman) GetActiveEffect(zone *backend.Zone) *backend.Option {
	for _, opt := range zone.Options {
		if opt.Kind == backend.OptionEffect && opt.Active {
			return opt
		}
	}
	return nil
}

// ApplyOption applies an option on a device zone. Applying a hardware
// effect first stops any software effect rendering on the device, so
// the two can never be active simultaneously. Successful applies are
// recorded to history.
func (m *Middleman) ApplyOption(ctx context.Context, dev *backend.Device, zoneID, optionUID string, arg backend.Argument) error {
	zone := dev.GetZone(zoneID)
	if zone == nil {
		return fmt.Errorf("%w: %s on %s", ErrUnknownZone, zoneID, dev.Name)
	}
	opt := findOption(zone, optionUID)
	if opt == nil {
		return fmt.Errorf("%w: %s in zone %s", ErrUnknownOption, optionUID, zoneID)
	}

	if opt.Kind == backend.OptionEffect {
		if err := m.StopSoftwareEffect(ctx, dev.Serial); err != nil {
			return fmt.Errorf("stopping software effect before apply: %w", err)
		}
	}

	if err := opt.Apply(ctx, arg); err != nil {
		return err
	}
	m.recordApply(ctx, dev.Serial, zoneID, opt, arg)
	return nil
}

// ReplayActiveEffect reapplies whatever the device should be showing,
// typically after resume from suspend left the hardware blank.
//
// A recorded software effect wins: its helper process is relaunched
// from the saved document path. Otherwise each zone's active hardware
// effect is reapplied with its current (or default) parameter and saved
// colours. Replay is best effort: every zone is attempted and the first
// error is returned afterwards.
func (m *Middleman) ReplayActiveEffect(ctx context.Context, dev *backend.Device) error {
	state, err := m.softwareState(dev.Serial)
	if err != nil {
		return err
	}
	if item := state.Effect(); item != nil {
		if m.opts.Helper == nil {
			return fmt.Errorf("software effect %q recorded but no helper launcher configured", item.Name)
		}
		m.logger.Info("relaunching software effect", "serial", dev.Serial, "effect", item.Name)
		return m.opts.Helper.LaunchEffect(ctx, dev.Serial, item.Path)
	}

	if err := dev.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing %s before replay: %w", dev.Name, err)
	}

	var firstErr error
	for _, zone := range dev.Zones {
		opt := m.GetActiveEffect(zone)
		if opt == nil {
			continue
		}

		arg := backend.EffectArgument{}
		if p := opt.ActiveParameter(); p != nil {
			arg.Param = p.Data
		}
		if err := opt.Apply(ctx, arg); err != nil {
			m.logger.Warn("replay failed for zone", "serial", dev.Serial, "zone", zone.ID, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("zone %s: %w", zone.ID, err)
			}
			continue
		}
		m.recordApply(ctx, dev.Serial, zone.ID, opt, arg)
	}
	return firstErr
}

// SetColourForActiveEffectZone replaces one colour slot of the zone's
// active effect and reapplies it with the same parameter. Speed and
// direction are untouched.
func (m *Middleman) SetColourForActiveEffectZone(ctx context.Context, serial string, zone *backend.Zone, hex string, pos int) error {
	opt := m.GetActiveEffect(zone)
	if opt == nil {
		return fmt.Errorf("%w: zone %s", ErrNoActiveEffect, zone.ID)
	}
	if pos < 0 || pos >= len(opt.Colours) {
		return fmt.Errorf("%w: colour position %d of %d", backend.ErrOutOfRange, pos, len(opt.Colours))
	}

	opt.Colours[pos] = hex
	arg := backend.EffectArgument{}
	if p := opt.ActiveParameter(); p != nil {
		arg.Param = p.Data
	}
	if err := opt.Apply(ctx, arg); err != nil {
		return err
	}
	m.recordApply(ctx, serial, zone.ID, opt, arg)
	return nil
}

// SetColourForActiveEffectDevice sets the primary colour of every zone
// with an active effect. Zones without one are skipped; all zones are
// attempted and the first error returned afterwards.
func (m *Middleman) SetColourForActiveEffectDevice(ctx context.Context, dev *backend.Device, hex string) error {
	var firstErr error
	touched := false
	for _, zone := range dev.Zones {
		opt := m.GetActiveEffect(zone)
		if opt == nil || len(opt.Colours) == 0 {
			continue
		}
		touched = true
		if err := m.SetColourForActiveEffectZone(ctx, dev.Serial, zone, hex, 0); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if !touched && firstErr == nil {
		return fmt.Errorf("%w: device %s", ErrNoActiveEffect, dev.Name)
	}
	return firstErr
}

// StopSoftwareEffect stops the process rendering a software effect on
// the device (if any) and clears both the effect and preset records.
// Hardware-effect application calls this first; the invariant is that
// a hardware effect and a software renderer are never active together.
func (m *Middleman) StopSoftwareEffect(ctx context.Context, serial string) error {
	if m.opts.Procs != nil {
		if err := m.opts.Procs.Stop(serial); err != nil {
			return fmt.Errorf("stopping effect renderer: %w", err)
		}
	}

	state, err := m.softwareState(serial)
	if err != nil {
		return err
	}
	if err := state.ClearEffect(); err != nil {
		return err
	}
	return state.ClearPreset()
}

func (m *Middleman) softwareState(serial string) (*procpid.SoftwareState, error) {
	return procpid.NewSoftwareState(m.opts.StateDir, serial)
}

// recordApply logs a successful application to history. Failures here
// never fail the apply itself.
func (m *Middleman) recordApply(ctx context.Context, serial, zoneID string, opt *backend.Option, arg backend.Argument) {
	if m.opts.History == nil {
		return
	}
	parameter := ""
	if a, ok := arg.(backend.EffectArgument); ok {
		parameter = a.Param
	}
	if err := m.opts.History.RecordApply(ctx, serial, zoneID, opt.UID, parameter, opt.Colours); err != nil {
		m.logger.Warn("recording history entry failed", "serial", serial, "error", err)
	}
}

func findOption(zone *backend.Zone, uid string) *backend.Option {
	for _, opt := range zone.Options {
		if opt.UID == uid {
			return opt
		}
	}
	return nil
}
