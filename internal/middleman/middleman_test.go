package middleman

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/polychromatic/polychromatic-core/internal/backend"
	"github.com/polychromatic/polychromatic-core/internal/procpid"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ID() string {
	return m.Called().String(0)
}

func (m *mockBackend) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBackend) GetDevices(ctx context.Context) ([]*backend.Device, error) {
	args := m.Called(ctx)
	devices, _ := args.Get(0).([]*backend.Device)
	return devices, args.Error(1)
}

func (m *mockBackend) GetDeviceByName(ctx context.Context, name string) (*backend.Device, error) {
	args := m.Called(ctx, name)
	dev, _ := args.Get(0).(*backend.Device)
	return dev, args.Error(1)
}

func (m *mockBackend) GetDeviceBySerial(ctx context.Context, serial string) (*backend.Device, error) {
	args := m.Called(ctx, serial)
	dev, _ := args.Get(0).(*backend.Device)
	return dev, args.Error(1)
}

func (m *mockBackend) GetUnsupportedDevices(ctx context.Context) ([]backend.UnknownDevice, error) {
	args := m.Called(ctx)
	devices, _ := args.Get(0).([]backend.UnknownDevice)
	return devices, args.Error(1)
}

func (m *mockBackend) Troubleshoot(ctx context.Context, progress backend.ProgressFunc) ([]backend.TestResult, error) {
	args := m.Called(ctx, progress)
	results, _ := args.Get(0).([]backend.TestResult)
	return results, args.Error(1)
}

func (m *mockBackend) Restart(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type appliedArg struct {
	zone string
	arg  backend.Argument
}

// effectDevice builds a device with one zone carrying an active wave
// effect (direction parameter, one colour) and an inactive spectrum.
// Applies land in the returned slice.
func effectDevice(serial string, applied *[]appliedArg) *backend.Device {
	spectrum := &backend.Option{Kind: backend.OptionEffect, UID: "spectrum"}
	spectrum.Bind(
		func(ctx context.Context, arg backend.Argument) error {
			*applied = append(*applied, appliedArg{"main", arg})
			return nil
		},
		func(ctx context.Context, o *backend.Option) error { return nil },
	)

	wave := &backend.Option{
		Kind:    backend.OptionEffect,
		UID:     "wave",
		Colours: []string{"#FF0000"},
		Parameters: []*backend.Parameter{
			{Data: "1", Label: "Left", Default: true},
			{Data: "2", Label: "Right"},
		},
	}
	wave.Bind(
		func(ctx context.Context, arg backend.Argument) error {
			*applied = append(*applied, appliedArg{"main", arg})
			return nil
		},
		func(ctx context.Context, o *backend.Option) error {
			o.Active = true
			o.Parameters[1].Active = true
			return nil
		},
	)

	return &backend.Device{
		Name:   "Razer Test Device",
		Serial: serial,
		Zones: []*backend.Zone{
			{ID: "main", Label: "Main", Options: []*backend.Option{spectrum, wave}},
		},
	}
}

func newTestMiddleman(t *testing.T) *Middleman {
	t.Helper()
	procs, err := procpid.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return New(Options{
		StateDir: t.TempDir(),
		Procs:    procs,
	})
}

func TestInitKeepsHealthyBackends(t *testing.T) {
	ctx := context.Background()

	broken := &mockBackend{}
	broken.On("ID").Return("broken")
	broken.On("Init", ctx).Return(errors.New("daemon not running"))

	healthy := &mockBackend{}
	healthy.On("ID").Return("openrazer")
	healthy.On("Init", ctx).Return(nil)

	m := newTestMiddleman(t)
	m.Register(broken)
	m.Register(healthy)

	err := m.Init(ctx)
	if err == nil {
		t.Fatal("Init returned nil despite a failing backend")
	}
	if errors.Is(err, ErrNoBackends) {
		t.Error("ErrNoBackends reported while one backend is healthy")
	}
	if got := len(m.Backends()); got != 1 {
		t.Errorf("ready backends = %d, want 1", got)
	}
}

func TestInitAllBackendsFailed(t *testing.T) {
	ctx := context.Background()

	broken := &mockBackend{}
	broken.On("ID").Return("broken")
	broken.On("Init", ctx).Return(errors.New("daemon not running"))

	m := newTestMiddleman(t)
	m.Register(broken)

	if err := m.Init(ctx); !errors.Is(err, ErrNoBackends) {
		t.Errorf("Init = %v, want ErrNoBackends", err)
	}
}

func TestGetDevicesCachedUntilReload(t *testing.T) {
	ctx := context.Background()
	var applied []appliedArg
	dev := effectDevice("PM001", &applied)

	b := &mockBackend{}
	b.On("ID").Return("openrazer")
	b.On("Init", ctx).Return(nil)
	b.On("GetDevices", ctx).Return([]*backend.Device{dev}, nil).Twice()

	m := newTestMiddleman(t)
	m.Register(b)
	if err := m.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if got := m.GetDevices(ctx); len(got) != 1 {
		t.Fatalf("GetDevices = %d devices, want 1", len(got))
	}
	// Served from cache: the backend is not asked again.
	m.GetDevices(ctx)
	m.GetDevices(ctx)

	m.ReloadDeviceCache()
	m.GetDevices(ctx)

	b.AssertExpectations(t)
}

func TestGetDeviceBySerialAcrossBackends(t *testing.T) {
	ctx := context.Background()
	var applied []appliedArg
	dev := effectDevice("PM002", &applied)

	first := &mockBackend{}
	first.On("ID").Return("first")
	first.On("Init", ctx).Return(nil)
	first.On("GetDeviceBySerial", ctx, "PM002").Return(nil, backend.ErrDeviceNotFound)

	second := &mockBackend{}
	second.On("ID").Return("second")
	second.On("Init", ctx).Return(nil)
	second.On("GetDeviceBySerial", ctx, "PM002").Return(dev, nil)

	m := newTestMiddleman(t)
	m.Register(first)
	m.Register(second)
	if err := m.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	got, err := m.GetDeviceBySerial(ctx, "PM002")
	if err != nil {
		t.Fatalf("GetDeviceBySerial: %v", err)
	}
	if got != dev {
		t.Error("wrong device returned")
	}

	first.On("GetDeviceBySerial", ctx, "NOPE").Return(nil, backend.ErrDeviceNotFound)
	second.On("GetDeviceBySerial", ctx, "NOPE").Return(nil, backend.ErrDeviceNotFound)
	if _, err := m.GetDeviceBySerial(ctx, "NOPE"); !errors.Is(err, backend.ErrDeviceNotFound) {
		t.Errorf("GetDeviceBySerial unknown = %v, want ErrDeviceNotFound", err)
	}
}

func TestGetActiveEffect(t *testing.T) {
	m := newTestMiddleman(t)

	var applied []appliedArg
	dev := effectDevice("PM003", &applied)
	zone := dev.Zones[0]

	if got := m.GetActiveEffect(zone); got != nil {
		t.Errorf("GetActiveEffect before refresh = %v, want nil", got.UID)
	}

	if err := dev.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	got := m.GetActiveEffect(zone)
	if got == nil || got.UID != "wave" {
		t.Fatalf("GetActiveEffect = %v, want wave", got)
	}
}

func TestApplyHardwareEffectClearsSoftwareState(t *testing.T) {
	ctx := context.Background()
	m := newTestMiddleman(t)

	var applied []appliedArg
	dev := effectDevice("PM004", &applied)

	// A software effect is recorded as running for this device.
	state, err := procpid.NewSoftwareState(m.opts.StateDir, "PM004")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}
	if err := state.SetEffect(procpid.StateItem{Name: "Lava", Path: "/tmp/lava.json"}); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if err := state.SetPreset(procpid.StateItem{Name: "Gaming"}); err != nil {
		t.Fatalf("SetPreset: %v", err)
	}

	err = m.ApplyOption(ctx, dev, "main", "spectrum", backend.EffectArgument{})
	if err != nil {
		t.Fatalf("ApplyOption: %v", err)
	}

	if len(applied) != 1 {
		t.Fatalf("hardware applies = %d, want 1", len(applied))
	}
	if state.State() != procpid.Idle {
		t.Error("software state not cleared by hardware apply")
	}
	if state.Effect() != nil || state.Preset() != nil {
		t.Error("effect or preset record survived the hardware apply")
	}
}

func TestApplyOptionUnknownTargets(t *testing.T) {
	ctx := context.Background()
	m := newTestMiddleman(t)

	var applied []appliedArg
	dev := effectDevice("PM005", &applied)

	if err := m.ApplyOption(ctx, dev, "logo", "spectrum", backend.EffectArgument{}); !errors.Is(err, ErrUnknownZone) {
		t.Errorf("unknown zone = %v, want ErrUnknownZone", err)
	}
	if err := m.ApplyOption(ctx, dev, "main", "ripple", backend.EffectArgument{}); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("unknown option = %v, want ErrUnknownOption", err)
	}
}

func TestReplayActiveEffectHardware(t *testing.T) {
	ctx := context.Background()
	m := newTestMiddleman(t)

	var applied []appliedArg
	dev := effectDevice("PM006", &applied)

	if err := m.ReplayActiveEffect(ctx, dev); err != nil {
		t.Fatalf("ReplayActiveEffect: %v", err)
	}

	if len(applied) != 1 {
		t.Fatalf("applies = %d, want 1 (only the active effect)", len(applied))
	}
	arg, ok := applied[0].arg.(backend.EffectArgument)
	if !ok {
		t.Fatalf("arg = %T, want EffectArgument", applied[0].arg)
	}
	// The active parameter, not the default, is replayed.
	if arg.Param != "2" {
		t.Errorf("replayed param = %q, want active parameter \"2\"", arg.Param)
	}
}

type stubLauncher struct {
	serial string
	path   string
	calls  int
}

func (s *stubLauncher) LaunchEffect(ctx context.Context, serial, path string) error {
	s.serial, s.path, s.calls = serial, path, s.calls+1
	return nil
}

func TestReplayActiveEffectSoftware(t *testing.T) {
	ctx := context.Background()

	procs, err := procpid.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	launcher := &stubLauncher{}
	m := New(Options{
		StateDir: t.TempDir(),
		Procs:    procs,
		Helper:   launcher,
	})

	var applied []appliedArg
	dev := effectDevice("PM007", &applied)

	state, err := procpid.NewSoftwareState(m.opts.StateDir, "PM007")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}
	if err := state.SetEffect(procpid.StateItem{Name: "Lava", Path: "/tmp/lava.json"}); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}

	if err := m.ReplayActiveEffect(ctx, dev); err != nil {
		t.Fatalf("ReplayActiveEffect: %v", err)
	}

	if launcher.calls != 1 || launcher.serial != "PM007" || launcher.path != "/tmp/lava.json" {
		t.Errorf("launcher = %+v, want one launch with the saved path", launcher)
	}
	// The hardware path was not taken.
	if len(applied) != 0 {
		t.Errorf("hardware applies = %d, want 0 while a software effect is recorded", len(applied))
	}
}

func TestSetColourForActiveEffectZone(t *testing.T) {
	ctx := context.Background()
	m := newTestMiddleman(t)

	var applied []appliedArg
	dev := effectDevice("PM008", &applied)
	zone := dev.Zones[0]
	if err := dev.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := m.SetColourForActiveEffectZone(ctx, dev.Serial, zone, "#00FF00", 0); err != nil {
		t.Fatalf("SetColourForActiveEffectZone: %v", err)
	}

	wave := zone.Options[1]
	if wave.Colours[0] != "#00FF00" {
		t.Errorf("colour slot = %q, want #00FF00", wave.Colours[0])
	}
	if len(applied) != 1 {
		t.Fatalf("applies = %d, want 1", len(applied))
	}
	if arg := applied[0].arg.(backend.EffectArgument); arg.Param != "2" {
		t.Errorf("reapplied param = %q, want unchanged \"2\"", arg.Param)
	}

	if err := m.SetColourForActiveEffectZone(ctx, dev.Serial, zone, "#00FF00", 5); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("out-of-range slot = %v, want ErrOutOfRange", err)
	}
}

func TestSetColourNoActiveEffect(t *testing.T) {
	ctx := context.Background()
	m := newTestMiddleman(t)

	var applied []appliedArg
	dev := effectDevice("PM009", &applied)

	err := m.SetColourForActiveEffectZone(ctx, dev.Serial, dev.Zones[0], "#00FF00", 0)
	if !errors.Is(err, ErrNoActiveEffect) {
		t.Errorf("SetColourForActiveEffectZone = %v, want ErrNoActiveEffect", err)
	}
	if err := m.SetColourForActiveEffectDevice(ctx, dev, "#00FF00"); !errors.Is(err, ErrNoActiveEffect) {
		t.Errorf("SetColourForActiveEffectDevice = %v, want ErrNoActiveEffect", err)
	}
}
