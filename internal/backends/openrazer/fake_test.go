package openrazer

import (
	"context"
	"errors"
	"fmt"
)

// appliedEffect records one SetEffect call against the fake daemon.
type appliedEffect struct {
	zone   string
	effect string
	req    EffectRequest
}

// matrixWrite records one SetMatrix call.
type matrixWrite struct {
	x, y    int
	r, g, b uint8
}

// fakeHandle implements DeviceHandle in memory.
type fakeHandle struct {
	name     string
	serial   string
	devType  string
	vid      string
	pid      string
	firmware string
	layout   string

	caps map[string]bool

	effects     []appliedEffect
	effectErr   error
	brightness  map[string]int
	zoneActive  map[string]bool
	gameMode    bool
	pollRate    int
	pollRates   []int
	dpiX, dpiY  int
	maxDPI      int
	dpiStages   []int
	idleTime    int
	lowBattery  int
	rows, cols  int
	matrixSets  []matrixWrite
	drawCount   int
	persist     map[string]ZoneState
	persistErrs map[string]error
}

func newFakeHandle(name, serial, pid string, caps ...string) *fakeHandle {
	h := &fakeHandle{
		name:       name,
		serial:     serial,
		devType:    "keyboard",
		vid:        "1532",
		pid:        pid,
		firmware:   "v1.0",
		layout:     "en_GB",
		caps:       make(map[string]bool),
		brightness: make(map[string]int),
		zoneActive: make(map[string]bool),
		pollRate:   500,
		pollRates:  []int{125, 500, 1000},
		persist:    make(map[string]ZoneState),
	}
	for _, c := range caps {
		h.caps[c] = true
	}
	return h
}

func (h *fakeHandle) Name() string            { return h.name }
func (h *fakeHandle) Serial() string          { return h.serial }
func (h *fakeHandle) Type() string            { return h.devType }
func (h *fakeHandle) VID() string             { return h.vid }
func (h *fakeHandle) PID() string             { return h.pid }
func (h *fakeHandle) FirmwareVersion() string { return h.firmware }
func (h *fakeHandle) KeyboardLayout() string  { return h.layout }

func (h *fakeHandle) Has(capability string) bool { return h.caps[capability] }

func (h *fakeHandle) SetEffect(zone, effect string, req EffectRequest) error {
	if h.effectErr != nil {
		return h.effectErr
	}
	h.effects = append(h.effects, appliedEffect{zone: zone, effect: effect, req: req})
	return nil
}

func (h *fakeHandle) lastEffect() appliedEffect {
	if len(h.effects) == 0 {
		return appliedEffect{}
	}
	return h.effects[len(h.effects)-1]
}

func (h *fakeHandle) Brightness(zone string) (int, error) { return h.brightness[zone], nil }
func (h *fakeHandle) SetBrightness(zone string, percent int) error {
	h.brightness[zone] = percent
	return nil
}
func (h *fakeHandle) Active(zone string) (bool, error) { return h.zoneActive[zone], nil }
func (h *fakeHandle) SetActive(zone string, active bool) error {
	h.zoneActive[zone] = active
	return nil
}

func (h *fakeHandle) GameMode() (bool, error) { return h.gameMode, nil }
func (h *fakeHandle) SetGameMode(enabled bool) error {
	h.gameMode = enabled
	return nil
}

func (h *fakeHandle) PollRate() (int, error) { return h.pollRate, nil }
func (h *fakeHandle) SetPollRate(rate int) error {
	h.pollRate = rate
	return nil
}
func (h *fakeHandle) SupportedPollRates() []int { return h.pollRates }

func (h *fakeHandle) DPI() (int, int, error) { return h.dpiX, h.dpiY, nil }
func (h *fakeHandle) SetDPI(x, y int) error {
	h.dpiX, h.dpiY = x, y
	return nil
}
func (h *fakeHandle) MaxDPI() int      { return h.maxDPI }
func (h *fakeHandle) DPIStages() []int { return h.dpiStages }

func (h *fakeHandle) IdleTime() (int, error) { return h.idleTime, nil }
func (h *fakeHandle) SetIdleTime(seconds int) error {
	h.idleTime = seconds
	return nil
}
func (h *fakeHandle) LowBatteryThreshold() (int, error) { return h.lowBattery, nil }
func (h *fakeHandle) SetLowBatteryThreshold(percent int) error {
	h.lowBattery = percent
	return nil
}

func (h *fakeHandle) MatrixDimensions() (int, int) { return h.rows, h.cols }
func (h *fakeHandle) SetMatrix(x, y int, r, g, b uint8) error {
	h.matrixSets = append(h.matrixSets, matrixWrite{x, y, r, g, b})
	return nil
}
func (h *fakeHandle) DrawMatrix() error {
	h.drawCount++
	return nil
}

func (h *fakeHandle) ZonePersistence(zone string) (ZoneState, error) {
	if err, ok := h.persistErrs[zone]; ok {
		return ZoneState{}, err
	}
	st, ok := h.persist[zone]
	if !ok {
		return ZoneState{}, fmt.Errorf("zone %s has no persistence", zone)
	}
	return st, nil
}

// fakeClient implements Client in memory.
type fakeClient struct {
	handles    []DeviceHandle
	version    string
	connectErr error
	// failures is how many Connect calls fail before succeeding.
	failures  int
	connects  int
	restarted bool
	// noPersistence models a client whose handles cannot read the
	// daemon's per-zone records.
	noPersistence bool
}

func (c *fakeClient) Connect(context.Context) error {
	c.connects++
	if c.connectErr != nil {
		return c.connectErr
	}
	if c.connects <= c.failures {
		return errors.New("daemon not ready")
	}
	return nil
}

func (c *fakeClient) DaemonVersion() string { return c.version }

func (c *fakeClient) SupportsPersistence() bool { return !c.noPersistence }

func (c *fakeClient) Devices(context.Context) ([]DeviceHandle, error) {
	return c.handles, nil
}

func (c *fakeClient) RestartDaemon(context.Context) error {
	c.restarted = true
	return nil
}

// newTestAdapter builds an initialised adapter over a fake daemon with
// the file persistence fallback (daemon version 2.x).
func newTestAdapter(t interface {
	TempDir() string
	Fatalf(format string, args ...any)
}, client *fakeClient) *Adapter {
	if client.version == "" {
		client.version = "2.9.0"
	}
	a, err := New(client, Options{
		PersistenceDir: t.TempDir(),
		SysfsRoot:      t.TempDir(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.enumerateHID = func() []hidDevice { return nil }
	if err := a.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return a
}
