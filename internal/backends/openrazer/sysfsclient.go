package openrazer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// driverTypes maps OpenRazer kernel driver directories to the device
// type they register.
var driverTypes = map[string]string{
	"razerkbd":       "keyboard",
	"razermouse":     "mouse",
	"razerkraken":    "headset",
	"razeraccessory": "accessory",
	"razermug":       "mug",
}

// zoneAttrPrefixes maps a zone to the prefix its driver attributes
// carry. The main zone's attributes are unprefixed.
var zoneAttrPrefixes = map[string]string{
	"main":          "",
	"logo":          "logo_",
	"scroll":        "scroll_",
	"left":          "left_",
	"right":         "right_",
	"backlight":     "backlight_",
	"charging":      "charging_",
	"fast_charging": "fast_charging_",
	"fully_charged": "fully_charged_",
}

// SysfsClient drives Razer hardware through the OpenRazer kernel
// drivers' sysfs attribute files. It is the production Client: the
// capability namespace maps onto attribute file presence, so a device
// supports exactly what its driver exposes.
//
// Features the driver does not publish (DPI range tables, custom frame
// buffer dimensions, native zone persistence) report as absent; the
// adapter's fallbacks cover them.
type SysfsClient struct {
	root string

	mu      sync.Mutex
	version string
}

// NewSysfsClient creates a client over the given HID driver root.
// Empty means the system default.
func NewSysfsClient(root string) *SysfsClient {
	if root == "" {
		root = defaultSysfsRoot
	}
	return &SysfsClient{root: root}
}

// Connect verifies the OpenRazer drivers are loaded and probes the
// daemon version.
func (c *SysfsClient) Connect(ctx context.Context) error {
	found := false
	for driver := range driverTypes {
		if info, err := os.Stat(filepath.Join(c.root, driver)); err == nil && info.IsDir() {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("no OpenRazer kernel drivers under %s (driver not installed or not loaded)", c.root)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = probeDaemonVersion(ctx)
	return nil
}

// DaemonVersion returns the daemon version probed at Connect, or
// "0.0.0" when the daemon binary is absent.
func (c *SysfsClient) DaemonVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// SupportsPersistence is always false: the kernel drivers keep no
// record of the last applied effect, whatever the daemon version says.
func (c *SysfsClient) SupportsPersistence() bool { return false }

// Devices enumerates every bound Razer device across the drivers.
func (c *SysfsClient) Devices(ctx context.Context) ([]DeviceHandle, error) {
	var handles []DeviceHandle
	for driver, devType := range driverTypes {
		driverDir := filepath.Join(c.root, driver)
		entries, err := os.ReadDir(driverDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !strings.Contains(entry.Name(), ":"+strings.ToUpper(razerVID)+":") {
				continue
			}
			h, err := newSysfsHandle(filepath.Join(driverDir, entry.Name()), devType)
			if err != nil {
				continue
			}
			handles = append(handles, h)
		}
	}
	return handles, nil
}

// RestartDaemon stops the daemon and relaunches it detached.
func (c *SysfsClient) RestartDaemon(ctx context.Context) error {
	path, err := exec.LookPath("openrazer-daemon")
	if err != nil {
		return fmt.Errorf("openrazer-daemon not installed: %w", err)
	}

	// Stop failures are expected when the daemon already crashed.
	_ = exec.CommandContext(ctx, path, "--stop").Run()

	cmd := exec.CommandContext(ctx, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("relaunching openrazer-daemon: %w", err)
	}
	return cmd.Process.Release()
}

func probeDaemonVersion(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "openrazer-daemon", "--version").Output()
	if err != nil {
		return "0.0.0"
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "0.0.0"
	}
	return fields[len(fields)-1]
}

// sysfsHandle is one bound device directory.
type sysfsHandle struct {
	dir     string
	devType string
	vid     string
	pid     string
	attrs   map[string]bool
}

func newSysfsHandle(dir, devType string) (*sysfsHandle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]bool, len(entries))
	for _, entry := range entries {
		attrs[entry.Name()] = true
	}

	// Directory names look like 0003:1532:010D.0003.
	vid, pid := "", ""
	parts := strings.Split(filepath.Base(dir), ":")
	if len(parts) == 3 {
		vid = strings.ToLower(parts[1])
		pid = strings.ToLower(strings.SplitN(parts[2], ".", 2)[0])
	}

	return &sysfsHandle{
		dir:     dir,
		devType: devType,
		vid:     vid,
		pid:     pid,
		attrs:   attrs,
	}, nil
}

func (h *sysfsHandle) readAttr(attr string) (string, error) {
	data, err := os.ReadFile(filepath.Join(h.dir, attr))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (h *sysfsHandle) readAttrInt(attr string) (int, error) {
	s, err := h.readAttr(attr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

func (h *sysfsHandle) writeAttr(attr string, data []byte) error {
	return os.WriteFile(filepath.Join(h.dir, attr), data, 0o644)
}

func (h *sysfsHandle) Name() string {
	name, _ := h.readAttr("device_type")
	return name
}

func (h *sysfsHandle) Serial() string {
	serial, _ := h.readAttr("device_serial")
	return serial
}

func (h *sysfsHandle) Type() string { return h.devType }
func (h *sysfsHandle) VID() string  { return h.vid }
func (h *sysfsHandle) PID() string  { return h.pid }

func (h *sysfsHandle) FirmwareVersion() string {
	fw, _ := h.readAttr("firmware_version")
	return fw
}

func (h *sysfsHandle) KeyboardLayout() string {
	layout, _ := h.readAttr("kbd_layout")
	return layout
}

func (h *sysfsHandle) Has(capability string) bool {
	attr, ok := capabilityAttribute(capability)
	return ok && h.attrs[attr]
}

// capabilityAttribute resolves a daemon capability string to the driver
// attribute backing it.
func capabilityAttribute(capability string) (string, bool) {
	switch capability {
	case "brightness":
		return "matrix_brightness", true
	case "game_mode_led":
		return "game_led_state", true
	case "poll_rate":
		return "poll_rate", true
	case "dpi":
		return "dpi", true
	case "set_idle_time":
		return "device_idle_time", true
	case "set_low_battery_threshold":
		return "charge_low_threshold", true
	case "lighting_led_matrix":
		return "matrix_custom_frame", true
	}

	zone, suffix, ok := splitZoneCapability(capability)
	if !ok {
		return "", false
	}
	prefix := zoneAttrPrefixes[zone]
	switch suffix {
	case "brightness":
		return prefix + "led_brightness", true
	case "active":
		if prefix == "" {
			return "", false
		}
		return prefix + "led_state", true
	}
	return prefix + "matrix_effect_" + effectAttrBase(suffix), true
}

// splitZoneCapability resolves a zone-scoped capability by its longest
// matching prefix, so "lighting_logo_spectrum" binds to the logo zone
// rather than main's bare "lighting".
func splitZoneCapability(capability string) (zone, suffix string, ok bool) {
	best := ""
	for z, p := range zonePrefixes {
		if strings.HasPrefix(capability, p+"_") && len(p) > len(best) {
			best = p
			zone = z
		}
	}
	if best == "" {
		return "", "", false
	}
	return zone, capability[len(best)+1:], true
}

// effectAttrBase collapses colour-variant capability suffixes onto the
// single driver attribute serving them: breath_single, breath_dual and
// breath_triple all write matrix_effect_breath.
func effectAttrBase(suffix string) string {
	if i := strings.IndexByte(suffix, '_'); i > 0 {
		switch base := suffix[:i]; base {
		case "breath", "starlight", "ripple":
			return base
		}
	}
	return suffix
}

func (h *sysfsHandle) SetEffect(zone, effect string, req EffectRequest) error {
	base, variant := splitEffectName(effect)
	attr := zoneAttrPrefixes[zone] + "matrix_effect_" + base
	if !h.attrs[attr] {
		return fmt.Errorf("device exposes no %s attribute", attr)
	}
	return h.writeAttr(attr, effectPayload(base, variant, req))
}

// splitEffectName divides a daemon effect name at its first capital:
// "breathTriple" -> ("breath", "triple").
func splitEffectName(effect string) (base, variant string) {
	for i := 0; i < len(effect); i++ {
		if effect[i] >= 'A' && effect[i] <= 'Z' {
			return effect[:i], strings.ToLower(effect[i:i+1]) + effect[i+1:]
		}
	}
	return effect, ""
}

// effectPayload builds the byte sequence the driver expects for an
// effect write. Colour-less writes are the literal "1".
func effectPayload(base, variant string, req EffectRequest) []byte {
	colourBytes := func() []byte {
		var out []byte
		for _, c := range req.Colours {
			out = append(out, c[0], c[1], c[2])
		}
		return out
	}

	switch base {
	case "wave":
		return []byte(strconv.Itoa(req.Direction))
	case "reactive":
		return append([]byte{byte(req.Speed)}, colourBytes()...)
	case "starlight":
		speed := req.Speed
		if speed == 0 {
			speed = 1
		}
		return append([]byte{byte(speed)}, colourBytes()...)
	case "breath", "static", "blinking", "ripple":
		if variant == "random" || len(req.Colours) == 0 {
			return []byte("1")
		}
		return colourBytes()
	default:
		// none, spectrum, pulsate and anything parameterless.
		return []byte("1")
	}
}

// Driver brightness attributes hold 0-255; the daemon namespace is
// percent.

func (h *sysfsHandle) Brightness(zone string) (int, error) {
	attr, ok := capabilityAttribute(brightnessCapability(zone))
	if !ok {
		return 0, fmt.Errorf("zone %s has no brightness attribute", zone)
	}
	raw, err := h.readAttrInt(attr)
	if err != nil {
		return 0, err
	}
	return (raw*100 + 127) / 255, nil
}

func (h *sysfsHandle) SetBrightness(zone string, percent int) error {
	attr, ok := capabilityAttribute(brightnessCapability(zone))
	if !ok {
		return fmt.Errorf("zone %s has no brightness attribute", zone)
	}
	return h.writeAttr(attr, []byte(strconv.Itoa(percent*255/100)))
}

func (h *sysfsHandle) Active(zone string) (bool, error) {
	attr, ok := capabilityAttribute(zoneCapability(zone, "active"))
	if !ok {
		return false, fmt.Errorf("zone %s has no led state attribute", zone)
	}
	raw, err := h.readAttrInt(attr)
	return raw == 1, err
}

func (h *sysfsHandle) SetActive(zone string, active bool) error {
	attr, ok := capabilityAttribute(zoneCapability(zone, "active"))
	if !ok {
		return fmt.Errorf("zone %s has no led state attribute", zone)
	}
	value := "0"
	if active {
		value = "1"
	}
	return h.writeAttr(attr, []byte(value))
}

func (h *sysfsHandle) GameMode() (bool, error) {
	raw, err := h.readAttrInt("game_led_state")
	return raw == 1, err
}

func (h *sysfsHandle) SetGameMode(enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return h.writeAttr("game_led_state", []byte(value))
}

func (h *sysfsHandle) PollRate() (int, error) {
	return h.readAttrInt("poll_rate")
}

func (h *sysfsHandle) SetPollRate(rate int) error {
	return h.writeAttr("poll_rate", []byte(strconv.Itoa(rate)))
}

func (h *sysfsHandle) SupportedPollRates() []int {
	return []int{125, 500, 1000}
}

func (h *sysfsHandle) DPI() (int, int, error) {
	s, err := h.readAttr("dpi")
	if err != nil {
		return 0, 0, err
	}
	xs, ys, found := strings.Cut(s, ":")
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing dpi %q: %w", s, err)
	}
	if !found {
		return x, x, nil
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing dpi %q: %w", s, err)
	}
	return x, y, nil
}

func (h *sysfsHandle) SetDPI(x, y int) error {
	return h.writeAttr("dpi", []byte(fmt.Sprintf("%d:%d", x, y)))
}

// MaxDPI is not published by the driver; without it the adapter builds
// no DPI entity for this handle.
func (h *sysfsHandle) MaxDPI() int { return 0 }

func (h *sysfsHandle) DPIStages() []int { return nil }

func (h *sysfsHandle) IdleTime() (int, error) {
	return h.readAttrInt("device_idle_time")
}

func (h *sysfsHandle) SetIdleTime(seconds int) error {
	return h.writeAttr("device_idle_time", []byte(strconv.Itoa(seconds)))
}

func (h *sysfsHandle) LowBatteryThreshold() (int, error) {
	raw, err := h.readAttrInt("charge_low_threshold")
	if err != nil {
		return 0, err
	}
	return (raw*100 + 127) / 255, nil
}

func (h *sysfsHandle) SetLowBatteryThreshold(percent int) error {
	return h.writeAttr("charge_low_threshold", []byte(strconv.Itoa(percent*255/100)))
}

// The driver exposes the custom frame buffer but not its dimensions, so
// per-LED addressing is unavailable through sysfs alone.
func (h *sysfsHandle) MatrixDimensions() (int, int) { return 0, 0 }

func (h *sysfsHandle) SetMatrix(int, int, uint8, uint8, uint8) error {
	return fmt.Errorf("custom frame dimensions unavailable through sysfs")
}

func (h *sysfsHandle) DrawMatrix() error {
	return fmt.Errorf("custom frame dimensions unavailable through sysfs")
}

func (h *sysfsHandle) ZonePersistence(string) (ZoneState, error) {
	return ZoneState{}, fmt.Errorf("driver keeps no effect record")
}
