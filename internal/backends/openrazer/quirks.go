package openrazer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// razerVID is the USB vendor ID shared by all Razer hardware.
const razerVID = "1532"

// minSerialLength is the shortest vendor serial accepted as-is. Some
// devices report "" or a two-character junk string; those get a
// synthesized serial instead.
const minSerialLength = 3

// excludedPIDs lists product IDs that share the Razer vendor ID but are
// not lighting peripherals. Reporting these as "unsupported devices"
// would be a false positive: they are audio hardware enumerating extra
// HID interfaces.
var excludedPIDs = map[string]bool{
	"0f1e": true, // Kraken Kitty Edition audio controls
	"0f1f": true,
	"0501": true, // Kraken 7.1 audio
	"0510": true, // Seiren X microphone
	"0511": true, // Seiren Elite microphone
}

// legacySysfsPIDs lists BlackWidow 2013-era devices whose legacy wire
// protocol corrupts Pulsate/Static writes through the daemon client.
// For these two effects the adapter bypasses the daemon and writes the
// driver's sysfs attribute directly.
var legacySysfsPIDs = map[string]bool{
	"010d": true, // BlackWidow Ultimate 2013
	"011a": true, // BlackWidow Ultimate 2016 (legacy firmware revisions)
	"011b": true, // BlackWidow Classic
}

// legacySysfsEffects maps option UIDs to the driver attribute written
// for legacy devices.
var legacySysfsEffects = map[string]string{
	"pulsate": "matrix_effect_pulsate",
	"static":  "matrix_effect_static",
}

// synthesizeSerial derives a deterministic serial from a device name:
// the alphanumeric characters, uppercased. Uniqueness is sacrificed for
// determinism when the hardware reports a degenerate serial.
func synthesizeSerial(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// deviceSerial returns the trusted or synthesized serial for a handle.
func deviceSerial(h DeviceHandle) string {
	serial := strings.TrimSpace(h.Serial())
	if len(serial) < minSerialLength {
		return synthesizeSerial(h.Name())
	}
	return serial
}

// usesLegacySysfs reports whether the given option on this device must
// go through the sysfs workaround instead of the daemon client.
func usesLegacySysfs(h DeviceHandle, optionUID string) bool {
	if !legacySysfsPIDs[strings.ToLower(h.PID())] {
		return false
	}
	_, ok := legacySysfsEffects[optionUID]
	return ok
}

// writeLegacySysfs locates the device's driver attribute file by
// VID:PID glob and writes a literal "1", the protocol the legacy driver
// expects.
func writeLegacySysfs(sysfsRoot string, h DeviceHandle, optionUID string) error {
	attr, ok := legacySysfsEffects[optionUID]
	if !ok {
		return fmt.Errorf("openrazer: no sysfs workaround for option %q", optionUID)
	}

	pattern := filepath.Join(sysfsRoot, "*",
		fmt.Sprintf("*%s:%s*", strings.ToUpper(razerVID), strings.ToUpper(h.PID())), attr)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("openrazer: bad sysfs glob for %s: %w", h.Name(), err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("openrazer: no sysfs attribute %s found for %s", attr, h.Name())
	}

	if err := os.WriteFile(matches[0], []byte("1"), 0o200); err != nil {
		return fmt.Errorf("openrazer: writing %s: %w", matches[0], err)
	}
	return nil
}
