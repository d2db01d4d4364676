package openrazer

import "fmt"

// zoneOrder fixes zone presentation order. Every entry must have a row
// in zonePrefixes; New verifies this at construction time.
var zoneOrder = []string{
	"main",
	"logo",
	"scroll",
	"left",
	"right",
	"backlight",
	"charging",
	"fast_charging",
	"fully_charged",
}

// zonePrefixes maps a zone to the daemon's capability prefix. The main
// zone uses the bare "lighting" prefix; every other zone embeds its name.
var zonePrefixes = map[string]string{
	"main":          "lighting",
	"logo":          "lighting_logo",
	"scroll":        "lighting_scroll",
	"left":          "lighting_left",
	"right":         "lighting_right",
	"backlight":     "lighting_backlight",
	"charging":      "lighting_charging",
	"fast_charging": "lighting_fast_charging",
	"fully_charged": "lighting_fully_charged",
}

var zoneLabels = map[string]string{
	"main":          "Main",
	"logo":          "Logo",
	"scroll":        "Scroll Wheel",
	"left":          "Left",
	"right":         "Right",
	"backlight":     "Backlight",
	"charging":      "Charging",
	"fast_charging": "Fast Charging",
	"fully_charged": "Fully Charged",
}

// validateZoneTables confirms every ordered zone has a prefix and label.
// A missing row is a programming error caught when the adapter is
// constructed, not a runtime lookup failure mid-enumeration.
func validateZoneTables() error {
	for _, zone := range zoneOrder {
		if _, ok := zonePrefixes[zone]; !ok {
			return fmt.Errorf("openrazer: zone %q has no capability prefix", zone)
		}
		if _, ok := zoneLabels[zone]; !ok {
			return fmt.Errorf("openrazer: zone %q has no label", zone)
		}
	}
	return nil
}

// zoneCapability builds the capability string for a zone-scoped
// capability suffix, e.g. ("logo", "spectrum") -> "lighting_logo_spectrum".
func zoneCapability(zone, suffix string) string {
	return zonePrefixes[zone] + "_" + suffix
}

// brightnessCapability returns the capability string gating brightness
// for a zone. Main-zone brightness is a device-level capability that
// bypasses the zone prefix.
func brightnessCapability(zone string) string {
	if zone == "main" {
		return "brightness"
	}
	return zoneCapability(zone, "brightness")
}
