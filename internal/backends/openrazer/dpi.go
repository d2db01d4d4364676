package openrazer

import (
	"context"

	"github.com/polychromatic/polychromatic-core/internal/backend"
)

// minDPI is the lowest resolution any Razer sensor accepts.
const minDPI = 100

// knownDPIStages are the documented stage tables for sensors whose
// daemon build does not expose one. Synthesis is a last resort; these
// match the tables Razer ships in Synapse.
var knownDPIStages = map[int][]int{
	6400:  {800, 1600, 3200, 4800, 6400},
	8200:  {800, 1800, 4800, 6400, 8200},
	8500:  {800, 1800, 4500, 6400, 8500},
	16000: {800, 1800, 4500, 9000, 16000},
	20000: {800, 1800, 4500, 9000, 20000},
	30000: {800, 1800, 4500, 9000, 30000},
}

// dpiStages returns the stage table for a sensor: the daemon's own
// table when present, then the documented table for this maximum, then
// a synthesized spread across the sensor range.
func dpiStages(h DeviceHandle) []int {
	if stages := h.DPIStages(); len(stages) > 0 {
		return stages
	}
	max := h.MaxDPI()
	if stages, ok := knownDPIStages[max]; ok {
		return stages
	}
	return []int{max / 10, max / 8, max / 4, max / 2, max}
}

// buildDPI constructs the DPI sub-entity for handles with an adjustable
// sensor, or nil.
func (a *Adapter) buildDPI(h DeviceHandle) *backend.DPI {
	max := h.MaxDPI()
	if max <= 0 {
		return nil
	}

	dpi := &backend.DPI{
		Min:    minDPI,
		Max:    max,
		Stages: dpiStages(h),
	}

	dpi.BindDPI(
		func(_ context.Context, x, y int) error {
			if err := h.SetDPI(x, y); err != nil {
				return a.translate("setting DPI", h, err)
			}
			return nil
		},
		func(_ context.Context, d *backend.DPI) error {
			x, y, err := h.DPI()
			if err != nil {
				return a.translate("reading DPI", h, err)
			}
			d.X = x
			d.Y = y
			return nil
		},
	)

	if x, y, err := h.DPI(); err == nil {
		dpi.X = x
		dpi.Y = y
	}

	return dpi
}
