package openrazer

import (
	"fmt"
	"strconv"

	"github.com/polychromatic/polychromatic-core/internal/persistence"
)

// zoneStore remembers the last applied effect for one zone of one
// device. Each zone owns its own store instance; state is never shared
// between zones or devices.
type zoneStore interface {
	// state returns a best-effort snapshot of the last applied effect.
	// A zone with no record yields the zero ZoneState.
	state() ZoneState

	// record remembers an applied effect. Native stores are written by
	// the daemon itself, so recording there is a no-op.
	record(st ZoneState)
}

// nativeStore reads the daemon's own per-zone persistence attributes.
type nativeStore struct {
	handle DeviceHandle
	zone   string
	logger Logger
}

func (s *nativeStore) state() ZoneState {
	st, err := s.handle.ZonePersistence(s.zone)
	if err != nil {
		// Known daemon wart: reading persistence for a zone that keeps
		// none errors instead of returning empty. Treat it as "nothing
		// persisted", never propagate.
		s.logger.Debug("no native persistence for zone", "zone", s.zone, "error", err)
		return ZoneState{}
	}
	return st
}

func (s *nativeStore) record(ZoneState) {}

// fileStore is the fallback for daemon versions without native
// persistence: one flat file per (serial, zone, key).
type fileStore struct {
	store  *persistence.Store
	serial string
	zone   string
}

// Persistence keys used by the file fallback.
const (
	keyEffect  = "effect"
	keySpeed   = "speed"
	keyWaveDir = "wave_dir"

	maxPersistedColours = 3
)

func colourKey(n int) string {
	return fmt.Sprintf("colour_%d", n)
}

func (s *fileStore) state() ZoneState {
	st := ZoneState{}
	if effect := s.store.Get(s.serial, s.zone, keyEffect); effect != persistence.DefaultValue {
		st.Effect = effect
	}
	for i := 1; i <= maxPersistedColours; i++ {
		c := s.store.Get(s.serial, s.zone, colourKey(i))
		if c == persistence.DefaultValue {
			break
		}
		st.Colours = append(st.Colours, c)
	}
	st.Speed, _ = strconv.Atoi(s.store.Get(s.serial, s.zone, keySpeed))
	st.WaveDirection, _ = strconv.Atoi(s.store.Get(s.serial, s.zone, keyWaveDir))
	return st
}

func (s *fileStore) record(st ZoneState) {
	// Write failures degrade replay quality but must not fail the apply
	// that already reached the hardware.
	_ = s.store.Set(s.serial, s.zone, keyEffect, st.Effect)
	for i, c := range st.Colours {
		if i >= maxPersistedColours {
			break
		}
		_ = s.store.Set(s.serial, s.zone, colourKey(i+1), c)
	}
	_ = s.store.Set(s.serial, s.zone, keySpeed, strconv.Itoa(st.Speed))
	_ = s.store.Set(s.serial, s.zone, keyWaveDir, strconv.Itoa(st.WaveDirection))
}
