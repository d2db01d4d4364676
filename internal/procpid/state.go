package procpid

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DeviceState summarises what currently drives a device's lighting.
type DeviceState int

const (
	// Idle means hardware effects own the device; option active flags
	// are authoritative.
	Idle DeviceState = iota

	// SoftwareEffectActive means a helper process is rendering frames;
	// hardware active flags are stale until the effect stops.
	SoftwareEffectActive

	// PresetActive means a preset was applied and no software effect is
	// running on top of it.
	PresetActive
)

// StateItem identifies the effect or preset recorded in a state
// document.
type StateItem struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Path string `json:"path"`
}

type stateDocument struct {
	Effect *StateItem `json:"effect,omitempty"`
	Preset *StateItem `json:"preset,omitempty"`
}

// SoftwareState is the per-device record of the active software effect
// and preset, persisted as one JSON document per serial. Documents are
// created on first write and never deleted; clearing writes an empty
// document.
type SoftwareState struct {
	path   string
	logger Logger
}

// NewSoftwareState opens the state document for a serial under
// stateDir, creating the directory if needed.
func NewSoftwareState(stateDir, serial string) (*SoftwareState, error) {
	if err := os.MkdirAll(stateDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &SoftwareState{
		path:   filepath.Join(stateDir, serial+".json"),
		logger: noopLogger{},
	}, nil
}

// SetLogger sets the logger for the state document.
func (s *SoftwareState) SetLogger(logger Logger) {
	s.logger = logger
}

// Effect returns the recorded software effect, or nil.
func (s *SoftwareState) Effect() *StateItem {
	return s.read().Effect
}

// Preset returns the recorded preset, or nil.
func (s *SoftwareState) Preset() *StateItem {
	return s.read().Preset
}

// SetEffect records item as the active software effect.
func (s *SoftwareState) SetEffect(item StateItem) error {
	doc := s.read()
	doc.Effect = &item
	return s.write(doc)
}

// ClearEffect removes the software effect record, leaving any preset
// intact.
func (s *SoftwareState) ClearEffect() error {
	doc := s.read()
	doc.Effect = nil
	return s.write(doc)
}

// SetPreset records item as the active preset.
func (s *SoftwareState) SetPreset(item StateItem) error {
	doc := s.read()
	doc.Preset = &item
	return s.write(doc)
}

// ClearPreset removes the preset record, leaving any software effect
// intact.
func (s *SoftwareState) ClearPreset() error {
	doc := s.read()
	doc.Preset = nil
	return s.write(doc)
}

// State reports what currently drives the device. A software effect
// outranks a preset, since a preset may itself have launched one.
func (s *SoftwareState) State() DeviceState {
	doc := s.read()
	switch {
	case doc.Effect != nil:
		return SoftwareEffectActive
	case doc.Preset != nil:
		return PresetActive
	default:
		return Idle
	}
}

// read loads the document. A missing or unparsable file yields a fresh
// empty document rather than an error; corruption is logged and the
// next write repairs the file.
func (s *SoftwareState) read() stateDocument {
	var doc stateDocument

	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("state document unparsable, starting fresh", "path", s.path, "error", err)
		return stateDocument{}
	}
	return doc
}

func (s *SoftwareState) write(doc stateDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state document: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), filePermissions); err != nil {
		return fmt.Errorf("writing state document: %w", err)
	}
	return nil
}
