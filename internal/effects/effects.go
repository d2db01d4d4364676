package effects

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFormat is the newest document schema version this build writes
// and understands. Older versions load as-is; newer ones are refused.
const SaveFormat = 8

// Effect type discriminators.
const (
	TypeSequence = "sequence"
	TypeScripted = "scripted"
	TypeLayered  = "layered"
)

// Frame maps "x" → "y" → "#RRGGBB" for one rendered frame of a
// sequence effect. Keys are decimal strings as stored on disk.
type Frame map[string]map[string]string

// Effect is a parsed software effect document.
type Effect struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Author     string  `json:"author"`
	Icon       string  `json:"icon"`
	Summary    string  `json:"summary"`
	SaveFormat int     `json:"save_format"`
	Rows       int     `json:"map_rows"`
	Cols       int     `json:"map_cols"`
	FPS        int     `json:"fps"`
	Loop       bool    `json:"loop"`
	Frames     []Frame `json:"frames"`

	// Path is where the document was read from; not part of the schema.
	Path string `json:"-"`
}

// Preset is a parsed preset document: a named bundle of per-device
// hardware settings applied together.
type Preset struct {
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	SaveFormat int            `json:"save_format"`
	Devices    []PresetDevice `json:"devices"`

	Path string `json:"-"`
}

// PresetDevice is one device's entry in a preset.
type PresetDevice struct {
	Serial    string   `json:"serial"`
	Zone      string   `json:"zone"`
	Option    string   `json:"option"`
	Parameter string   `json:"parameter,omitempty"`
	Colours   []string `json:"colours,omitempty"`
}

// ParseEffect reads and validates an effect document.
func ParseEffect(path string) (*Effect, error) {
	raw, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := requireString(raw, "name"); err != nil {
		return nil, err
	}
	if err := requireString(raw, "type"); err != nil {
		return nil, err
	}
	switch raw["type"] {
	case TypeSequence, TypeScripted, TypeLayered:
	default:
		return nil, fmt.Errorf("%w: unknown effect type %q", ErrBadData, raw["type"])
	}

	var e Effect
	if err := decode(raw, &e); err != nil {
		return nil, err
	}
	e.Path = path
	return &e, nil
}

// ParsePreset reads and validates a preset document.
func ParsePreset(path string) (*Preset, error) {
	raw, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := requireString(raw, "name"); err != nil {
		return nil, err
	}
	if _, ok := raw["devices"].([]any); !ok {
		return nil, fmt.Errorf("%w: devices missing or not a list", ErrBadData)
	}

	var p Preset
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	p.Path = path
	return &p, nil
}

// load reads a document and runs the checks common to every format:
// the file exists, holds a JSON object, and its save_format is an
// integer this build understands.
func load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadData, err)
	}

	version, ok := raw["save_format"].(float64)
	if !ok || version != float64(int(version)) {
		return nil, fmt.Errorf("%w: save_format missing or not an integer", ErrBadData)
	}
	if int(version) > SaveFormat {
		return nil, fmt.Errorf("%w: document is version %d, this build understands up to %d",
			ErrNewerFormat, int(version), SaveFormat)
	}
	return raw, nil
}

func requireString(raw map[string]any, key string) error {
	v, ok := raw[key]
	if !ok {
		return fmt.Errorf("%w: %s missing", ErrBadData, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fmt.Errorf("%w: %s must be a non-empty string", ErrBadData, key)
	}
	return nil
}

// decode re-marshals the validated map into the typed struct. Type
// mismatches on optional fields surface here as ErrBadData.
func decode(raw map[string]any, v any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadData, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadData, err)
	}
	return nil
}
