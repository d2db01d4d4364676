package procpid

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSoftwareStateStartsIdle(t *testing.T) {
	s, err := NewSoftwareState(t.TempDir(), "PM001")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}
	if got := s.State(); got != Idle {
		t.Errorf("State = %v, want Idle", got)
	}
	if s.Effect() != nil || s.Preset() != nil {
		t.Error("fresh state reports an effect or preset")
	}
}

func TestSoftwareStateEffectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSoftwareState(dir, "PM001")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}

	item := StateItem{Name: "Lava Lamp", Icon: "img/lava.svg", Path: "/home/u/.config/polychromatic/effects/lava.json"}
	if err := s.SetEffect(item); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if got := s.State(); got != SoftwareEffectActive {
		t.Errorf("State = %v, want SoftwareEffectActive", got)
	}

	// A fresh reader sees the same document.
	reread, err := NewSoftwareState(dir, "PM001")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}
	got := reread.Effect()
	if got == nil || *got != item {
		t.Errorf("Effect = %+v, want %+v", got, item)
	}

	if err := reread.ClearEffect(); err != nil {
		t.Fatalf("ClearEffect: %v", err)
	}
	if reread.State() != Idle {
		t.Error("state not Idle after clearing the effect")
	}
	// Clearing writes an empty document but never deletes the file.
	if _, err := os.Stat(filepath.Join(dir, "PM001.json")); err != nil {
		t.Errorf("state document missing after clear: %v", err)
	}
}

func TestSoftwareStateEffectOutranksPreset(t *testing.T) {
	s, err := NewSoftwareState(t.TempDir(), "PM002")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}
	if err := s.SetPreset(StateItem{Name: "Gaming"}); err != nil {
		t.Fatalf("SetPreset: %v", err)
	}
	if got := s.State(); got != PresetActive {
		t.Errorf("State = %v, want PresetActive", got)
	}

	if err := s.SetEffect(StateItem{Name: "Rainbow"}); err != nil {
		t.Fatalf("SetEffect: %v", err)
	}
	if got := s.State(); got != SoftwareEffectActive {
		t.Errorf("State = %v, want SoftwareEffectActive while both recorded", got)
	}

	// Clearing the effect falls back to the preset, not to Idle.
	if err := s.ClearEffect(); err != nil {
		t.Fatalf("ClearEffect: %v", err)
	}
	if got := s.State(); got != PresetActive {
		t.Errorf("State = %v, want PresetActive after effect cleared", got)
	}
	if s.Preset() == nil || s.Preset().Name != "Gaming" {
		t.Error("preset lost when effect was cleared")
	}
}

func TestSoftwareStateCorruptDocumentStartsFresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PM003.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seeding corrupt document: %v", err)
	}

	s, err := NewSoftwareState(dir, "PM003")
	if err != nil {
		t.Fatalf("NewSoftwareState: %v", err)
	}
	if got := s.State(); got != Idle {
		t.Errorf("State over corrupt document = %v, want Idle", got)
	}

	// The next write repairs the file.
	if err := s.SetPreset(StateItem{Name: "Focus"}); err != nil {
		t.Fatalf("SetPreset: %v", err)
	}
	if s.Preset() == nil || s.Preset().Name != "Focus" {
		t.Error("preset not readable after repairing corrupt document")
	}
}
