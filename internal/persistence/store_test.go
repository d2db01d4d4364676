package persistence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetMissingKeyReturnsDefault(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if got := store.Get("PM1337", "main", "effect"); got != DefaultValue {
		t.Errorf("Get on missing key = %q, want %q", got, DefaultValue)
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Set("PM1337", "logo", "effect", "breathDual"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := store.Get("PM1337", "logo", "effect"); got != "breathDual" {
		t.Errorf("Get = %q, want breathDual", got)
	}

	// A fresh reader over the same directory sees the write.
	fresh, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore (fresh): %v", err)
	}
	if got := fresh.Get("PM1337", "logo", "effect"); got != "breathDual" {
		t.Errorf("fresh Get = %q, want breathDual", got)
	}
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Set("XX000042", "scroll", "colour_1", "#00FF00"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// One flat file per (serial, zone, key).
	data, err := os.ReadFile(filepath.Join(dir, "XX000042_scroll_colour_1"))
	if err != nil {
		t.Fatalf("reading flat file: %v", err)
	}
	if string(data) != "#00FF00\n" {
		t.Errorf("file contents = %q, want single line value", data)
	}
}

func TestOverwrite(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Set("PM1337", "main", "speed", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set("PM1337", "main", "speed", "3"); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	if got := store.Get("PM1337", "main", "speed"); got != "3" {
		t.Errorf("Get after overwrite = %q, want 3", got)
	}
}
