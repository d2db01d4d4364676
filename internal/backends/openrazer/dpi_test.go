package openrazer

import (
	"context"
	"errors"
	"testing"

	"github.com/polychromatic/polychromatic-core/internal/backend"
)

func TestDPIStagesKnownTable(t *testing.T) {
	// 8200 has a documented table; the synthesized formula would give
	// [820, 1025, 2050, 4100, 8200] which matches no shipped firmware.
	h := newFakeHandle("Razer DeathAdder 2013", "PM321", "0016")
	h.maxDPI = 8200

	want := []int{800, 1800, 4800, 6400, 8200}
	got := dpiStages(h)
	assertStages(t, got, want)
}

func TestDPIStagesSynthesized(t *testing.T) {
	h := newFakeHandle("Razer Prototype Mouse", "PM322", "0017")
	h.maxDPI = 12000

	want := []int{1200, 1500, 3000, 6000, 12000}
	got := dpiStages(h)
	assertStages(t, got, want)
}

func TestDPIStagesVendorTableWins(t *testing.T) {
	h := newFakeHandle("Razer Viper 8K", "PM323", "0078")
	h.maxDPI = 20000
	h.dpiStages = []int{400, 800, 1600, 3200, 6400}

	assertStages(t, dpiStages(h), h.dpiStages)
}

func TestDPISubEntity(t *testing.T) {
	h := newFakeHandle("Razer Viper 8K", "PM324", "0078")
	h.maxDPI = 20000
	h.dpiX, h.dpiY = 1800, 1800
	client := &fakeClient{handles: []DeviceHandle{h}}
	a := newTestAdapter(t, client)

	dev, err := a.GetDeviceBySerial(context.Background(), "PM324")
	if err != nil {
		t.Fatalf("GetDeviceBySerial: %v", err)
	}
	dpi := dev.DPI
	if dpi == nil {
		t.Fatal("expected a DPI sub-entity")
	}
	if dpi.X != 1800 || dpi.Y != 1800 {
		t.Errorf("initial DPI = %d/%d, want 1800/1800", dpi.X, dpi.Y)
	}

	if err := dpi.Set(context.Background(), 3200, 3200); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if h.dpiX != 3200 || h.dpiY != 3200 {
		t.Errorf("hardware DPI = %d/%d, want 3200/3200", h.dpiX, h.dpiY)
	}

	if err := dpi.Set(context.Background(), 50, 50); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("Set below minimum = %v, want ErrOutOfRange", err)
	}
	if err := dpi.Set(context.Background(), 30000, 30000); !errors.Is(err, backend.ErrOutOfRange) {
		t.Errorf("Set above maximum = %v, want ErrOutOfRange", err)
	}
}

func TestNoDPIForKeyboards(t *testing.T) {
	h := newFakeHandle("Razer BlackWidow Chroma", "PM001", "0203")
	client := &fakeClient{handles: []DeviceHandle{h}}
	a := newTestAdapter(t, client)

	dev, err := a.GetDeviceBySerial(context.Background(), "PM001")
	if err != nil {
		t.Fatalf("GetDeviceBySerial: %v", err)
	}
	if dev.DPI != nil {
		t.Error("device without a sensor reports DPI")
	}
}

func assertStages(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stages = %v, want %v", got, want)
		}
	}
}
