package openrazer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/karalabe/hid"

	"github.com/polychromatic/polychromatic-core/internal/backend"
)

// razerVIDNumeric is razerVID as the USB descriptor value.
const razerVIDNumeric = 0x1532

// hidDevice is the slice of USB information the adapter needs from HID
// enumeration.
type hidDevice struct {
	Product string
	PID     string
}

// enumerateRazerHID lists Razer hardware visible on the USB bus,
// deduplicated by product ID (multi-interface devices enumerate once
// per interface).
func enumerateRazerHID() []hidDevice {
	if !hid.Supported() {
		return nil
	}

	seen := make(map[string]bool)
	var devices []hidDevice
	for _, info := range hid.Enumerate(razerVIDNumeric, 0) {
		pid := fmt.Sprintf("%04x", info.ProductID)
		if seen[pid] {
			continue
		}
		seen[pid] = true
		devices = append(devices, hidDevice{Product: info.Product, PID: pid})
	}
	return devices
}

// GetUnsupportedDevices lists Razer hardware visible on the bus that the
// daemon does not control. Known audio hardware sharing the Razer VID is
// excluded: those are documented false positives, not missing drivers.
func (a *Adapter) GetUnsupportedDevices(ctx context.Context) ([]backend.UnknownDevice, error) {
	handles, err := a.client.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("openrazer: enumerating devices: %v", err)
	}

	controlled := make(map[string]bool, len(handles))
	for _, h := range handles {
		controlled[strings.ToLower(h.PID())] = true
	}

	var unknown []backend.UnknownDevice
	for _, dev := range a.enumerateHID() {
		if controlled[dev.PID] || excludedPIDs[dev.PID] {
			continue
		}
		name := dev.Product
		if name == "" {
			name = "Unrecognised Razer Device"
		}
		unknown = append(unknown, backend.UnknownDevice{
			Name:       name,
			FormFactor: backend.GetFormFactor("unrecognised"),
			VID:        razerVID,
			PID:        dev.PID,
		})
	}
	return unknown, nil
}

// Troubleshoot runs environment checks against the daemon installation.
func (a *Adapter) Troubleshoot(ctx context.Context, progress backend.ProgressFunc) ([]backend.TestResult, error) {
	if progress == nil {
		progress = func(string) {}
	}
	var results []backend.TestResult

	progress("Checking the daemon is installed...")
	daemonPath, err := exec.LookPath("openrazer-daemon")
	results = append(results, backend.TestResult{
		ID:         "daemon_installed",
		Label:      "OpenRazer daemon is installed",
		State:      passFail(err == nil),
		Suggestion: "Install the 'openrazer-daemon' package for your distribution.",
	})

	progress("Checking the daemon is running...")
	if daemonPath == "" {
		results = append(results, backend.TestResult{
			ID:    "daemon_running",
			Label: "OpenRazer daemon is running",
			State: backend.TestSkipped,
		})
	} else {
		err = a.client.Connect(ctx)
		results = append(results, backend.TestResult{
			ID:         "daemon_running",
			Label:      "OpenRazer daemon is running",
			State:      passFail(err == nil),
			Suggestion: "Start the daemon: openrazer-daemon, or log out and in again.",
		})
	}

	progress("Checking for registered devices...")
	handles, devErr := a.client.Devices(ctx)
	results = append(results, backend.TestResult{
		ID:         "devices_registered",
		Label:      "Daemon registered at least one device",
		State:      passFail(devErr == nil && len(handles) > 0),
		Suggestion: "The daemon may lack a driver for your device. Check the OpenRazer device list.",
	})

	progress("Checking Razer hardware is visible on the USB bus...")
	visible := a.enumerateHID()
	if !hid.Supported() {
		results = append(results, backend.TestResult{
			ID:    "hardware_visible",
			Label: "Razer hardware visible over USB",
			State: backend.TestSkipped,
		})
	} else {
		results = append(results, backend.TestResult{
			ID:         "hardware_visible",
			Label:      "Razer hardware visible over USB",
			State:      passFail(len(visible) > 0),
			Suggestion: "No Razer hardware found. Check cables and USB passthrough for virtual machines.",
		})
	}

	return results, nil
}

func passFail(ok bool) backend.TestState {
	if ok {
		return backend.TestPassed
	}
	return backend.TestFailed
}
