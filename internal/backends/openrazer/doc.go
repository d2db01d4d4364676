// Package openrazer implements the Backend contract against the
// OpenRazer daemon.
//
// The daemon itself is reached through the Client interface; the wire
// binding lives outside this package so the adapter can be exercised
// against a fake in tests. Everything vendor-specific stays behind this
// boundary: capability strings, effect name namespaces, per-model quirks
// and the persistence shim for daemon versions without native effect
// persistence.
//
// # Quirks
//
// Real hardware ships with defects this adapter works around:
//
//   - degenerate serial numbers are replaced by a serial synthesized
//     from the device name
//   - audio hardware sharing the Razer USB vendor ID is excluded from
//     unsupported-device detection
//   - BlackWidow 2013-era devices take Pulsate/Static through a sysfs
//     attribute write because the daemon's matrix calls misbehave on
//     their legacy protocol
//   - the DeathStalker Chroma wires two physical LED columns per
//     addressable cell, handled by a decorating matrix
package openrazer
