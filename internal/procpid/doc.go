// Package procpid coordinates the processes that make up a
// Polychromatic session: the controller, the tray applet, and one
// helper process per actively-rendering software effect.
//
// Two kinds of durable state live here:
//
//   - PID files, one per named component or per device serial, claiming
//     "this OS process currently owns this component/device". A PID
//     file is only trusted when the referenced process's command line
//     still names a Polychromatic binary; anything else is stale and
//     removed on sight.
//
//   - Software state documents, one JSON file per device serial,
//     recording at most one active custom software effect and/or one
//     active preset. While a software effect is recorded, hardware
//     option active flags are stale and the UI treats them as
//     overridden.
//
// Claiming a component slot is serialized through an advisory file
// lock, so two racing claimants cannot both believe they stopped the
// other. The only cross-process control channel is Unix signals:
// SIGUSR1 asks a component to reload, SIGUSR2 asks it to stop.
package procpid
