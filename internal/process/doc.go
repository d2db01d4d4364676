// Package process provides generic subprocess lifecycle management.
//
// It is used for the long-running child processes Polychromatic spawns:
// helper renderers playing software effects, and the openrazer-daemon
// when the backend relaunches it.
//
// Features:
//   - Start/stop subprocess with graceful shutdown (SIGTERM, then SIGKILL)
//   - Log capture from subprocess stdout/stderr, or /dev/null redirection
//     for children that must outlive the launching process
//   - Context-based cancellation for clean shutdown
//
// Example usage:
//
//	mgr := process.NewManager(process.DefaultConfig(
//	    "renderer-PM001",
//	    "/usr/bin/polychromatic",
//	    []string{"play", "--serial", "PM001", "effect.json"},
//	))
//
//	if err := mgr.Start(ctx); err != nil {
//	    return err
//	}
//	defer mgr.Stop()
package process
