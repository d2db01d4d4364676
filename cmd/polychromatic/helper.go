package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/polychromatic/polychromatic-core/internal/infrastructure/logging"
	"github.com/polychromatic/polychromatic-core/internal/process"
)

// helperLauncher starts a detached renderer process for a software
// effect. The renderer is this same binary invoked with the play
// subcommand; it claims the device's PID slot itself and stops on
// SIGUSR2.
type helperLauncher struct {
	binary  string
	timeout time.Duration
	log     *logging.Logger
}

func (l *helperLauncher) LaunchEffect(ctx context.Context, serial, path string) error {
	binary := l.binary
	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolving renderer binary: %w", err)
		}
		binary = self
	}

	cfg := process.DefaultConfig("effect-"+serial, binary,
		[]string{"play", "--serial", serial, path})
	cfg.GracefulTimeout = l.timeout
	// The renderer outlives this command, so a capture pipe would lose
	// its reader and SIGPIPE the child on its next write.
	cfg.DiscardOutput = true

	mgr := process.NewManager(cfg)
	mgr.SetLogger(l.log)

	// The renderer must outlive this invocation; detach it from the
	// command's context.
	if err := mgr.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	l.log.Info("renderer launched", "serial", serial, "pid", mgr.PID())
	return nil
}
