package main

import (
	"errors"
	"fmt"

	"github.com/muesli/coral"

	"github.com/polychromatic/polychromatic-core/internal/backend"
)

var troubleshootCmd = &coral.Command{
	Use:   "troubleshoot",
	Short: "Run environment checks for each backend",
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		failed := false
		for _, b := range a.mm.Backends() {
			fmt.Printf("== %s ==\n", b.ID())
			results, err := b.Troubleshoot(ctx, func(msg string) {
				fmt.Printf("   %s\n", msg)
			})
			if errors.Is(err, backend.ErrNotSupported) {
				fmt.Println("   no troubleshooter on this platform")
				continue
			}
			if err != nil {
				return fmt.Errorf("%s troubleshooter: %w", b.ID(), err)
			}

			for _, r := range results {
				switch r.State {
				case backend.TestPassed:
					fmt.Printf("  PASS %s\n", r.Label)
				case backend.TestSkipped:
					fmt.Printf("  SKIP %s\n", r.Label)
				case backend.TestFailed:
					failed = true
					fmt.Printf("  FAIL %s\n", r.Label)
					if r.Suggestion != "" {
						fmt.Printf("       %s\n", r.Suggestion)
					}
				}
			}
		}
		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

var restartBackendCmd = &coral.Command{
	Use:   "restart-backend [id]",
	Short: "Restart a backend's daemon (all backends when no id given)",
	Args:  coral.MaximumNArgs(1),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		var firstErr error
		for _, b := range a.mm.Backends() {
			if len(args) == 1 && b.ID() != args[0] {
				continue
			}
			if err := b.Restart(ctx); err != nil {
				if errors.Is(err, backend.ErrNotApplicable) {
					continue
				}
				a.log.Error("backend restart failed", "backend", b.ID(), "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			fmt.Printf("Restarted %s\n", b.ID())
		}
		a.mm.ReloadDeviceCache()
		return firstErr
	},
}

func init() {
	RootCmd.AddCommand(troubleshootCmd)
	RootCmd.AddCommand(restartBackendCmd)
}
