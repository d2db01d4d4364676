package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/muesli/coral"

	"github.com/polychromatic/polychromatic-core/internal/backend"
	"github.com/polychromatic/polychromatic-core/internal/effects"
	"github.com/polychromatic/polychromatic-core/internal/procpid"
)

var playSerial string

var playCmd = &coral.Command{
	Use:   "play <effect.json>",
	Short: "Render a software effect onto a device until stopped",
	Long: `Render a software effect onto a device until stopped.

This is the helper mode the launcher spawns in the background. The
process claims the device's PID slot, records the effect in the
device's state document, and renders frames until it receives SIGUSR2
or an interrupt. SIGUSR1 re-reads the effect document.`,
	Args: coral.ExactArgs(1),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return runPlay(ctx, a, playSerial, args[0])
	},
}

func runPlay(ctx context.Context, a *app, serial, path string) error {
	if serial == "" {
		return fmt.Errorf("--serial is required")
	}

	eff, err := effects.ParseEffect(path)
	if err != nil {
		return err
	}
	if eff.Type != effects.TypeSequence {
		return fmt.Errorf("cannot render %s effects, only %s", eff.Type, effects.TypeSequence)
	}

	dev, err := a.mm.GetDeviceBySerial(ctx, serial)
	if err != nil {
		return err
	}
	if dev.Matrix == nil {
		return fmt.Errorf("%s has no addressable matrix", dev.Name)
	}

	// Claiming the slot asks any previous renderer to stop.
	if err := a.procs.SetComponentPID(serial); err != nil {
		return err
	}
	defer func() {
		if err := a.procs.ReleaseComponentPID(serial); err != nil {
			a.log.Warn("releasing pid slot failed", "serial", serial, "error", err)
		}
	}()

	state, err := procpid.NewSoftwareState(a.cfg.StatesDir(), serial)
	if err != nil {
		return err
	}
	state.SetLogger(a.log.With("component", "state"))
	if err := state.SetEffect(procpid.StateItem{
		Name: eff.Name,
		Icon: eff.Icon,
		Path: path,
	}); err != nil {
		return err
	}
	defer func() {
		if err := state.ClearEffect(); err != nil {
			a.log.Warn("clearing effect record failed", "serial", serial, "error", err)
		}
	}()

	reload := make(chan os.Signal, 1)
	stop := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGUSR1)
	signal.Notify(stop, syscall.SIGUSR2)
	defer signal.Stop(reload)
	defer signal.Stop(stop)

	a.log.Info("rendering effect", "serial", serial, "effect", eff.Name, "fps", eff.FPS)
	return renderLoop(ctx, a, dev.Matrix, eff, path, reload, stop)
}

// Frame-rate bounds for effect documents. Values outside the range are
// clamped rather than rejected; hardware cannot keep up beyond maxFPS
// and an interval of zero would break the ticker.
const (
	defaultFPS = 10
	maxFPS     = 60
)

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = defaultFPS
	}
	if fps > maxFPS {
		fps = maxFPS
	}
	return time.Second / time.Duration(fps)
}

func renderLoop(ctx context.Context, a *app, matrix backend.Matrix, eff *effects.Effect, path string, reload, stop <-chan os.Signal) error {
	ticker := time.NewTicker(frameInterval(eff.FPS))
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			a.log.Info("stop requested")
			return nil
		case <-reload:
			fresh, err := effects.ParseEffect(path)
			if err != nil {
				a.log.Warn("reload failed, keeping current document", "error", err)
				continue
			}
			eff = fresh
			frame = 0
			ticker.Reset(frameInterval(eff.FPS))
		case <-ticker.C:
			if len(eff.Frames) == 0 {
				continue
			}
			if frame >= len(eff.Frames) {
				if !eff.Loop {
					return nil
				}
				frame = 0
			}
			if err := drawFrame(ctx, matrix, eff.Frames[frame]); err != nil {
				a.log.Warn("frame draw failed", "frame", frame, "error", err)
			}
			frame++
		}
	}
}

// drawFrame stages one frame and submits it. Malformed coordinates or
// colours within a frame are skipped rather than aborting playback.
func drawFrame(ctx context.Context, matrix backend.Matrix, f effects.Frame) error {
	matrix.Clear()
	for xs, column := range f {
		x, err := strconv.Atoi(xs)
		if err != nil {
			continue
		}
		for ys, hex := range column {
			y, err := strconv.Atoi(ys)
			if err != nil {
				continue
			}
			r, g, b, err := parseHexColour(hex)
			if err != nil {
				continue
			}
			_ = matrix.Set(x, y, r, g, b)
		}
	}
	return matrix.Draw(ctx)
}

func parseHexColour(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("colour %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("colour %q is not #RRGGBB", s)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

func init() {
	playCmd.Flags().StringVar(&playSerial, "serial", "", "serial of the device to render onto")
	RootCmd.AddCommand(playCmd)
}
