package main

import (
	"fmt"
	"strconv"

	"github.com/muesli/coral"

	"github.com/polychromatic/polychromatic-core/internal/backend"
	"github.com/polychromatic/polychromatic-core/internal/effects"
	"github.com/polychromatic/polychromatic-core/internal/procpid"
)

var applyColours []string

var applyCmd = &coral.Command{
	Use:   "apply <serial> <zone> <option> [value]",
	Short: "Apply an option to a device zone",
	Long: `Apply an option to a device zone.

The value's meaning depends on the option kind: an effect takes an
optional parameter name, a toggle takes true or false, a slider takes
an integer and a multiple choice option takes one of its parameter
values. Colours are set with repeated --colour flags before applying.`,
	Args: coral.RangeArgs(3, 4),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		serial, zoneID, optionUID := args[0], args[1], args[2]
		value := ""
		if len(args) == 4 {
			value = args[3]
		}

		dev, err := a.mm.GetDeviceBySerial(ctx, serial)
		if err != nil {
			return err
		}
		zone := dev.GetZone(zoneID)
		if zone == nil {
			return fmt.Errorf("device %s has no zone %q", dev.Name, zoneID)
		}
		opt := findZoneOption(zone, optionUID)
		if opt == nil {
			return fmt.Errorf("zone %s has no option %q", zoneID, optionUID)
		}

		if len(applyColours) > 0 {
			opt.Colours = applyColours
		}

		arg, err := buildArgument(opt, value)
		if err != nil {
			return err
		}
		if err := a.mm.ApplyOption(ctx, dev, zoneID, optionUID, arg); err != nil {
			return err
		}
		fmt.Printf("Applied %s to %s/%s\n", optionUID, dev.Name, zoneID)
		return nil
	},
}

var setColourCmd = &coral.Command{
	Use:   "set-colour <serial> <#RRGGBB>",
	Short: "Change the colour of the active effect without changing the effect",
	Args:  coral.ExactArgs(2),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		dev, err := a.mm.GetDeviceBySerial(ctx, args[0])
		if err != nil {
			return err
		}
		if err := dev.Refresh(ctx); err != nil {
			a.log.Warn("device refresh failed, using enumeration state", "error", err)
		}

		zoneID, err := cmd.Flags().GetString("zone")
		if err != nil {
			return err
		}
		if zoneID == "" {
			return a.mm.SetColourForActiveEffectDevice(ctx, dev, args[1])
		}

		zone := dev.GetZone(zoneID)
		if zone == nil {
			return fmt.Errorf("device %s has no zone %q", dev.Name, zoneID)
		}
		pos, err := cmd.Flags().GetInt("position")
		if err != nil {
			return err
		}
		return a.mm.SetColourForActiveEffectZone(ctx, dev.Serial, zone, args[1], pos)
	},
}

var presetCmd = &coral.Command{
	Use:   "preset <path>",
	Short: "Apply a preset document across its devices",
	Args:  coral.ExactArgs(1),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		preset, err := effects.ParsePreset(args[0])
		if err != nil {
			return err
		}

		var firstErr error
		applied := map[string]bool{}
		for _, entry := range preset.Devices {
			dev, err := a.mm.GetDeviceBySerial(ctx, entry.Serial)
			if err != nil {
				a.log.Warn("preset device unavailable", "serial", entry.Serial, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			zone := dev.GetZone(entry.Zone)
			if zone == nil {
				continue
			}
			if opt := findZoneOption(zone, entry.Option); opt != nil && len(entry.Colours) > 0 {
				opt.Colours = entry.Colours
			}
			err = a.mm.ApplyOption(ctx, dev, entry.Zone, entry.Option,
				backend.EffectArgument{Param: entry.Parameter})
			if err != nil {
				a.log.Warn("preset entry failed", "serial", entry.Serial, "zone", entry.Zone, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			applied[entry.Serial] = true
		}

		// Record the preset on every device it touched, after the applies:
		// applying a hardware effect clears the previous records.
		for serial := range applied {
			state, err := procpid.NewSoftwareState(a.cfg.StatesDir(), serial)
			if err != nil {
				continue
			}
			_ = state.SetPreset(procpid.StateItem{
				Name: preset.Name,
				Icon: preset.Icon,
				Path: preset.Path,
			})
		}
		return firstErr
	},
}

// buildArgument converts the command line value into the typed argument
// the option kind expects.
func buildArgument(opt *backend.Option, value string) (backend.Argument, error) {
	switch opt.Kind {
	case backend.OptionEffect:
		return backend.EffectArgument{Param: value}, nil
	case backend.OptionToggle:
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("toggle %s takes true or false: %w", opt.UID, err)
		}
		return backend.ToggleArgument{Enabled: enabled}, nil
	case backend.OptionSlider:
		v, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("slider %s takes an integer: %w", opt.UID, err)
		}
		return backend.SliderArgument{Value: v}, nil
	case backend.OptionMultipleChoice:
		return backend.ChoiceArgument{Data: value}, nil
	default:
		return backend.NoArgument{}, nil
	}
}

func findZoneOption(zone *backend.Zone, uid string) *backend.Option {
	for _, opt := range zone.Options {
		if opt.UID == uid {
			return opt
		}
	}
	return nil
}

func init() {
	applyCmd.Flags().StringSliceVar(&applyColours, "colour", nil, "effect colour as #RRGGBB (repeatable)")
	setColourCmd.Flags().String("zone", "", "restrict to one zone")
	setColourCmd.Flags().Int("position", 0, "colour slot to replace (zone mode)")
	RootCmd.AddCommand(applyCmd)
	RootCmd.AddCommand(setColourCmd)
	RootCmd.AddCommand(presetCmd)
}
