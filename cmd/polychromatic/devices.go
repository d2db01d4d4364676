package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/muesli/coral"
)

var devicesCmd = &coral.Command{
	Use:   "devices",
	Short: "List connected devices and the zones they expose",
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		devices := a.mm.GetDevices(ctx)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSERIAL\tTYPE\tBACKEND\tZONES")
		for _, dev := range devices {
			zones := make([]string, 0, len(dev.Zones))
			for _, z := range dev.Zones {
				zones = append(zones, z.ID)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				dev.Name, dev.Serial, dev.FormFactor.ID, dev.BackendID,
				strings.Join(zones, ","))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, b := range a.mm.Backends() {
			unknown, err := b.GetUnsupportedDevices(ctx)
			if err != nil || len(unknown) == 0 {
				continue
			}
			fmt.Println()
			for _, u := range unknown {
				fmt.Printf("Unsupported: %s (%s:%s) via %s\n", u.Name, u.VID, u.PID, b.ID())
			}
		}
		return nil
	},
}

var optionsCmd = &coral.Command{
	Use:   "options <serial>",
	Short: "List the options and parameters of a device's zones",
	Args:  coral.ExactArgs(1),
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

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ZONE\tOPTION\tKIND\tACTIVE\tPARAMETERS")
		for _, zone := range dev.Zones {
			for _, opt := range zone.Options {
				params := make([]string, 0, len(opt.Parameters))
				for _, p := range opt.Parameters {
					params = append(params, p.Data)
				}
				active := ""
				if opt.Active {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					zone.ID, opt.UID, opt.Kind, active, strings.Join(params, ","))
			}
		}
		return w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(devicesCmd)
	RootCmd.AddCommand(optionsCmd)
}
