package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/muesli/coral"
)

var replayCmd = &coral.Command{
	Use:   "replay <serial>",
	Short: "Reapply whatever the device should be showing",
	Long: `Reapply whatever the device should be showing, typically after
resume from suspend left the hardware blank. A recorded software effect
is relaunched; otherwise each zone's active hardware effect is
reapplied.`,
	Args: coral.ExactArgs(1),
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
		return a.mm.ReplayActiveEffect(ctx, dev)
	},
}

var stopEffectCmd = &coral.Command{
	Use:   "stop-effect <serial>",
	Short: "Stop the software effect rendering on a device",
	Args:  coral.ExactArgs(1),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return a.mm.StopSoftwareEffect(ctx, args[0])
	},
}

var historyCmd = &coral.Command{
	Use:   "history <serial>",
	Short: "Show recently applied options for a device",
	Args:  coral.ExactArgs(1),
	RunE: func(cmd *coral.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if a.hist == nil {
			return fmt.Errorf("history is disabled or its database is unavailable")
		}
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		entries, err := a.hist.History(ctx, args[0], limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tZONE\tOPTION\tPARAMETER\tCOLOURS")
		for _, e := range entries {
			colours := ""
			for i, c := range e.Colours {
				if i > 0 {
					colours += ","
				}
				colours += c
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				e.Zone, e.OptionUID, e.Parameter, colours)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum entries to show (default 50)")
	RootCmd.AddCommand(replayCmd)
	RootCmd.AddCommand(stopEffectCmd)
	RootCmd.AddCommand(historyCmd)
}
