package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/portpatrol/internal/ports"
)

func newScanCmd(ctx *cmdContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the configured port ranges once and print the listeners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			snap, err := ports.New().Scan(cfg.Monitoring.Ranges())
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			snap = ports.Normalize(snap)

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(snap)
			}
			return printSnapshot(cmd, snap)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the snapshot as JSON")

	return cmd
}

func printSnapshot(cmd *cobra.Command, snap ports.Snapshot) error {
	if len(snap) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No listeners in the configured ranges.")
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPID\tCOMMAND")
	for _, rec := range snap {
		fmt.Fprintf(w, "%d\t%d\t%s\n", rec.Port, rec.Pid, rec.Command)
	}
	return w.Flush()
}
