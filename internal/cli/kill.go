package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

func newKillCmd(ctx *cmdContext) *cobra.Command {
	var (
		all bool
		pid int32
	)

	cmd := &cobra.Command{
		Use:   "kill [port...]",
		Short: "Terminate the listeners on the given ports or pid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && pid == 0 && len(args) == 0 {
				return fmt.Errorf("specify at least one port, --pid or --all")
			}

			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			snap, err := ports.New().Scan(cfg.Monitoring.Ranges())
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			snap = ports.Normalize(snap)

			if pid != 0 {
				target, ok := kill.TargetFor(pid, snap)
				if !ok {
					target = kill.Target{Pid: pid, Label: ports.FallbackCommand(pid)}
				}
				engine := kill.NewEngine(kill.NewPlatform())
				feedback := kill.SingleFeedback(target, engine.Terminate(pid))
				fmt.Fprintln(cmd.OutOrStdout(), feedback.Message)
				if feedback.Severity == kill.SeverityError {
					return fmt.Errorf("kill failed")
				}
				return nil
			}

			targets, err := resolveTargets(snap, args, all)
			if err != nil {
				return err
			}

			engine := kill.NewEngine(kill.NewPlatform())
			var feedback kill.Feedback
			if all {
				feedback = engine.RunBatch(targets)
			} else if len(targets) == 1 {
				feedback = kill.SingleFeedback(targets[0], engine.Terminate(targets[0].Pid))
			} else {
				feedback = engine.RunBatch(targets)
			}

			fmt.Fprintln(cmd.OutOrStdout(), feedback.Message)
			if feedback.Severity == kill.SeverityError {
				return fmt.Errorf("kill failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Terminate every listener in the configured ranges")
	cmd.Flags().Int32Var(&pid, "pid", 0, "Terminate a specific pid instead of resolving ports")

	return cmd
}

// resolveTargets maps the requested ports onto pids from the snapshot. A
// port nobody listens on is an error; the scan already happened, so the
// caller is asking to kill something that is not there.
func resolveTargets(snap ports.Snapshot, args []string, all bool) ([]kill.Target, error) {
	if all {
		return kill.TargetsFor(snap), nil
	}

	var filtered ports.Snapshot
	for _, arg := range args {
		rng, err := ports.ParseRange(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", arg, err)
		}
		found := false
		for _, rec := range snap {
			if !rng.Contains(rec.Port) {
				continue
			}
			found = true
			filtered = append(filtered, rec)
		}
		if !found {
			return nil, fmt.Errorf("no listener on port %s", arg)
		}
	}
	return kill.TargetsFor(ports.Normalize(filtered)), nil
}
