package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/portpatrol/internal/config"
)

func newConfigCmd(ctx *cmdContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with the portpatrol configuration file",
	}
	cmd.AddCommand(newConfigPathCmd(ctx))
	cmd.AddCommand(newConfigShowCmd(ctx))
	cmd.AddCommand(newConfigInitCmd(ctx))
	cmd.AddCommand(newConfigLintCmd(ctx))
	return cmd
}

func newConfigPathCmd(ctx *cmdContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), ctx.path())
			return nil
		},
	}
}

func newConfigShowCmd(ctx *cmdContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCmd(ctx *cmdContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadOrCreate(ctx.path()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.path())
			return nil
		},
	}
}

func newConfigLintCmd(ctx *cmdContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(ctx.path()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			return nil
		},
	}
}
