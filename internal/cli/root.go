package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/portpatrol/internal/config"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:     "portpatrol",
		Short:   "Monitor and terminate dev-server port listeners",
		Version: Version,
	}

	root.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.portpatrol.yaml)")

	ctx := &cmdContext{configPath: &configPath}
	root.AddCommand(newRunCmd(ctx))
	root.AddCommand(newScanCmd(ctx))
	root.AddCommand(newKillCmd(ctx))
	root.AddCommand(newConfigCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cmdContext struct {
	configPath *string
}

func (c *cmdContext) path() string {
	if c.configPath != nil && *c.configPath != "" {
		return *c.configPath
	}
	return config.DefaultPath()
}

// loadConfig reads the config file, creating it with defaults on first use.
func (c *cmdContext) loadConfig() (config.Config, error) {
	return config.LoadOrCreate(c.path())
}
