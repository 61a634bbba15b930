package cli

import (
	stdcontext "context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/portpatrol/internal/app"
	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/cliutil"
	"github.com/Paintersrp/portpatrol/internal/config"
	"github.com/Paintersrp/portpatrol/internal/integrations/brew"
	"github.com/Paintersrp/portpatrol/internal/integrations/docker"
	"github.com/Paintersrp/portpatrol/internal/integrations/winservices"
	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/metrics"
	"github.com/Paintersrp/portpatrol/internal/monitor"
	"github.com/Paintersrp/portpatrol/internal/notify"
	"github.com/Paintersrp/portpatrol/internal/ports"
	"github.com/Paintersrp/portpatrol/internal/tui"

	httpapi "github.com/Paintersrp/portpatrol/internal/api/http"
)

func newRunCmd(ctx *cmdContext) *cobra.Command {
	var (
		headless bool
		apiAddr  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Monitor dev ports until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			interactive := !headless && supportsInteractiveOutput(cmd)
			return runMonitor(cmd, ctx.path(), cfg, interactive, apiAddr)
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Disable the interactive UI and log events as JSON")
	cmd.Flags().StringVar(&apiAddr, "api-addr", "", "Override the status API listen address")

	return cmd
}

func runMonitor(cmd *cobra.Command, configPath string, cfg config.Config, interactive bool, apiAddr string) error {
	runCtx, cancel := stdcontext.WithCancel(cmd.Context())
	defer cancel()

	store := config.NewStore(cfg)
	events := bus.New()
	defer events.Close()
	queue := bus.NewQueue()
	defer queue.Close()

	engine := kill.NewEngine(kill.NewPlatform())
	engine.Observer = func(outcome kill.Outcome) {
		metrics.IncrementKillOutcome(outcome.Verdict.String())
	}

	var (
		containers     bus.ContainerStopper
		services       bus.ServiceStopper
		dockerClient   *docker.Integration
		serviceRefresh func(stdcontext.Context, *bus.Bus)
		managedService func(string, uint16, map[string]struct{}) string
		serviceManager string
	)
	if cfg.Integrations.Docker {
		dockerClient = docker.New()
		containers = dockerClient
	}
	if runtime.GOOS == "windows" {
		if cfg.Integrations.WindowsServices {
			win := winservices.New()
			services = win
			serviceRefresh = win.Refresh
			managedService = winservices.ManagedService
			serviceManager = "service"
		}
	} else if cfg.Integrations.Brew {
		brewClient := brew.New()
		services = brewClient
		serviceRefresh = brewClient.Refresh
		managedService = brew.ManagedService
		serviceManager = "brew"
	}

	worker := bus.NewWorker(queue, events, engine, containers, services)
	go worker.Run(runCtx)

	mon := monitor.New(ports.New(), store, events)
	mon.ObserveScan = metrics.ObserveScan
	mon.ObserveScanError = metrics.IncrementScanError
	go mon.Run(runCtx)

	watcher := config.NewWatcher(configPath, store)
	watcher.OnReload = func(next config.Config) {
		metrics.IncrementConfigReload(true)
		events.Publish(bus.ConfigReloadedEvent(next))
	}
	watcher.OnError = func(err error) {
		metrics.IncrementConfigReload(false)
		events.Publish(bus.ConfigReloadFailedEvent(err))
	}
	go func() {
		if err := watcher.Run(runCtx); err != nil && !errors.Is(err, stdcontext.Canceled) {
			fmt.Fprintf(cmd.ErrOrStderr(), "config watcher: %v\n", err)
		}
	}()

	if dockerClient != nil {
		go dockerClient.Refresh(runCtx, events)
	}
	if serviceRefresh != nil {
		go serviceRefresh(runCtx, events)
	}

	reactor := app.NewReactor(events, cfg)
	notifier := notify.New(cfg.Notifications.Enabled)
	reactor.OnPortsChanged = notifier.PortsChanged
	reactor.OnConfigReloaded = func(next config.Config) {
		// Notification enablement follows the live config.
		notifier = notify.New(next.Notifications.Enabled)
		reactor.OnPortsChanged = notifier.PortsChanged
	}

	addr := cfg.API.Addr
	if apiAddr != "" {
		addr = apiAddr
	}
	if addr != "" {
		server, err := httpapi.NewServer(httpapi.Config{
			Addr:     addr,
			Provider: app.NewStatusProvider(reactor, Version),
		})
		if err != nil {
			return err
		}
		go func() {
			if err := server.Run(runCtx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "status api: %v\n", err)
			}
		}()
	}

	if !interactive {
		enc := json.NewEncoder(cmd.OutOrStdout())
		reactor.OnEvent = func(ev bus.Event) {
			cliutil.EncodeLogEvent(enc, cmd.ErrOrStderr(), ev)
		}
		reactor.Run(runCtx)
		return nil
	}

	ui := tui.New(queue)
	ui.OnReload = watcher.Reload
	ui.ManagedService = managedService
	ui.ServiceManager = serviceManager
	reactor.OnUpdate = ui.Update
	go reactor.Run(runCtx)

	err := ui.Run(runCtx)
	cancel()
	return err
}
