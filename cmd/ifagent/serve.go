package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ifwatch/agent/internal/api"
	"github.com/ifwatch/agent/internal/collector"
	"github.com/ifwatch/agent/internal/config"
	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/ipc"
	"github.com/ifwatch/agent/internal/logging"
	"github.com/ifwatch/agent/internal/probe"
	"github.com/ifwatch/agent/internal/scenario"
	"github.com/ifwatch/agent/internal/storage"
	"github.com/ifwatch/agent/internal/tui"
)

var (
	serveDaemon bool
	serveNoTUI  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the agent continuously, serving the HTTP/WebSocket API and terminal dashboard",
	Long: `serve drives the agent core tick by tick against the configured
sample source (the scenario generator by default, or live probes), persists snapshots to RRD storage, and exposes the result over an HTTP/
WebSocket API. By default it also renders the terminal dashboard in the
foreground; --daemon instead runs headless and exposes a Unix-socket
control channel for "ifagent attach".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, p, err := resolveConfig()
		if err != nil {
			return err
		}
		if err := p.EnsureDirectories(); err != nil {
			return fmt.Errorf("ensure directories: %w", err)
		}

		agentCfg, err := cfg.HealthcoreConfig()
		if err != nil {
			return err
		}

		agent := healthcore.NewAgent(agentCfg)
		sources, err := buildSources(cfg)
		if err != nil {
			return err
		}

		store, err := storage.NewRRDStorage(p.DataDir, cfg.Agent.Interval, cfg.Storage.Retention, cfg.Storage.XFF, cfg.Storage.Aggregation)
		if err != nil {
			return fmt.Errorf("open rrd storage: %w", err)
		}
		defer store.Close()

		mem := storage.NewMemoryBuffer(0)

		coll := collector.NewCollector(cfg, agent, sources, store, mem)
		coll.Start()
		defer coll.Stop()

		server := api.NewServer(cfg)
		server.Handler().SetCollector(coll)
		server.Hub().SetCollector(coll)
		server.StartAsync(cfg.Server.Address)
		defer server.Shutdown(5 * time.Second)

		logging.Info("serve", fmt.Sprintf("listening on %s", cfg.Server.Address), nil)

		if serveDaemon {
			return runDaemon(p.SocketPath, coll)
		}

		if serveNoTUI || !cfg.Server.EnableTUI {
			waitForSignal()
			return nil
		}

		return tui.Run(coll, cfg.Server.Address)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveDaemon, "daemon", false, "run headless, exposing the Unix-socket control channel for attach")
	serveCmd.Flags().BoolVar(&serveNoTUI, "no-tui", false, "run in the foreground without the terminal dashboard")
}

func runDaemon(socketPath string, coll *collector.Collector) error {
	ipcServer := ipc.NewServer(socketPath)
	ipcServer.SetCollector(coll)
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}
	defer ipcServer.Stop()

	logging.Info("serve", fmt.Sprintf("daemon listening on %s", socketPath), nil)
	waitForSignal()
	return nil
}

// buildSources constructs one collector.Source per configured interface,
// either a synthetic scenario generator or a real ICMP/TCP probe adapted
// through probe.HealthSource, per cfg.Agent.Source.
func buildSources(cfg *config.Config) (map[string]collector.Source, error) {
	sources := make(map[string]collector.Source, len(cfg.Agent.Interfaces))

	switch cfg.Agent.Source {
	case "live":
		probes := make(map[string]probe.Probe, len(cfg.Agent.Targets))
		nominal := make(map[string]float64, len(cfg.Agent.Targets))
		var timeout time.Duration
		for _, t := range cfg.Agent.Targets {
			pings := t.Pings
			if pings < 1 {
				pings = 5
			}
			perTarget := time.Duration(t.TimeoutMs) * time.Millisecond
			if perTarget <= 0 {
				perTarget = 2 * time.Second
			}
			if perTarget > timeout {
				timeout = perTarget
			}
			switch t.Type {
			case "tcp":
				probes[t.Interface] = probe.NewTCPProbe(t.Interface, t.Host, t.Port, perTarget, pings)
			default:
				probes[t.Interface] = probe.NewICMPProbe(t.Interface, t.Host, perTarget, pings)
			}
			nominal[t.Interface] = t.NominalThroughputMbps
		}
		src := probe.NewHealthSource(probes, nominal, timeout)
		for _, iface := range cfg.Agent.Interfaces {
			sources[iface] = src
		}
	default:
		gen := scenario.NewGenerator(scenario.ScenarioA)
		for _, iface := range cfg.Agent.Interfaces {
			sources[iface] = gen
		}
	}

	return sources, nil
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
