package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/scenario"
)

var (
	benchScenario string
	benchSeconds  int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure agent tick throughput for a scenario",
	Long: `bench runs a scenario for the requested number of simulated seconds
against a fresh agent with no storage or network attached, and reports
ticks/sec and allocations, standing in for the original timing harness
without pulling in a third-party benchmarking library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := scenarioIDs(benchScenario)
		if err != nil {
			return err
		}

		cfg, _, err := resolveConfig()
		if err != nil {
			return err
		}
		agentCfg, err := cfg.HealthcoreConfig()
		if err != nil {
			return err
		}

		for _, id := range ids {
			runBench(id, agentCfg, cfg.Agent.Interfaces, benchSeconds)
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchScenario, "scenario", "A", "scenario to benchmark: A, B, C, D, or all")
	benchCmd.Flags().IntVar(&benchSeconds, "seconds", 10000, "number of simulated ticks to run")
}

func runBench(id scenario.ID, agentCfg healthcore.AgentConfig, interfaces []string, seconds int) {
	agent := healthcore.NewAgent(agentCfg)
	for _, iface := range interfaces {
		agent.EnsureInterface(iface)
	}
	gen := newGenerator(id)

	var memBefore, memAfter runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&memBefore)

	start := time.Now()
	for tick := int64(0); tick < int64(seconds); tick++ {
		agent.NoteTime(tick)
		for _, iface := range interfaces {
			s := gen.Sample(iface, tick)
			if s.Dropped {
				continue
			}
			agent.Ingest(iface, s.Ts, s.M)
		}
		agent.RecordTick()
		agent.DrainTransitions()
	}
	elapsed := time.Since(start)

	runtime.ReadMemStats(&memAfter)

	ticksPerSec := float64(seconds) / elapsed.Seconds()
	allocBytes := memAfter.TotalAlloc - memBefore.TotalAlloc
	allocPerTick := float64(allocBytes) / float64(seconds)

	fmt.Printf("scenario %s: %d ticks in %s (%.0f ticks/sec), %.1f B/tick allocated\n",
		id, seconds, elapsed, ticksPerSec, allocPerTick)
}
