package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/scenario"
	"github.com/ifwatch/agent/internal/tui"
)

const simulatedTicks = 90

var (
	runScenario string
	runCompare  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a scenario generator against the agent core and print the result",
	Long: `run replays one of the reference scenarios (A, B, C, D, or all of
them) at 1 Hz for 90 simulated seconds over {eth0, wifi0, lte0, sat0},
printing the per-tick interface table and a transition log as it goes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := scenarioIDs(runScenario)
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
			if runCompare {
				if err := runScenarioCompare(id, agentCfg, cfg.Agent.Interfaces); err != nil {
					return err
				}
				continue
			}
			if err := runScenarioOnce(id, agentCfg, cfg.Agent.Interfaces, true); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runScenario, "scenario", "A", "scenario to run: A, B, C, D, or all")
	runCmd.Flags().BoolVar(&runCompare, "compare", false, "run the scenario once with EWMA smoothing and once without, and compare transition counts")
}

func scenarioIDs(name string) ([]scenario.ID, error) {
	switch name {
	case "A":
		return []scenario.ID{scenario.ScenarioA}, nil
	case "B":
		return []scenario.ID{scenario.ScenarioB}, nil
	case "C":
		return []scenario.ID{scenario.ScenarioC}, nil
	case "D":
		return []scenario.ID{scenario.ScenarioD}, nil
	case "all":
		return []scenario.ID{scenario.ScenarioA, scenario.ScenarioB, scenario.ScenarioC, scenario.ScenarioD}, nil
	default:
		return nil, fmt.Errorf("unknown scenario %q: expected A, B, C, D, or all", name)
	}
}

func newGenerator(id scenario.ID) *scenario.Generator {
	if id == scenario.ScenarioD {
		return scenario.NewGeneratorWithImperfectData(id, scenario.DefaultImperfectDataConfig())
	}
	return scenario.NewGenerator(id)
}

// runScenarioOnce drives one scenario to completion against a fresh agent,
// optionally printing the per-tick table and transition log as it goes.
func runScenarioOnce(id scenario.ID, agentCfg healthcore.AgentConfig, interfaces []string, verbose bool) error {
	if verbose {
		fmt.Printf("\n=== Scenario %s ===\n", id)
	}

	agent := healthcore.NewAgent(agentCfg)
	for _, iface := range interfaces {
		agent.EnsureInterface(iface)
	}
	gen := newGenerator(id)

	for tick := int64(0); tick < simulatedTicks; tick++ {
		agent.NoteTime(tick)

		for _, iface := range interfaces {
			s := gen.Sample(iface, tick)
			if s.Dropped {
				continue
			}
			agent.Ingest(iface, s.Ts, s.M)
		}

		agent.RecordTick()

		if verbose {
			printTick(tick, agent.Snapshots())
			for _, ev := range agent.DrainTransitions() {
				fmt.Printf("  [t=%3d] %-6s %s -> %s (%s)\n", ev.Ts, ev.Iface, ev.From, ev.To, ev.Reason)
			}
		} else {
			agent.DrainTransitions()
		}
	}

	if verbose {
		fmt.Println()
		printSummary(agent.SummaryRanked())
	}

	return nil
}

// runScenarioCompare runs a scenario twice against otherwise-identical agent
// configs, once with EWMA smoothing and once without, and reports the total
// number of transitions each produced per interface.
func runScenarioCompare(id scenario.ID, agentCfg healthcore.AgentConfig, interfaces []string) error {
	fmt.Printf("\n=== Scenario %s (compare: use_ewma=false vs true) ===\n", id)

	ewmaOff := agentCfg
	ewmaOff.Tracker.Score.UseEwma = false
	ewmaOn := agentCfg
	ewmaOn.Tracker.Score.UseEwma = true

	offCounts, err := countTransitions(id, ewmaOff, interfaces)
	if err != nil {
		return err
	}
	onCounts, err := countTransitions(id, ewmaOn, interfaces)
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %12s %12s\n", "iface", "raw", "ewma")
	for _, iface := range interfaces {
		fmt.Printf("%-8s %12d %12d\n", iface, offCounts[iface], onCounts[iface])
	}

	return nil
}

func countTransitions(id scenario.ID, agentCfg healthcore.AgentConfig, interfaces []string) (map[string]int, error) {
	agent := healthcore.NewAgent(agentCfg)
	for _, iface := range interfaces {
		agent.EnsureInterface(iface)
	}
	gen := newGenerator(id)

	counts := make(map[string]int, len(interfaces))
	for tick := int64(0); tick < simulatedTicks; tick++ {
		agent.NoteTime(tick)
		for _, iface := range interfaces {
			s := gen.Sample(iface, tick)
			if s.Dropped {
				continue
			}
			agent.Ingest(iface, s.Ts, s.M)
		}
		agent.RecordTick()
		for _, ev := range agent.DrainTransitions() {
			counts[ev.Iface]++
		}
	}
	return counts, nil
}

func printTick(tick int64, snapshots []healthcore.InterfaceSnapshot) {
	fmt.Printf("t=%-3d ", tick)
	for _, s := range snapshots {
		fmt.Printf("%s %s(%.2f/%.2f)  ", s.Iface, tui.FormatStatus(s.Status), s.ScoreUsed, s.Confidence)
	}
	fmt.Println()
}

func printSummary(items []healthcore.RankedSummaryItem) {
	fmt.Println("Summary (ranked by average score_used):")
	for _, it := range items {
		fmt.Printf("  %-8s avg=%.3f last=%s\n", it.Iface, it.AvgScore, it.LastStatus)
	}
}
