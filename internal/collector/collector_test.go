package collector

import (
	"testing"
	"time"

	"github.com/ifwatch/agent/internal/config"
	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/scenario"
	"github.com/ifwatch/agent/internal/storage"
)

func testConfig(ifaces []string) *config.Config {
	cfg := config.Default()
	cfg.Agent.Interfaces = ifaces
	cfg.Agent.Interval = time.Millisecond
	return cfg
}

func TestCollectorRunTickDrivesAgentAndBroadcasts(t *testing.T) {
	cfg := testConfig([]string{"eth0"})
	agent := healthcore.NewAgent(healthcore.DefaultAgentConfig())
	sources := map[string]Source{"eth0": scenario.NewGenerator(scenario.ScenarioA)}
	mem := storage.NewMemoryBuffer(10)

	c := NewCollector(cfg, agent, sources, nil, mem)
	sub := c.Subscribe()

	for i := 0; i < 90; i++ {
		c.runTick()
	}

	snapshots := 0
	transitions := 0
drain:
	for {
		select {
		case ev := <-sub:
			switch ev.Type {
			case "snapshot":
				snapshots++
			case "transition":
				transitions++
			}
		default:
			break drain
		}
	}

	if snapshots == 0 {
		t.Error("expected at least one broadcast snapshot event")
	}
	if transitions == 0 {
		t.Error("expected eth0 to promote to Healthy at least once")
	}

	stats := c.GetStats("eth0")
	if stats.SampleCount == 0 {
		t.Error("expected memory buffer to record score samples for eth0")
	}
}

func TestCollectorUnknownSourceStillTicksWindow(t *testing.T) {
	cfg := testConfig([]string{"eth0"})
	agent := healthcore.NewAgent(healthcore.DefaultAgentConfig())
	c := NewCollector(cfg, agent, map[string]Source{}, nil, storage.NewMemoryBuffer(10))

	c.runTick()
	snaps := agent.Snapshots()
	if len(snaps) != 1 || snaps[0].Iface != "eth0" {
		t.Fatalf("expected eth0 to remain registered with no source, got %+v", snaps)
	}
}
