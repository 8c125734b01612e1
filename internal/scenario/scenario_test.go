package scenario

import (
	"testing"

	"github.com/ifwatch/agent/internal/healthcore"
)

func drive(t *testing.T, gen *Generator, iface string, ticks int64) *healthcore.Agent {
	t.Helper()
	a := healthcore.NewAgent(healthcore.DefaultAgentConfig())
	for ts := int64(0); ts < ticks; ts++ {
		a.NoteTime(ts)
		s := gen.Sample(iface, ts)
		if !s.Dropped {
			a.Ingest(iface, s.Ts, s.M)
		}
		a.RecordTick()
	}
	return a
}

func TestScenarioSteadyEth0PromotesOnceAndStays(t *testing.T) {
	gen := NewGenerator(ScenarioA) // eth0 is scenario-independent
	a := drive(t, gen, "eth0", 90)

	transitions := a.DrainTransitions()
	if len(transitions) != 1 {
		t.Fatalf("expected exactly 1 transition for steady eth0, got %d: %+v", len(transitions), transitions)
	}
	snap := a.Snapshots()[0]
	if snap.Status != healthcore.Healthy {
		t.Errorf("final status = %v, want Healthy", snap.Status)
	}
}

func TestScenarioADegradeThenRecover(t *testing.T) {
	gen := NewGenerator(ScenarioA)
	a := healthcore.NewAgent(healthcore.DefaultAgentConfig())

	wasHealthy := false
	sawDegraded := false
	var lastStatus healthcore.Status
	for ts := int64(0); ts < 120; ts++ {
		a.NoteTime(ts)
		s := gen.Sample("wifi0", ts)
		if !s.Dropped {
			a.Ingest("wifi0", s.Ts, s.M)
		}
		a.RecordTick()
		snap := a.Snapshots()[0]
		if snap.Status == healthcore.Healthy {
			wasHealthy = true
		} else if wasHealthy {
			sawDegraded = true
		}
		lastStatus = snap.Status
	}

	if !sawDegraded {
		t.Error("expected wifi0 to leave Healthy at least once during the degrade window")
	}
	if lastStatus != healthcore.Healthy {
		t.Errorf("final status = %v, want Healthy after recovery", lastStatus)
	}
}

func TestScenarioBFlapTrapBoundsTransitions(t *testing.T) {
	rawCfg := healthcore.DefaultAgentConfig()
	rawCfg.Tracker.Score.UseEwma = false
	ewmaCfg := healthcore.DefaultAgentConfig()
	ewmaCfg.Tracker.Score.UseEwma = true

	countTransitions := func(cfg healthcore.AgentConfig) int {
		gen := NewGenerator(ScenarioB)
		a := healthcore.NewAgent(cfg)
		count := 0
		for ts := int64(0); ts < 150; ts++ {
			a.NoteTime(ts)
			s := gen.Sample("wifi0", ts)
			if !s.Dropped {
				a.Ingest("wifi0", s.Ts, s.M)
			}
			a.RecordTick()
			count += len(a.DrainTransitions())
		}
		return count
	}

	rawCount := countTransitions(rawCfg)
	ewmaCount := countTransitions(ewmaCfg)

	if rawCount < ewmaCount {
		t.Errorf("expected raw-mode transition count >= ewma-mode, got raw=%d ewma=%d", rawCount, ewmaCount)
	}
	// A well-tuned hysteresis FSM should not flap on every 15s spike cycle
	// (10 cycles in 150 ticks).
	if rawCount >= 10 {
		t.Errorf("raw-mode transition count too high for a bounded flap trap: %d", rawCount)
	}
}

func TestScenarioCMisleadingThroughputNeverHealthy(t *testing.T) {
	gen := NewGenerator(ScenarioC)
	a := drive(t, gen, "lte0", 120)

	for _, snap := range a.Snapshots() {
		if snap.Status == healthcore.Healthy {
			t.Errorf("lte0 reached Healthy under sustained misleading throughput: %+v", snap)
		}
	}
}

func TestScenarioDMissingAndLateKeepsSnapshotsFinite(t *testing.T) {
	gen := NewGeneratorWithImperfectData(ScenarioD, DefaultImperfectDataConfig())
	a := healthcore.NewAgent(healthcore.DefaultAgentConfig())

	for ts := int64(0); ts < 180; ts++ {
		a.NoteTime(ts)
		for _, iface := range []string{"eth0", "wifi0", "lte0", "sat0"} {
			s := gen.Sample(iface, ts)
			if !s.Dropped {
				a.Ingest(iface, s.Ts, s.M)
			}
		}
		a.RecordTick()

		for _, snap := range a.Snapshots() {
			if snap.Confidence < 0 || snap.Confidence > 1 {
				t.Fatalf("t=%d iface=%s confidence out of range: %v", ts, snap.Iface, snap.Confidence)
			}
			if snap.ScoreUsed < 0 || snap.ScoreUsed > 1 {
				t.Fatalf("t=%d iface=%s score_used out of range: %v", ts, snap.Iface, snap.ScoreUsed)
			}
		}
	}
}

func TestScenarioDDropsAndLateShiftsAreDeterministic(t *testing.T) {
	gen := NewGeneratorWithImperfectData(ScenarioD, DefaultImperfectDataConfig())

	var drops, lates int
	for ts := int64(0); ts < 60; ts++ {
		s := gen.Sample("wifi0", ts)
		if s.Dropped {
			drops++
			continue
		}
		if s.Ts != ts {
			lates++
		}
	}
	if drops == 0 {
		t.Error("expected DefaultImperfectDataConfig to drop at least one sample over 60 ticks")
	}
	if lates == 0 {
		t.Error("expected DefaultImperfectDataConfig to shift at least one sample late over 60 ticks")
	}
}

func TestUnknownInterfaceIsDropped(t *testing.T) {
	gen := NewGenerator(ScenarioA)
	s := gen.Sample("ppp9", 0)
	if !s.Dropped {
		t.Error("expected unknown interface to produce a dropped sample")
	}
}
