// Package scenario generates deterministic synthetic Metrics streams for
// exercising a healthcore.Agent without a live network, following the same
// per-target generator shape internal/probe uses for real probes.
package scenario

import "github.com/ifwatch/agent/internal/healthcore"

// ID names one of the reference scenarios.
type ID string

const (
	ScenarioA ID = "A" // gradual degrade then recover
	ScenarioB ID = "B" // short repeated spikes (flap trap)
	ScenarioC ID = "C" // sustained misleading throughput
	ScenarioD ID = "D" // missing and late samples layered on Scenario A
)

// ImperfectDataConfig controls deterministic missing/late sample injection,
// independent of which scenario supplies the underlying metrics.
type ImperfectDataConfig struct {
	EnableMissing bool
	DropEveryN    int64
	EnableLate    bool
	LateEveryN    int64
	LateBySec     int64
}

// DefaultImperfectDataConfig drops every 10th sample and shifts every 12th
// sample two seconds into the past, per the missing/late data scenario.
func DefaultImperfectDataConfig() ImperfectDataConfig {
	return ImperfectDataConfig{
		EnableMissing: true,
		DropEveryN:    10,
		EnableLate:    true,
		LateEveryN:    12,
		LateBySec:     2,
	}
}

// Sample is one generated observation: the timestamp it should be ingested
// at (which may trail t when a late arrival was injected) and the metrics.
type Sample struct {
	Ts int64
	M  healthcore.Metrics
	// Dropped is true when this tick produced no sample at all.
	Dropped bool
}

// Generator produces a deterministic Metrics stream for a named interface.
type Generator struct {
	id  ID
	imp ImperfectDataConfig
}

// NewGenerator builds a Generator for the given scenario with imperfect-data
// injection disabled. Use NewGeneratorWithImperfectData for Scenario D.
func NewGenerator(id ID) *Generator {
	return &Generator{id: id}
}

// NewGeneratorWithImperfectData builds a Generator with missing/late sample
// injection layered on top of the chosen scenario's metrics.
func NewGeneratorWithImperfectData(id ID, imp ImperfectDataConfig) *Generator {
	return &Generator{id: id, imp: imp}
}

func lerp(a, b, u float64) float64 {
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return a + (b-a)*u
}

// Sample generates the observation for iface at tick t, or Dropped=true if
// the imperfect-data configuration drops this tick.
func (g *Generator) Sample(iface string, t int64) Sample {
	if g.imp.EnableMissing && g.imp.DropEveryN > 0 {
		salt := int64(len(iface))
		if mod(t+salt, g.imp.DropEveryN) == 0 {
			return Sample{Dropped: true}
		}
	}

	outTs := t
	if g.imp.EnableLate && g.imp.LateEveryN > 0 {
		salt := int64(iface[0])
		if mod(t+salt, g.imp.LateEveryN) == 0 {
			outTs = t - g.imp.LateBySec
		}
	}

	m, ok := g.metrics(iface, t)
	if !ok {
		return Sample{Dropped: true}
	}
	return Sample{Ts: outTs, M: m}
}

// Fetch adapts Sample to the shape internal/collector's Source interface
// expects: a timestamp, metrics, and an ok flag in place of Sample.Dropped.
func (g *Generator) Fetch(iface string, tick int64) (int64, healthcore.Metrics, bool) {
	s := g.Sample(iface, tick)
	if s.Dropped {
		return 0, healthcore.Metrics{}, false
	}
	return s.Ts, s.M, true
}

func mod(a, n int64) int64 {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func (g *Generator) metrics(iface string, t int64) (healthcore.Metrics, bool) {
	switch iface {
	case "eth0":
		return g.eth0(t), true
	case "sat0":
		return g.sat0(t), true
	case "lte0":
		return g.lte0(t), true
	case "wifi0":
		return g.wifi0(t), true
	default:
		return healthcore.Metrics{}, false
	}
}

// eth0 is a steady, healthy wired baseline.
func (g *Generator) eth0(int64) healthcore.Metrics {
	return healthcore.Metrics{RTTMs: 20, ThroughputMbps: 180, LossPct: 0.1, JitterMs: 3}
}

// sat0 is a steady, high-latency but stable satellite link.
func (g *Generator) sat0(int64) healthcore.Metrics {
	return healthcore.Metrics{RTTMs: 550, ThroughputMbps: 60, LossPct: 0.5, JitterMs: 25}
}

// lte0 is moderate and mildly noisy by default; Scenario C overrides it with
// a sustained misleading-throughput profile.
func (g *Generator) lte0(t int64) healthcore.Metrics {
	if g.id == ScenarioC {
		return g.scenarioCLte(t)
	}
	wig := float64(t%10) * 0.3
	return healthcore.Metrics{
		RTTMs:          90 + wig,
		ThroughputMbps: 90,
		LossPct:        1.0,
		JitterMs:       10 + 0.5*wig,
	}
}

// wifi0 is good by default; Scenario A degrades and recovers it, Scenario B
// injects short repeated spikes, and Scenario C leaves it clean but slower.
func (g *Generator) wifi0(t int64) healthcore.Metrics {
	switch g.id {
	case ScenarioA, ScenarioD:
		return g.scenarioAWifi(t)
	case ScenarioB:
		return g.scenarioBWifi(t)
	case ScenarioC:
		return healthcore.Metrics{RTTMs: 35, ThroughputMbps: 70, LossPct: 0.3, JitterMs: 5}
	default:
		return healthcore.Metrics{RTTMs: 35, ThroughputMbps: 110, LossPct: 0.5, JitterMs: 6}
	}
}

// scenarioAWifi degrades linearly over 0-35s, recovers over 35-55s, then
// holds steady good.
func (g *Generator) scenarioAWifi(t int64) healthcore.Metrics {
	good := healthcore.Metrics{RTTMs: 35, ThroughputMbps: 110, LossPct: 0.5, JitterMs: 6}
	bad := healthcore.Metrics{RTTMs: 300, ThroughputMbps: 30, LossPct: 12.0, JitterMs: 80}

	switch {
	case t < 35:
		u := float64(t) / 35.0
		return healthcore.Metrics{
			RTTMs:          lerp(good.RTTMs, bad.RTTMs, u),
			ThroughputMbps: lerp(good.ThroughputMbps, bad.ThroughputMbps, u),
			LossPct:        lerp(good.LossPct, bad.LossPct, u),
			JitterMs:       lerp(good.JitterMs, bad.JitterMs, u),
		}
	case t < 55:
		u := float64(t-35) / 20.0
		return healthcore.Metrics{
			RTTMs:          lerp(bad.RTTMs, good.RTTMs, u),
			ThroughputMbps: lerp(bad.ThroughputMbps, good.ThroughputMbps, u),
			LossPct:        lerp(bad.LossPct, good.LossPct, u),
			JitterMs:       lerp(bad.JitterMs, good.JitterMs, u),
		}
	default:
		return good
	}
}

// scenarioBWifi injects a deterministic 4-second spike every 15 seconds,
// the classic flap trap for a naive threshold-only classifier.
func (g *Generator) scenarioBWifi(t int64) healthcore.Metrics {
	good := healthcore.Metrics{RTTMs: 35, ThroughputMbps: 110, LossPct: 0.5, JitterMs: 6}
	spike := healthcore.Metrics{RTTMs: 350, ThroughputMbps: 90, LossPct: 10.0, JitterMs: 70}

	phase := mod(t, 15)
	if phase < 4 {
		return spike
	}
	return good
}

// scenarioCLte keeps throughput high while loss and jitter stay elevated:
// good-looking bandwidth masking a genuinely degraded link.
func (g *Generator) scenarioCLte(t int64) healthcore.Metrics {
	loss := 8.0 + float64(mod(t, 5))
	jit := 60.0 + float64(mod(t, 7))*3.0
	return healthcore.Metrics{RTTMs: 95, ThroughputMbps: 160, LossPct: loss, JitterMs: jit}
}
