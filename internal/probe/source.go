package probe

import (
	"context"
	"time"

	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/logging"
)

// HealthSource adapts a set of real Probes (ICMP, TCP) into metrics a
// healthcore.Agent can ingest, for live (non-synthetic) monitoring. ICMP/TCP
// bursts measure RTT, jitter, and loss directly; throughput cannot be probed
// this way, so each interface carries a configured nominal bandwidth.
type HealthSource struct {
	probes                map[string]Probe
	nominalThroughputMbps map[string]float64
	timeout               time.Duration
}

// NewHealthSource builds a HealthSource from one Probe per interface.
func NewHealthSource(probes map[string]Probe, nominalThroughputMbps map[string]float64, timeout time.Duration) *HealthSource {
	return &HealthSource{
		probes:                probes,
		nominalThroughputMbps: nominalThroughputMbps,
		timeout:               timeout,
	}
}

// Fetch executes the probe for iface and returns the resulting metrics. A
// total-loss burst (no packets received at all) is reported as no sample,
// matching the tracker's missing-sample handling rather than forcing a
// fabricated worst-case reading.
func (h *HealthSource) Fetch(iface string, tick int64) (int64, healthcore.Metrics, bool) {
	p, ok := h.probes[iface]
	if !ok {
		return 0, healthcore.Metrics{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	result := p.Execute(ctx)
	logging.ProbeResult(iface, result.LatencyMs, result.Success, result.Error)
	if result.PingsRecv == 0 {
		return 0, healthcore.Metrics{}, false
	}

	m := healthcore.Metrics{
		RTTMs:          result.LatencyMs,
		ThroughputMbps: h.nominalThroughputMbps[iface],
		LossPct:        result.LossPct,
		JitterMs:       result.JitterMs,
	}
	return tick, m, true
}
