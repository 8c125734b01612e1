package healthcore

import "sort"

// AgentConfig is the configuration applied to every tracker the Agent
// creates.
type AgentConfig struct {
	Tracker TrackerConfig
}

// DefaultAgentConfig returns the specification's reference defaults.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{Tracker: DefaultTrackerConfig()}
}

// Validate checks the nested tracker configuration.
func (c AgentConfig) Validate() error {
	return c.Tracker.Validate()
}

// RankedSummaryItem is one row of Agent.SummaryRanked's output.
type RankedSummaryItem struct {
	Iface      string
	AvgScore   float64
	LastStatus Status
}

// Agent is a registry of per-interface trackers. It is a synchronous state
// machine: note_time runs before any ingest, which runs before record_tick,
// within one tick, and the Agent is the sole enforcer of that ordering.
// There is no shared mutable state outside a tracker.
type Agent struct {
	cfg      AgentConfig
	trackers map[string]*Tracker
	order    []string // registration order, for stable iteration

	pending []TransitionEvent

	scoreSum   map[string]float64
	scoreCount map[string]int
}

// NewAgent constructs an empty agent registry.
func NewAgent(cfg AgentConfig) *Agent {
	return &Agent{
		cfg:        cfg,
		trackers:   make(map[string]*Tracker),
		scoreSum:   make(map[string]float64),
		scoreCount: make(map[string]int),
	}
}

// EnsureInterface idempotently registers iface.
func (a *Agent) EnsureInterface(iface string) {
	if _, ok := a.trackers[iface]; ok {
		return
	}
	a.trackers[iface] = NewTracker(iface, a.cfg.Tracker)
	a.order = append(a.order, iface)
	a.scoreSum[iface] = 0
	a.scoreCount[iface] = 0
}

// Ingest registers iface if unknown, forwards the sample to its tracker, and
// queues any transition the tracker produced.
func (a *Agent) Ingest(iface string, ts int64, m Metrics) bool {
	a.EnsureInterface(iface)
	tr := a.trackers[iface]
	accepted := tr.Ingest(ts, m)
	if ev, ok := tr.DrainTransition(); ok {
		a.pending = append(a.pending, ev)
	}
	return accepted
}

// NoteTime fans out a time advance to every registered tracker.
func (a *Agent) NoteTime(tsNow int64) {
	for _, iface := range a.order {
		tr := a.trackers[iface]
		tr.NoteTime(tsNow)
		if ev, ok := tr.DrainTransition(); ok {
			a.pending = append(a.pending, ev)
		}
	}
}

// RecordTick adds each tracker's current score_used to its running average.
// Call exactly once per simulated second, after NoteTime and any Ingests.
func (a *Agent) RecordTick() {
	for _, iface := range a.order {
		s := a.trackers[iface].Snapshot()
		a.scoreSum[iface] += s.ScoreUsed
		a.scoreCount[iface]++
	}
}

// Snapshots collects one snapshot per registered interface, in registration
// order.
func (a *Agent) Snapshots() []InterfaceSnapshot {
	out := make([]InterfaceSnapshot, 0, len(a.order))
	for _, iface := range a.order {
		out = append(out, a.trackers[iface].Snapshot())
	}
	return out
}

// DrainTransitions returns and clears the agent's queued transitions.
func (a *Agent) DrainTransitions() []TransitionEvent {
	out := a.pending
	a.pending = nil
	return out
}

// SummaryRanked computes each interface's average score_used and sorts
// descending.
func (a *Agent) SummaryRanked() []RankedSummaryItem {
	out := make([]RankedSummaryItem, 0, len(a.order))
	for _, iface := range a.order {
		n := a.scoreCount[iface]
		var avg float64
		if n > 0 {
			avg = a.scoreSum[iface] / float64(n)
		}
		out = append(out, RankedSummaryItem{
			Iface:      iface,
			AvgScore:   avg,
			LastStatus: a.trackers[iface].Snapshot().Status,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgScore > out[j].AvgScore
	})
	return out
}

// DroppedCount reports how many ingests a given interface has rejected as
// too old. Returns 0 for an unregistered interface.
func (a *Agent) DroppedCount(iface string) int {
	tr, ok := a.trackers[iface]
	if !ok {
		return 0
	}
	return tr.DroppedCount()
}
