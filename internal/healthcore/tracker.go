package healthcore

// TrackerConfig bundles the scoring and FSM configuration a Tracker needs.
type TrackerConfig struct {
	Score ScoreConfig
	Fsm   FsmConfig
}

// Validate checks both nested configs.
func (c TrackerConfig) Validate() error {
	if err := c.Score.Validate(); err != nil {
		return err
	}
	return c.Fsm.Validate()
}

// DefaultTrackerConfig returns the specification's reference defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{Score: DefaultScoreConfig(), Fsm: DefaultFsmConfig()}
}

// Tracker owns one interface's RollingWindow, HysteresisFsm, EWMA state,
// latest snapshot and at-most-one pending transition. All derived state is
// recomputed from the window on every event so scoring and FSM state can
// never drift apart.
type Tracker struct {
	iface string
	cfg   TrackerConfig

	window *RollingWindow
	fsm    *HysteresisFsm

	haveEwma  bool
	scoreEwma float64

	snapshot InterfaceSnapshot
	pending  *TransitionEvent

	droppedCount int

	// haveSample is set by the first accepted ingest; until then the FSM is
	// not stepped and stays in its initial Degraded state.
	haveSample bool
}

// NewTracker constructs a tracker for iface, starting cold (Degraded, empty
// window).
func NewTracker(iface string, cfg TrackerConfig) *Tracker {
	t := &Tracker{
		iface:  iface,
		cfg:    cfg,
		window: NewRollingWindow(),
		fsm:    NewHysteresisFsm(cfg.Fsm),
	}
	t.snapshot.Iface = iface
	return t
}

// Ingest forwards a sample to the window; if accepted it triggers a
// recompute, if rejected it leaves the window, scores and snapshot untouched
// and only increments the dropped-sample counter.
func (t *Tracker) Ingest(ts int64, m Metrics) bool {
	if !t.window.Ingest(ts, m) {
		t.droppedCount++
		return false
	}
	t.haveSample = true
	t.recompute(t.window.NewestTs())
	return true
}

// NoteTime advances the window's notion of time and recomputes, so a tick
// with no sample still slides the window, decays confidence and drives the
// FSM.
func (t *Tracker) NoteTime(ts int64) {
	t.window.NoteTime(ts)
	t.recompute(ts)
}

func (t *Tracker) recompute(tsNow int64) {
	s := t.window.Summary()

	raw := scoreRaw(t.cfg.Score, s)

	if !t.haveEwma {
		t.scoreEwma = raw
		t.haveEwma = true
	} else {
		t.scoreEwma = updateEwma(t.cfg.Score, t.scoreEwma, raw)
	}

	var candidate float64
	if t.cfg.Score.UseEwma {
		candidate = t.scoreEwma
	} else {
		candidate = raw
	}
	candidate = applyConfidenceCap(t.cfg.Score, candidate, s.Confidence)
	used := candidate

	before := t.fsm.Status()
	upd := FsmUpdate{Status: before}
	if t.haveSample {
		upd = t.fsm.Update(tsNow, used, s.Confidence)
	}
	after := upd.Status

	if upd.Transitioned {
		ev := TransitionEvent{Iface: t.iface, Ts: tsNow, From: before, To: after, Reason: upd.Reason}
		t.pending = &ev
	}

	t.snapshot = InterfaceSnapshot{
		Iface:         t.iface,
		Ts:            tsNow,
		Status:        after,
		ScoreRaw:      raw,
		ScoreSmoothed: t.scoreEwma,
		ScoreUsed:     used,
		Confidence:    s.Confidence,
		MissingRate:   s.MissingRate,
		AvgRTTMs:      s.AvgRTTMs,
		AvgThroughput: s.AvgTP,
		AvgLossPct:    s.AvgLossPct,
		AvgJitterMs:   s.AvgJitterMs,
	}
}

// DrainTransition atomically returns and clears the pending transition, if
// any.
func (t *Tracker) DrainTransition() (TransitionEvent, bool) {
	if t.pending == nil {
		return TransitionEvent{}, false
	}
	ev := *t.pending
	t.pending = nil
	return ev, true
}

// Snapshot copies out the latest derived state.
func (t *Tracker) Snapshot() InterfaceSnapshot {
	return t.snapshot
}

// DroppedCount reports how many ingests this tracker has rejected as too
// old. Observability only — never fed back into the decision pipeline.
func (t *Tracker) DroppedCount() int {
	return t.droppedCount
}
