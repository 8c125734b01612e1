package healthcore

import "fmt"

// FsmConfig holds the dual thresholds, confirmation counts, dwell time and
// safety fast-path knobs for HysteresisFsm. Build with DefaultFsmConfig and
// override, then Validate.
type FsmConfig struct {
	HealthyEnter float64
	HealthyExit  float64
	DownEnter    float64
	DownExit     float64

	HealthyEnterN int
	HealthyExitN  int
	DownEnterN    int
	DownExitN     int

	MinDwellSec int64

	MinConfidenceForPromotion  float64
	ForceDownIfConfidenceBelow float64 // negative disables
}

// DefaultFsmConfig returns the reference defaults from the specification.
func DefaultFsmConfig() FsmConfig {
	return FsmConfig{
		HealthyEnter: 0.72,
		HealthyExit:  0.66,
		DownEnter:    0.35,
		DownExit:     0.45,

		HealthyEnterN: 6,
		HealthyExitN:  6,
		DownEnterN:    3,
		DownExitN:     5,

		MinDwellSec: 5,

		MinConfidenceForPromotion:  0.5,
		ForceDownIfConfidenceBelow: -1,
	}
}

// Validate rejects threshold orderings and counters the specification names
// as programmer errors (spec.md §7, §9 Open Questions).
func (c FsmConfig) Validate() error {
	if c.HealthyExit >= c.HealthyEnter {
		return fmt.Errorf("healthcore: healthy_exit (%v) must be less than healthy_enter (%v)", c.HealthyExit, c.HealthyEnter)
	}
	if c.DownEnter >= c.DownExit {
		return fmt.Errorf("healthcore: down_enter (%v) must be less than down_exit (%v)", c.DownEnter, c.DownExit)
	}
	if c.HealthyEnterN < 1 || c.HealthyExitN < 1 || c.DownEnterN < 1 || c.DownExitN < 1 {
		return fmt.Errorf("healthcore: confirmation counts must be >= 1")
	}
	if c.MinDwellSec < 0 {
		return fmt.Errorf("healthcore: min_dwell_sec must be >= 0")
	}
	if c.MinConfidenceForPromotion < 0 || c.MinConfidenceForPromotion > 1 {
		return fmt.Errorf("healthcore: min_confidence_for_promotion must be in [0,1]")
	}
	return nil
}

// FsmUpdate is the result of one HysteresisFsm.Update call.
type FsmUpdate struct {
	Status      Status
	Transitioned bool
	Reason      string
}

// HysteresisFsm is a per-interface state machine with dual thresholds,
// consecutive-tick confirmation counters, minimum dwell time and an optional
// force-down fast-path. Initial state is Degraded: a cold tracker has zero
// confidence and must prove the link healthy.
type HysteresisFsm struct {
	cfg    FsmConfig
	status Status

	cntBelowHealthyExit  int
	cntAboveHealthyEnter int
	cntBelowDownEnter    int
	cntAboveDownExit     int

	lastTransitionTs    int64
	haveLastTransition  bool
}

// NewHysteresisFsm constructs an FSM starting in Degraded.
func NewHysteresisFsm(cfg FsmConfig) *HysteresisFsm {
	return &HysteresisFsm{cfg: cfg, status: Degraded}
}

// Status returns the current classification.
func (f *HysteresisFsm) Status() Status {
	return f.status
}

func (f *HysteresisFsm) resetCounters() {
	f.cntBelowHealthyExit = 0
	f.cntAboveHealthyEnter = 0
	f.cntBelowDownEnter = 0
	f.cntAboveDownExit = 0
}

func (f *HysteresisFsm) dwellOk(tsNow int64) bool {
	if f.cfg.MinDwellSec <= 0 {
		return true
	}
	if !f.haveLastTransition {
		return true
	}
	return tsNow-f.lastTransitionTs >= f.cfg.MinDwellSec
}

func (f *HysteresisFsm) transition(tsNow int64, next Status, reason string) FsmUpdate {
	f.status = next
	f.lastTransitionTs = tsNow
	f.haveLastTransition = true
	f.resetCounters()
	return FsmUpdate{Status: f.status, Transitioned: true, Reason: reason}
}

// Update evaluates one tick's evidence and returns the (possibly unchanged)
// status. score and confidence are clamped to [0,1] on entry defensively.
func (f *HysteresisFsm) Update(tsNow int64, score, confidence float64) FsmUpdate {
	score = clamp01(score)
	confidence = clamp01(confidence)

	if f.cfg.ForceDownIfConfidenceBelow >= 0 &&
		confidence < f.cfg.ForceDownIfConfidenceBelow &&
		f.status != Down {
		return f.transition(tsNow, Down, "confidence below force-down threshold")
	}

	allowPromotion := confidence >= f.cfg.MinConfidenceForPromotion

	switch f.status {
	case Healthy:
		if score <= f.cfg.HealthyExit {
			f.cntBelowHealthyExit++
		} else {
			f.cntBelowHealthyExit = 0
		}
		if f.cntBelowHealthyExit >= f.cfg.HealthyExitN && f.dwellOk(tsNow) {
			reason := fmt.Sprintf("healthy -> degraded: score %.3f <= healthy_exit %.3f for %d consecutive ticks",
				score, f.cfg.HealthyExit, f.cntBelowHealthyExit)
			return f.transition(tsNow, Degraded, reason)
		}

	case Degraded:
		if score <= f.cfg.DownEnter {
			f.cntBelowDownEnter++
		} else {
			f.cntBelowDownEnter = 0
		}
		if allowPromotion && score >= f.cfg.HealthyEnter {
			f.cntAboveHealthyEnter++
		} else {
			f.cntAboveHealthyEnter = 0
		}

		// Drop-to-Down takes precedence over promote-to-Healthy and is
		// exempt from dwell: operators prefer false alarms to missed
		// outages.
		if f.cntBelowDownEnter >= f.cfg.DownEnterN {
			reason := fmt.Sprintf("degraded -> down: score %.3f <= down_enter %.3f for %d consecutive ticks",
				score, f.cfg.DownEnter, f.cntBelowDownEnter)
			return f.transition(tsNow, Down, reason)
		}
		if f.cntAboveHealthyEnter >= f.cfg.HealthyEnterN && f.dwellOk(tsNow) {
			reason := fmt.Sprintf("degraded -> healthy: score %.3f >= healthy_enter %.3f for %d consecutive ticks",
				score, f.cfg.HealthyEnter, f.cntAboveHealthyEnter)
			return f.transition(tsNow, Healthy, reason)
		}

	case Down:
		if score >= f.cfg.DownExit {
			f.cntAboveDownExit++
		} else {
			f.cntAboveDownExit = 0
		}
		if f.cntAboveDownExit >= f.cfg.DownExitN && f.dwellOk(tsNow) {
			reason := fmt.Sprintf("down -> degraded: score %.3f >= down_exit %.3f for %d consecutive ticks",
				score, f.cfg.DownExit, f.cntAboveDownExit)
			return f.transition(tsNow, Degraded, reason)
		}
	}

	return FsmUpdate{Status: f.status, Transitioned: false}
}
