package healthcore

import "testing"

func TestFsmInitialStateIsDegraded(t *testing.T) {
	f := NewHysteresisFsm(DefaultFsmConfig())
	if f.Status() != Degraded {
		t.Errorf("initial status = %v, want Degraded", f.Status())
	}
}

func TestFsmDegradedToHealthyRequiresConsecutiveTicks(t *testing.T) {
	cfg := DefaultFsmConfig()
	f := NewHysteresisFsm(cfg)

	var last FsmUpdate
	for i := int64(0); i < int64(cfg.HealthyEnterN); i++ {
		last = f.Update(i, 0.9, 1.0)
	}
	if !last.Transitioned || last.Status != Healthy {
		t.Fatalf("expected transition to Healthy after %d ticks, got %+v", cfg.HealthyEnterN, last)
	}
}

func TestFsmCounterResetsOnGuardFailure(t *testing.T) {
	cfg := DefaultFsmConfig()
	f := NewHysteresisFsm(cfg)

	f.Update(0, 0.9, 1.0)
	f.Update(1, 0.9, 1.0)
	// Guard fails: resets cntAboveHealthyEnter to 0.
	f.Update(2, 0.1, 1.0)
	if f.cntAboveHealthyEnter != 0 {
		t.Errorf("cntAboveHealthyEnter = %d, want 0 after guard failure", f.cntAboveHealthyEnter)
	}

	var last FsmUpdate
	for i := int64(3); i < 3+int64(cfg.HealthyEnterN); i++ {
		last = f.Update(i, 0.9, 1.0)
	}
	if !last.Transitioned || last.Status != Healthy {
		t.Fatalf("expected fresh streak to still promote to Healthy, got %+v", last)
	}
}

func TestFsmAllCountersResetOnTransition(t *testing.T) {
	cfg := DefaultFsmConfig()
	f := NewHysteresisFsm(cfg)

	for i := int64(0); i < int64(cfg.HealthyEnterN); i++ {
		f.Update(i, 0.9, 1.0)
	}
	if f.Status() != Healthy {
		t.Fatalf("setup: expected Healthy, got %v", f.Status())
	}
	if f.cntBelowHealthyExit != 0 || f.cntAboveHealthyEnter != 0 || f.cntBelowDownEnter != 0 || f.cntAboveDownExit != 0 {
		t.Errorf("counters not all zero immediately after transition: %d %d %d %d",
			f.cntBelowHealthyExit, f.cntAboveHealthyEnter, f.cntBelowDownEnter, f.cntAboveDownExit)
	}
}

func TestFsmHealthyToDegradedRequiresDwell(t *testing.T) {
	cfg := DefaultFsmConfig()
	cfg.MinDwellSec = 100
	f := NewHysteresisFsm(cfg)

	ts := int64(0)
	for i := 0; i < cfg.HealthyEnterN; i++ {
		f.Update(ts, 0.9, 1.0)
		ts++
	}
	if f.Status() != Healthy {
		t.Fatalf("setup: expected Healthy, got %v", f.Status())
	}

	// Exit guard satisfied immediately, but dwell blocks the transition.
	var last FsmUpdate
	for i := 0; i < cfg.HealthyExitN+2; i++ {
		last = f.Update(ts, 0.1, 1.0)
		ts++
	}
	if last.Transitioned {
		t.Errorf("expected dwell to suppress Healthy->Degraded, but transitioned: %+v", last)
	}
	if f.Status() != Healthy {
		t.Errorf("status = %v, want still Healthy under dwell", f.Status())
	}
}

func TestFsmDegradedToDownIgnoresDwell(t *testing.T) {
	cfg := DefaultFsmConfig()
	cfg.MinDwellSec = 1000 // huge dwell, should not matter for the safety path
	f := NewHysteresisFsm(cfg)

	var last FsmUpdate
	ts := int64(0)
	for i := 0; i < cfg.DownEnterN; i++ {
		last = f.Update(ts, 0.0, 1.0)
		ts++
	}
	if !last.Transitioned || last.Status != Down {
		t.Fatalf("expected fast-path to Down regardless of dwell, got %+v", last)
	}
}

func TestFsmDropToDownPrecedesPromoteWhenBothFire(t *testing.T) {
	cfg := DefaultFsmConfig()
	// A deliberately wide, overlapping band so a single score can satisfy
	// both the drop-to-Down and promote-to-Healthy guards at once.
	cfg.HealthyEnter = 0.1
	cfg.HealthyExit = 0.05
	cfg.DownEnter = 0.9
	cfg.DownExit = 0.95
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	f := NewHysteresisFsm(cfg)

	var last FsmUpdate
	ts := int64(0)
	n := cfg.DownEnterN
	if cfg.HealthyEnterN > n {
		n = cfg.HealthyEnterN
	}
	for i := 0; i < n; i++ {
		last = f.Update(ts, 0.5, 1.0) // satisfies both score <= down_enter and score >= healthy_enter
		ts++
	}
	if last.Status != Down {
		t.Errorf("expected Down to win priority over Healthy, got %+v", last)
	}
}

func TestFsmForceDownBypassesDwellAndCounters(t *testing.T) {
	cfg := DefaultFsmConfig()
	cfg.MinDwellSec = 1000
	cfg.ForceDownIfConfidenceBelow = 0.2
	f := NewHysteresisFsm(cfg)

	upd := f.Update(0, 0.99, 0.1) // high score, but confidence below force-down floor
	if !upd.Transitioned || upd.Status != Down {
		t.Fatalf("expected immediate force-down, got %+v", upd)
	}
}

func TestFsmConfidenceGatingBlocksPromotion(t *testing.T) {
	cfg := DefaultFsmConfig()
	f := NewHysteresisFsm(cfg)

	// Score qualifies but confidence never reaches min_confidence_for_promotion.
	for ts := int64(0); ts < 100; ts++ {
		f.Update(ts, 0.95, cfg.MinConfidenceForPromotion-0.01)
	}
	if f.Status() == Healthy {
		t.Error("expected FSM to never promote to Healthy under persistently low confidence")
	}
}

func TestFsmValidateRejectsBadThresholdOrdering(t *testing.T) {
	cfg := DefaultFsmConfig()
	cfg.HealthyExit = cfg.HealthyEnter
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when healthy_exit >= healthy_enter")
	}

	cfg2 := DefaultFsmConfig()
	cfg2.DownEnter = cfg2.DownExit
	if err := cfg2.Validate(); err == nil {
		t.Error("expected error when down_enter >= down_exit")
	}
}

func TestFsmValidateRejectsZeroConfirmationCount(t *testing.T) {
	cfg := DefaultFsmConfig()
	cfg.HealthyExitN = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for healthy_exit_N = 0")
	}
}
