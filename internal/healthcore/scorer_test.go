package healthcore

import "testing"

func TestScoreRawEmptyIsZero(t *testing.T) {
	cfg := DefaultScoreConfig()
	got := scoreRaw(cfg, WindowSummary{})
	if got != 0 {
		t.Errorf("scoreRaw(empty) = %v, want 0", got)
	}
}

func TestScoreRawGoodTraffic(t *testing.T) {
	cfg := DefaultScoreConfig()
	s := WindowSummary{Count: 45, AvgTP: 180, AvgRTTMs: 20, AvgLossPct: 0.1, AvgJitterMs: 3}
	got := scoreRaw(cfg, s)
	if got <= 0.9 {
		t.Errorf("scoreRaw(good) = %v, want > 0.9", got)
	}
}

func TestScoreRawBadTraffic(t *testing.T) {
	cfg := DefaultScoreConfig()
	s := WindowSummary{Count: 45, AvgTP: 5, AvgRTTMs: 780, AvgLossPct: 29, AvgJitterMs: 190}
	got := scoreRaw(cfg, s)
	if got >= 0.2 {
		t.Errorf("scoreRaw(bad) = %v, want < 0.2", got)
	}
}

func TestScoreRawClampedToUnitInterval(t *testing.T) {
	cfg := DefaultScoreConfig()
	s := WindowSummary{Count: 1, AvgTP: 100000, AvgRTTMs: -500, AvgLossPct: -10, AvgJitterMs: -50}
	got := scoreRaw(cfg, s)
	if got < 0 || got > 1 {
		t.Errorf("scoreRaw = %v, want in [0,1]", got)
	}
}

func TestUpdateEwmaSubsequentUpdateBlendsWithAlpha(t *testing.T) {
	// Tracker.recompute handles the "first evaluation" rule; here we only
	// check the smoothing math for a subsequent update.
	cfg := DefaultScoreConfig()
	got := updateEwma(cfg, 0.8, 0.4)
	want := cfg.EwmaAlpha*0.4 + (1-cfg.EwmaAlpha)*0.8
	if !almostEqual(got, want) {
		t.Errorf("updateEwma = %v, want %v", got, want)
	}
}

func TestUpdateEwmaDowntrendPenalty(t *testing.T) {
	cfg := DefaultScoreConfig()
	cfg.EnableDowntrendPenalty = true
	cfg.DowntrendPenalty = 0.05

	withPenalty := updateEwma(cfg, 0.8, 0.4)

	cfg.EnableDowntrendPenalty = false
	withoutPenalty := updateEwma(cfg, 0.8, 0.4)

	if withPenalty >= withoutPenalty {
		t.Errorf("downtrend penalty did not reduce EWMA: with=%v without=%v", withPenalty, withoutPenalty)
	}
}

func TestApplyConfidenceCap(t *testing.T) {
	cfg := DefaultScoreConfig()
	cfg.EnableConfidenceCap = true
	cfg.CapConfidenceThreshold = 0.5
	cfg.CapMaxScoreWhenLowConf = 0.6

	capped := applyConfidenceCap(cfg, 0.95, 0.2)
	if capped != 0.6 {
		t.Errorf("applyConfidenceCap(low conf) = %v, want 0.6", capped)
	}

	uncapped := applyConfidenceCap(cfg, 0.95, 0.9)
	if uncapped != 0.95 {
		t.Errorf("applyConfidenceCap(high conf) = %v, want 0.95 (unchanged)", uncapped)
	}
}

func TestApplyConfidenceCapDisabled(t *testing.T) {
	cfg := DefaultScoreConfig()
	cfg.EnableConfidenceCap = false

	got := applyConfidenceCap(cfg, 0.95, 0.0)
	if got != 0.95 {
		t.Errorf("applyConfidenceCap(disabled) = %v, want 0.95", got)
	}
}

func TestScoreConfigValidateRejectsBadRttSpan(t *testing.T) {
	cfg := DefaultScoreConfig()
	cfg.RttMaxMs = cfg.RttMinMs
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero-width RTT span")
	}
}

func TestScoreConfigValidateRejectsNegativeWeight(t *testing.T) {
	cfg := DefaultScoreConfig()
	cfg.WLoss = -0.1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}
