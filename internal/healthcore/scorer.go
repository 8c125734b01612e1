package healthcore

import "fmt"

// ScoreConfig holds the weights, normalization reference points and
// EWMA/confidence-cap knobs for the Scorer. Zero value is not valid; build
// one with DefaultScoreConfig and override fields, then call Validate.
type ScoreConfig struct {
	WTp   float64
	WRtt  float64
	WLoss float64
	WJit  float64

	TpMaxMbps  float64
	RttMinMs   float64
	RttMaxMs   float64
	LossMaxPct float64
	JitMaxMs   float64

	EwmaAlpha              float64
	UseEwma                bool
	EnableDowntrendPenalty bool
	DowntrendPenalty       float64

	EnableConfidenceCap       bool
	CapConfidenceThreshold    float64
	CapMaxScoreWhenLowConf    float64
	MinConfidenceForPromotion float64
}

// DefaultScoreConfig returns the reference defaults from the specification.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		WTp:   0.3,
		WRtt:  0.3,
		WLoss: 0.2,
		WJit:  0.2,

		TpMaxMbps:  200,
		RttMinMs:   10,
		RttMaxMs:   800,
		LossMaxPct: 30,
		JitMaxMs:   200,

		EwmaAlpha:              0.25,
		UseEwma:                true,
		EnableDowntrendPenalty: false,
		DowntrendPenalty:       0,

		EnableConfidenceCap:       true,
		CapConfidenceThreshold:    0.5,
		CapMaxScoreWhenLowConf:    0.6,
		MinConfidenceForPromotion: 0.5,
	}
}

// Validate rejects configurations that would make scoring ill-defined.
func (c ScoreConfig) Validate() error {
	if c.WTp < 0 || c.WRtt < 0 || c.WLoss < 0 || c.WJit < 0 {
		return fmt.Errorf("healthcore: score weights must be non-negative")
	}
	if c.TpMaxMbps <= 0 {
		return fmt.Errorf("healthcore: tp_max_mbps must be positive")
	}
	if c.RttMaxMs <= c.RttMinMs {
		return fmt.Errorf("healthcore: rtt_max_ms (%v) must be greater than rtt_min_ms (%v)", c.RttMaxMs, c.RttMinMs)
	}
	if c.LossMaxPct <= 0 {
		return fmt.Errorf("healthcore: loss_max_pct must be positive")
	}
	if c.JitMaxMs <= 0 {
		return fmt.Errorf("healthcore: jit_max_ms must be positive")
	}
	if c.EwmaAlpha < 0 || c.EwmaAlpha > 1 {
		return fmt.Errorf("healthcore: ewma_alpha must be in [0,1]")
	}
	if c.CapConfidenceThreshold < 0 || c.CapConfidenceThreshold > 1 {
		return fmt.Errorf("healthcore: cap_confidence_threshold must be in [0,1]")
	}
	if c.CapMaxScoreWhenLowConf < 0 || c.CapMaxScoreWhenLowConf > 1 {
		return fmt.Errorf("healthcore: cap_max_score_when_low_conf must be in [0,1]")
	}
	if c.MinConfidenceForPromotion < 0 || c.MinConfidenceForPromotion > 1 {
		return fmt.Errorf("healthcore: min_confidence_for_promotion must be in [0,1]")
	}
	return nil
}

func normTp(mbps, tpMax float64) float64 {
	return clamp01(mbps / tpMax)
}

func normRtt(ms, rttMin, rttMax float64) float64 {
	return clamp01(1 - (ms-rttMin)/(rttMax-rttMin))
}

func normLoss(pct, lossMax float64) float64 {
	return clamp01(1 - pct/lossMax)
}

func normJit(ms, jitMax float64) float64 {
	return clamp01(1 - ms/jitMax)
}

// scoreRaw computes the instantaneous weighted-normalization score
// (strategy 1). An empty summary (count == 0) is pessimistically scored 0.
func scoreRaw(cfg ScoreConfig, s WindowSummary) float64 {
	if s.Count == 0 {
		return 0
	}
	t := normTp(s.AvgTP, cfg.TpMaxMbps)
	r := normRtt(s.AvgRTTMs, cfg.RttMinMs, cfg.RttMaxMs)
	l := normLoss(s.AvgLossPct, cfg.LossMaxPct)
	j := normJit(s.AvgJitterMs, cfg.JitMaxMs)

	return clamp01(cfg.WTp*t + cfg.WRtt*r + cfg.WLoss*l + cfg.WJit*j)
}

// updateEwma computes the exponentially-weighted score (strategy 2), with an
// optional downtrend penalty applied when the raw score is falling.
func updateEwma(cfg ScoreConfig, prev, current float64) float64 {
	ewma := cfg.EwmaAlpha*current + (1-cfg.EwmaAlpha)*prev
	if cfg.EnableDowntrendPenalty && current < prev {
		ewma -= cfg.DowntrendPenalty
	}
	return clamp01(ewma)
}

// applyConfidenceCap caps candidate when confidence is below threshold, so a
// recently-empty window can't masquerade as healthy. Applied before
// strategy selection so it constrains both score_raw and score_ewma paths.
func applyConfidenceCap(cfg ScoreConfig, candidate, confidence float64) float64 {
	if cfg.EnableConfidenceCap && confidence < cfg.CapConfidenceThreshold {
		if candidate > cfg.CapMaxScoreWhenLowConf {
			return cfg.CapMaxScoreWhenLowConf
		}
	}
	return candidate
}
