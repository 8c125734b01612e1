// Package config loads the agent's configuration from a YAML file using
// Viper, the same pattern the rest of this codebase's stack uses.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ifwatch/agent/internal/healthcore"
)

// Config is the root configuration for the ifagent binary.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Agent   AgentSettings `mapstructure:"agent"`
	Score   ScoreSettings `mapstructure:"score"`
	Fsm     FsmSettings   `mapstructure:"fsm"`
	Storage StorageConfig `mapstructure:"storage"`
}

// ServerConfig holds API/TUI settings.
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	EnableTUI bool   `mapstructure:"enable_tui"`
}

// AgentSettings holds the interfaces to track and the tick cadence.
type AgentSettings struct {
	Interfaces []string       `mapstructure:"interfaces"`
	Interval   time.Duration  `mapstructure:"interval"`
	Source     string         `mapstructure:"source"` // "scenario" or "live"
	Targets    []TargetConfig `mapstructure:"targets"`
}

// TargetConfig describes one interface's live probe target, used when
// agent.source is "live" instead of "scenario".
type TargetConfig struct {
	Interface             string  `mapstructure:"interface"`
	Host                  string  `mapstructure:"host"`
	Type                  string  `mapstructure:"type"` // "icmp" or "tcp"
	Port                  int     `mapstructure:"port"` // required for "tcp"
	Pings                 int     `mapstructure:"pings"`
	TimeoutMs             int     `mapstructure:"timeout_ms"`
	NominalThroughputMbps float64 `mapstructure:"nominal_throughput_mbps"`
}

// ScoreSettings mirrors spec.md §6's score configuration schema.
type ScoreSettings struct {
	EwmaAlpha                 float64 `mapstructure:"ewma_alpha"`
	UseEwma                   bool    `mapstructure:"use_ewma"`
	EnableDowntrendPenalty    bool    `mapstructure:"enable_downtrend_penalty"`
	DowntrendPenalty          float64 `mapstructure:"downtrend_penalty"`
	WTp                       float64 `mapstructure:"w_tp"`
	WRtt                      float64 `mapstructure:"w_rtt"`
	WLoss                     float64 `mapstructure:"w_loss"`
	WJit                      float64 `mapstructure:"w_jit"`
	TpMaxMbps                 float64 `mapstructure:"tp_max_mbps"`
	RttMinMs                  float64 `mapstructure:"rtt_min_ms"`
	RttMaxMs                  float64 `mapstructure:"rtt_max_ms"`
	LossMaxPct                float64 `mapstructure:"loss_max_pct"`
	JitMaxMs                  float64 `mapstructure:"jit_max_ms"`
	EnableConfidenceCap       bool    `mapstructure:"enable_confidence_cap"`
	CapConfidenceThreshold    float64 `mapstructure:"cap_confidence_threshold"`
	CapMaxScoreWhenLowConf    float64 `mapstructure:"cap_max_score_when_low_conf"`
	MinConfidenceForPromotion float64 `mapstructure:"min_confidence_for_promotion"`
}

// FsmSettings mirrors spec.md §6's fsm configuration schema.
type FsmSettings struct {
	HealthyEnter               float64 `mapstructure:"healthy_enter"`
	HealthyExit                float64 `mapstructure:"healthy_exit"`
	DownEnter                  float64 `mapstructure:"down_enter"`
	DownExit                   float64 `mapstructure:"down_exit"`
	HealthyEnterN              int     `mapstructure:"healthy_enter_n"`
	HealthyExitN               int     `mapstructure:"healthy_exit_n"`
	DownEnterN                 int     `mapstructure:"down_enter_n"`
	DownExitN                  int     `mapstructure:"down_exit_n"`
	MinDwellSec                int64   `mapstructure:"min_dwell_sec"`
	ForceDownIfConfidenceBelow float64 `mapstructure:"force_down_if_confidence_below"`
}

// StorageConfig holds persistence settings for internal/storage.
type StorageConfig struct {
	DataDir     string  `mapstructure:"data_dir"`
	Retention   string  `mapstructure:"retention"`
	Aggregation string  `mapstructure:"aggregation"`
	XFF         float64 `mapstructure:"xff"`
}

// Load reads configuration from configPath, applying defaults first.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration corresponding to the specification's
// reference defaults (spec.md §6), without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.enable_tui", true)

	v.SetDefault("agent.interfaces", []string{"eth0", "wifi0", "lte0", "sat0"})
	v.SetDefault("agent.interval", "1s")
	v.SetDefault("agent.source", "scenario")

	d := healthcore.DefaultScoreConfig()
	v.SetDefault("score.ewma_alpha", d.EwmaAlpha)
	v.SetDefault("score.use_ewma", d.UseEwma)
	v.SetDefault("score.enable_downtrend_penalty", d.EnableDowntrendPenalty)
	v.SetDefault("score.downtrend_penalty", d.DowntrendPenalty)
	v.SetDefault("score.w_tp", d.WTp)
	v.SetDefault("score.w_rtt", d.WRtt)
	v.SetDefault("score.w_loss", d.WLoss)
	v.SetDefault("score.w_jit", d.WJit)
	v.SetDefault("score.tp_max_mbps", d.TpMaxMbps)
	v.SetDefault("score.rtt_min_ms", d.RttMinMs)
	v.SetDefault("score.rtt_max_ms", d.RttMaxMs)
	v.SetDefault("score.loss_max_pct", d.LossMaxPct)
	v.SetDefault("score.jit_max_ms", d.JitMaxMs)
	v.SetDefault("score.enable_confidence_cap", d.EnableConfidenceCap)
	v.SetDefault("score.cap_confidence_threshold", d.CapConfidenceThreshold)
	v.SetDefault("score.cap_max_score_when_low_conf", d.CapMaxScoreWhenLowConf)
	v.SetDefault("score.min_confidence_for_promotion", d.MinConfidenceForPromotion)

	f := healthcore.DefaultFsmConfig()
	v.SetDefault("fsm.healthy_enter", f.HealthyEnter)
	v.SetDefault("fsm.healthy_exit", f.HealthyExit)
	v.SetDefault("fsm.down_enter", f.DownEnter)
	v.SetDefault("fsm.down_exit", f.DownExit)
	v.SetDefault("fsm.healthy_enter_n", f.HealthyEnterN)
	v.SetDefault("fsm.healthy_exit_n", f.HealthyExitN)
	v.SetDefault("fsm.down_enter_n", f.DownEnterN)
	v.SetDefault("fsm.down_exit_n", f.DownExitN)
	v.SetDefault("fsm.min_dwell_sec", f.MinDwellSec)
	v.SetDefault("fsm.force_down_if_confidence_below", f.ForceDownIfConfidenceBelow)

	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.retention", "1s:1d,1m:7d,1h:90d")
	v.SetDefault("storage.aggregation", "average")
	v.SetDefault("storage.xff", 0.5)
}

// Validate checks the configuration for required fields and valid values,
// delegating threshold/weight validation to healthcore.
func (c *Config) Validate() error {
	if len(c.Agent.Interfaces) == 0 {
		return fmt.Errorf("agent.interfaces: at least one interface is required")
	}
	if c.Agent.Interval <= 0 {
		return fmt.Errorf("agent.interval must be positive")
	}

	switch c.Agent.Source {
	case "", "scenario":
	case "live":
		targets := make(map[string]bool, len(c.Agent.Targets))
		for _, t := range c.Agent.Targets {
			if t.Host == "" {
				return fmt.Errorf("agent.targets: interface %q has no host", t.Interface)
			}
			if t.Type == "tcp" && t.Port == 0 {
				return fmt.Errorf("agent.targets: tcp target %q requires a port", t.Interface)
			}
			targets[t.Interface] = true
		}
		for _, iface := range c.Agent.Interfaces {
			if !targets[iface] {
				return fmt.Errorf("agent.targets: no live probe target configured for interface %q", iface)
			}
		}
	default:
		return fmt.Errorf("agent.source must be one of: scenario, live")
	}

	if _, err := c.HealthcoreConfig(); err != nil {
		return err
	}

	if c.Storage.XFF < 0 || c.Storage.XFF > 1 {
		return fmt.Errorf("storage.xff must be between 0 and 1")
	}
	validAggregations := map[string]bool{"average": true, "min": true, "max": true, "last": true}
	if !validAggregations[c.Storage.Aggregation] {
		return fmt.Errorf("storage.aggregation must be one of: average, min, max, last")
	}
	if err := validateRetention(c.Storage.Retention); err != nil {
		return fmt.Errorf("storage.retention: %w", err)
	}

	return nil
}

// HealthcoreConfig translates the YAML-shaped settings into the core's
// AgentConfig, validating thresholds and weights along the way.
func (c *Config) HealthcoreConfig() (healthcore.AgentConfig, error) {
	score := healthcore.ScoreConfig{
		WTp:                       c.Score.WTp,
		WRtt:                      c.Score.WRtt,
		WLoss:                     c.Score.WLoss,
		WJit:                      c.Score.WJit,
		TpMaxMbps:                 c.Score.TpMaxMbps,
		RttMinMs:                  c.Score.RttMinMs,
		RttMaxMs:                  c.Score.RttMaxMs,
		LossMaxPct:                c.Score.LossMaxPct,
		JitMaxMs:                  c.Score.JitMaxMs,
		EwmaAlpha:                 c.Score.EwmaAlpha,
		UseEwma:                   c.Score.UseEwma,
		EnableDowntrendPenalty:    c.Score.EnableDowntrendPenalty,
		DowntrendPenalty:          c.Score.DowntrendPenalty,
		EnableConfidenceCap:       c.Score.EnableConfidenceCap,
		CapConfidenceThreshold:    c.Score.CapConfidenceThreshold,
		CapMaxScoreWhenLowConf:    c.Score.CapMaxScoreWhenLowConf,
		MinConfidenceForPromotion: c.Score.MinConfidenceForPromotion,
	}

	fsm := healthcore.FsmConfig{
		HealthyEnter:               c.Fsm.HealthyEnter,
		HealthyExit:                c.Fsm.HealthyExit,
		DownEnter:                  c.Fsm.DownEnter,
		DownExit:                   c.Fsm.DownExit,
		HealthyEnterN:              c.Fsm.HealthyEnterN,
		HealthyExitN:               c.Fsm.HealthyExitN,
		DownEnterN:                 c.Fsm.DownEnterN,
		DownExitN:                  c.Fsm.DownExitN,
		MinDwellSec:                c.Fsm.MinDwellSec,
		MinConfidenceForPromotion:  c.Score.MinConfidenceForPromotion,
		ForceDownIfConfidenceBelow: c.Fsm.ForceDownIfConfidenceBelow,
	}

	cfg := healthcore.AgentConfig{Tracker: healthcore.TrackerConfig{Score: score, Fsm: fsm}}
	if err := cfg.Validate(); err != nil {
		return healthcore.AgentConfig{}, err
	}
	return cfg, nil
}

// validateRetention validates the RRD retention string format:
// "resolution:duration,resolution:duration,...", e.g. "1s:1d,1m:7d,1h:90d".
func validateRetention(retention string) error {
	if retention == "" {
		return fmt.Errorf("retention string cannot be empty")
	}

	durationPattern := regexp.MustCompile(`^(\d+)(s|m|h|d|w|y)$`)

	archives := strings.Split(retention, ",")
	for i, archive := range archives {
		archive = strings.TrimSpace(archive)
		parts := strings.Split(archive, ":")
		if len(parts) != 2 {
			return fmt.Errorf("archive %d: expected format 'resolution:duration', got %q", i+1, archive)
		}

		resolution := strings.TrimSpace(parts[0])
		if !durationPattern.MatchString(resolution) {
			return fmt.Errorf("archive %d: invalid resolution %q (use format like 10s, 1m, 1h)", i+1, resolution)
		}

		duration := strings.TrimSpace(parts[1])
		if !durationPattern.MatchString(duration) {
			return fmt.Errorf("archive %d: invalid duration %q (use format like 1d, 7d, 90d)", i+1, duration)
		}
	}

	return nil
}
