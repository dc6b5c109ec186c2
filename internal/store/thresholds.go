package store

import (
	"fmt"
	"sync/atomic"

	"stock-signal-bot/internal/types"
)

// Thresholds holds the live decision triple. The auto-tuner replaces it as a
// unit; readers never observe a partially updated config.
type Thresholds struct {
	current atomic.Pointer[types.ThresholdConfig]
}

// NewThresholds validates and installs the initial config. A well-formed
// triple keeps sell strictly below buy; the evaluator stays permissive for
// arbitrary sweep candidates, this guard applies only to the live config.
func NewThresholds(cfg types.ThresholdConfig) (*Thresholds, error) {
	if err := validateThresholds(cfg); err != nil {
		return nil, err
	}
	t := &Thresholds{}
	t.current.Store(&cfg)
	return t, nil
}

func validateThresholds(cfg types.ThresholdConfig) error {
	if cfg.SellThreshold >= cfg.BuyThreshold {
		return fmt.Errorf("sell threshold %.2f must be below buy threshold %.2f",
			cfg.SellThreshold, cfg.BuyThreshold)
	}
	if cfg.MinArticles < 0 {
		return fmt.Errorf("min articles must be >= 0, got %d", cfg.MinArticles)
	}
	return nil
}

// Current returns the live config by value.
func (t *Thresholds) Current() types.ThresholdConfig {
	return *t.current.Load()
}

// Replace swaps in a new config atomically.
func (t *Thresholds) Replace(cfg types.ThresholdConfig) error {
	if err := validateThresholds(cfg); err != nil {
		return err
	}
	t.current.Store(&cfg)
	return nil
}
