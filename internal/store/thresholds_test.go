package store

import (
	"testing"

	"stock-signal-bot/internal/types"
)

func TestNewThresholds(t *testing.T) {
	cfg := types.ThresholdConfig{BuyThreshold: 0.2, SellThreshold: -0.05, MinArticles: 1}

	th, err := NewThresholds(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := th.Current(); got != cfg {
		t.Errorf("Expected %+v, got %+v", cfg, got)
	}
}

func TestNewThresholdsRejectsMisordered(t *testing.T) {
	cases := []types.ThresholdConfig{
		{BuyThreshold: -0.05, SellThreshold: 0.2, MinArticles: 1}, // swapped
		{BuyThreshold: 0.1, SellThreshold: 0.1, MinArticles: 1},   // equal
		{BuyThreshold: 0.2, SellThreshold: -0.05, MinArticles: -1},
	}
	for _, cfg := range cases {
		if _, err := NewThresholds(cfg); err == nil {
			t.Errorf("Expected %+v to be rejected", cfg)
		}
	}
}

func TestThresholdsReplace(t *testing.T) {
	initial := types.ThresholdConfig{BuyThreshold: 0.2, SellThreshold: -0.05, MinArticles: 1}
	th, err := NewThresholds(initial)
	if err != nil {
		t.Fatal(err)
	}

	next := types.ThresholdConfig{BuyThreshold: 0.35, SellThreshold: -0.15, MinArticles: 2}
	if err := th.Replace(next); err != nil {
		t.Fatal(err)
	}
	if got := th.Current(); got != next {
		t.Errorf("Expected %+v after replace, got %+v", next, got)
	}

	// A bad replacement is refused and leaves the live config untouched.
	bad := types.ThresholdConfig{BuyThreshold: -0.1, SellThreshold: 0.1, MinArticles: 1}
	if err := th.Replace(bad); err == nil {
		t.Fatal("Expected misordered replacement to fail")
	}
	if got := th.Current(); got != next {
		t.Errorf("Failed replace must not change the config, got %+v", got)
	}
}
