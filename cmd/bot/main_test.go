package main

import (
	"testing"

	"stock-signal-bot/internal/types"
)

func TestSummarize(t *testing.T) {
	signals := map[string]types.AssetSignal{
		"AAPL":    {Signal: types.SignalBuy},
		"MSFT":    {Signal: types.SignalBuy},
		"TSLA":    {Signal: types.SignalSell},
		"GC=F":    {Signal: types.SignalHold},
		"BTC-USD": {Signal: types.SignalHold},
	}

	buy, sell, hold := summarize(signals)
	if buy != 2 || sell != 1 || hold != 2 {
		t.Errorf("Expected 2/1/2, got %d/%d/%d", buy, sell, hold)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	buy, sell, hold := summarize(nil)
	if buy != 0 || sell != 0 || hold != 0 {
		t.Errorf("Expected zeros, got %d/%d/%d", buy, sell, hold)
	}
}
