package signal

import (
	"context"
	"math"
	"os"
	"testing"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func testConfig(stocks ...string) *store.Config {
	cfg := &store.Config{}
	cfg.Watchlist.Stocks = stocks
	return cfg
}

func testThresholds() types.ThresholdConfig {
	return types.ThresholdConfig{BuyThreshold: 0.2, SellThreshold: -0.05, MinArticles: 1}
}

func TestGenerateBuySignal(t *testing.T) {
	cfg := testConfig("AAPL")
	g := NewAggregator(cfg)

	articles := []types.Article{
		{Title: "Apple beats earnings", Ticker: "AAPL", Sentiment: types.SentimentPositive, Confidence: 0.9, Scored: true},
		{Title: "Supply chain worries", Ticker: "AAPL", Sentiment: types.SentimentNegative, Confidence: 0.3, Scored: true},
	}

	signals := g.Generate(context.Background(), articles, testThresholds())

	sig, ok := signals["AAPL"]
	if !ok {
		t.Fatal("Expected signal for AAPL")
	}
	if sig.Signal != types.SignalBuy {
		t.Errorf("Expected BUY, got %s", sig.Signal)
	}
	if math.Abs(sig.Score-0.5) > 1e-9 {
		t.Errorf("Expected score 0.5, got %f", sig.Score)
	}
	if sig.ArticleCount != 2 {
		t.Errorf("Expected article count 2, got %d", sig.ArticleCount)
	}
	if math.Abs(sig.Confidence-60.0) > 1e-9 {
		t.Errorf("Expected confidence 60.0, got %f", sig.Confidence)
	}
	if sig.TopHeadline != "Apple beats earnings" {
		t.Errorf("Expected top headline from strongest article, got %q", sig.TopHeadline)
	}
}

func TestGenerateSellSignal(t *testing.T) {
	g := NewAggregator(testConfig("TSLA"))

	articles := []types.Article{
		{Title: "Recall announced", Ticker: "TSLA", Sentiment: types.SentimentNegative, Confidence: 0.8, Scored: true},
	}

	signals := g.Generate(context.Background(), articles, testThresholds())
	if sig := signals["TSLA"]; sig.Signal != types.SignalSell {
		t.Errorf("Expected SELL, got %s", sig.Signal)
	}
}

func TestGenerateDilutedNeutralHolds(t *testing.T) {
	g := NewAggregator(testConfig("AAPL"))

	articles := []types.Article{
		{Title: "Apple mentioned in passing", Ticker: "AAPL", Sentiment: types.SentimentNeutral, Confidence: 0.4, Scored: true},
	}

	signals := g.Generate(context.Background(), articles, testThresholds())

	sig := signals["AAPL"]
	if sig.Signal != types.SignalHold {
		t.Errorf("Expected HOLD, got %s", sig.Signal)
	}
	if sig.Score != 0.0 {
		t.Errorf("Expected score 0.0, got %f", sig.Score)
	}
	if sig.ArticleCount != 1 {
		t.Errorf("Filtered article still counts toward coverage, got %d", sig.ArticleCount)
	}
	if sig.Confidence != 0.0 {
		t.Errorf("Expected confidence 0.0, got %f", sig.Confidence)
	}
	if sig.TopHeadline != "" {
		t.Errorf("Expected no top headline when every article is filtered, got %q", sig.TopHeadline)
	}
}

func TestGenerateNoNews(t *testing.T) {
	g := NewAggregator(testConfig("AAPL", "MSFT"))

	signals := g.Generate(context.Background(), nil, testThresholds())

	if len(signals) != 2 {
		t.Fatalf("Expected a signal per watched asset, got %d", len(signals))
	}
	for ticker, sig := range signals {
		if sig.Signal != types.SignalHold {
			t.Errorf("%s: expected HOLD with no news, got %s", ticker, sig.Signal)
		}
		if sig.TopHeadline != "No recent news" {
			t.Errorf("%s: expected placeholder headline, got %q", ticker, sig.TopHeadline)
		}
		if sig.ArticleCount != 0 {
			t.Errorf("%s: expected zero articles, got %d", ticker, sig.ArticleCount)
		}
	}
}

func TestGenerateMinArticlesGate(t *testing.T) {
	g := NewAggregator(testConfig("AAPL"))

	articles := []types.Article{
		{Title: "Strong quarter", Ticker: "AAPL", Sentiment: types.SentimentPositive, Confidence: 0.95, Scored: true},
	}

	thresholds := testThresholds()
	thresholds.MinArticles = 3

	signals := g.Generate(context.Background(), articles, thresholds)

	sig := signals["AAPL"]
	if sig.Signal != types.SignalHold {
		t.Errorf("Expected HOLD below min article count, got %s", sig.Signal)
	}
	if sig.Score <= 0.2 {
		t.Errorf("Score should still be reported, got %f", sig.Score)
	}
}
