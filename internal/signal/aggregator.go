package signal

import (
	"context"
	"math"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// Aggregator reduces scored articles into per-asset BUY/SELL/HOLD signals.
type Aggregator struct {
	cfg *store.Config
}

// NewAggregator creates an aggregator over the configured watchlist.
func NewAggregator(cfg *store.Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Generate aggregates article sentiments into one signal per watched asset.
// Absence of data degrades to HOLD, never an error.
func (g *Aggregator) Generate(ctx context.Context, articles []types.Article, thresholds types.ThresholdConfig) map[string]types.AssetSignal {
	byTicker := make(map[string][]types.Article)
	for _, a := range articles {
		byTicker[a.Ticker] = append(byTicker[a.Ticker], a)
	}

	signals := make(map[string]types.AssetSignal, len(g.cfg.AllTickers()))
	for _, ticker := range g.cfg.AllTickers() {
		tickerArticles := byTicker[ticker]
		if len(tickerArticles) == 0 {
			signals[ticker] = g.emptySignal(ticker)
			continue
		}

		sig := g.aggregate(ticker, tickerArticles, thresholds)
		signals[ticker] = sig

		logger.Signal(ctx, ticker, sig.Signal, sig.Score, sig.ArticleCount,
			"display_name", sig.DisplayName, "confidence_pct", sig.Confidence)
	}

	return signals
}

// aggregate scores one asset's articles against the given thresholds.
func (g *Aggregator) aggregate(ticker string, articles []types.Article, thresholds types.ThresholdConfig) types.AssetSignal {
	count := len(articles)

	score, weightTotal := WeightedScore(articles, true)

	// Confidence is averaged over every article, filtered ones included, so
	// a neutral-heavy feed reports low confidence.
	avgConfidence := weightTotal / float64(count)

	topHeadline := ""
	bestConfidence := 0.0
	for _, a := range articles {
		polarity, weight := articleWeight(a)
		if polarity == 0.0 && weight < dilutionCutoff {
			continue
		}
		if weight > bestConfidence {
			bestConfidence = weight
			topHeadline = a.Title
		}
	}

	decision := types.SignalHold
	switch {
	case count < thresholds.MinArticles:
		// not enough coverage to act
	case score > thresholds.BuyThreshold:
		decision = types.SignalBuy
	case score < thresholds.SellThreshold:
		decision = types.SignalSell
	}

	return types.AssetSignal{
		Signal:       decision,
		Score:        round3(score),
		Confidence:   round1(avgConfidence * 100),
		ArticleCount: count,
		TopHeadline:  topHeadline,
		DisplayName:  g.cfg.DisplayName(ticker),
	}
}

func (g *Aggregator) emptySignal(ticker string) types.AssetSignal {
	return types.AssetSignal{
		Signal:       types.SignalHold,
		Score:        0.0,
		Confidence:   0.0,
		ArticleCount: 0,
		TopHeadline:  "No recent news",
		DisplayName:  g.cfg.DisplayName(ticker),
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
