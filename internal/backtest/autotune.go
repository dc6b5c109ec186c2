package backtest

import (
	"context"
	"errors"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// DataUnavailable failure modes for the report path.
var (
	ErrNoArticles = errors.New("no articles collected")
	ErrNoData     = errors.New("no evaluation data: price history does not overlap article dates")
)

// NewsSource supplies historical articles with publication dates.
type NewsSource interface {
	CollectHistorical(ctx context.Context) ([]types.Article, error)
}

// Classifier annotates articles with sentiment labels and confidences. It is
// a black box: failures degrade individual articles, never the batch.
type Classifier interface {
	Score(ctx context.Context, articles []types.Article) []types.Article
}

// PriceSource supplies daily closes per ticker over a lookback window plus
// enough trailing buffer to resolve the last date's forward return.
type PriceSource interface {
	DailyCloses(ctx context.Context, tickers []string) (types.PriceSeries, error)
}

// AutoTuner rebuilds the evaluation table from fresh history and decides
// whether the live thresholds should be replaced.
type AutoTuner struct {
	news       NewsSource
	classifier Classifier
	prices     PriceSource
	grid       Grid
}

// NewAutoTuner wires the tuner with its collaborators and search grid.
func NewAutoTuner(news NewsSource, classifier Classifier, prices PriceSource, grid Grid) *AutoTuner {
	return &AutoTuner{news: news, classifier: classifier, prices: prices, grid: grid}
}

// TuneResult reports the tuner's decision. Config is the triple the caller
// should run with: the sweep optimum when Updated, otherwise current.
type TuneResult struct {
	Config          types.ThresholdConfig
	Updated         bool
	CurrentAccuracy float64
	OptimalAccuracy float64
}

// Tune runs the backtest against the current thresholds and the sweep
// optimum, returning new thresholds only on a strict accuracy improvement.
// It never fails: every data problem keeps the current config and logs why.
// It runs automatically ahead of the signal pipeline, so it must not take
// the pipeline down with it.
func (t *AutoTuner) Tune(ctx context.Context, current types.ThresholdConfig) TuneResult {
	keep := TuneResult{Config: current}

	op := logger.StartOperation(ctx, "auto-tune")
	ctx = op.GetContext()

	table, err := t.buildTable(ctx)
	if err != nil {
		logger.Warn(ctx, "Auto-tune: keeping current thresholds", "reason", err.Error())
		op.End("updated", false)
		return keep
	}

	currentResult := Evaluate(table, current)
	keep.CurrentAccuracy = currentResult.Accuracy

	optimal, err := SelectOptimal(Sweep(table, t.grid), t.grid.MinSignals)
	if err != nil {
		logger.Warn(ctx, "Auto-tune: keeping current thresholds", "reason", err.Error())
		op.End("updated", false)
		return keep
	}
	keep.OptimalAccuracy = optimal.Accuracy

	if optimal.Accuracy > currentResult.Accuracy {
		logger.TuneUpdate(ctx, optimal.Config.BuyThreshold, optimal.Config.SellThreshold,
			optimal.Config.MinArticles, currentResult.Accuracy, optimal.Accuracy,
			"old_buy", current.BuyThreshold, "old_sell", current.SellThreshold,
			"old_min_articles", current.MinArticles)
		op.End("updated", true)
		return TuneResult{
			Config:          optimal.Config,
			Updated:         true,
			CurrentAccuracy: currentResult.Accuracy,
			OptimalAccuracy: optimal.Accuracy,
		}
	}

	logger.Info(ctx, "Auto-tune: current thresholds are optimal, no changes",
		"accuracy", currentResult.Accuracy)
	op.End("updated", false)
	return keep
}

// buildTable fetches fresh history from the collaborators and joins it into
// an evaluation table.
func (t *AutoTuner) buildTable(ctx context.Context) ([]types.EvaluationRow, error) {
	articles, err := t.news.CollectHistorical(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	articles = t.classifier.Score(ctx, articles)

	tickers := uniqueTickers(articles)
	prices, err := t.prices.DailyCloses(ctx, tickers)
	if err != nil {
		return nil, err
	}

	table := BuildTable(articles, prices)
	if len(table) == 0 {
		return nil, ErrNoData
	}
	return table, nil
}

func uniqueTickers(articles []types.Article) []string {
	seen := make(map[string]bool)
	tickers := make([]string, 0)
	for _, a := range articles {
		if !seen[a.Ticker] {
			seen[a.Ticker] = true
			tickers = append(tickers, a.Ticker)
		}
	}
	return tickers
}
