package backtest

import (
	"sort"

	"stock-signal-bot/internal/types"
)

// Evaluate scores one threshold triple against the evaluation table. Rows
// below the article floor count as HOLD; remaining rows are classified buy
// first, then sell, so a misordered config biases overlap rows toward BUY
// rather than erroring. Accuracy is 0.0, not NaN, on zero signals.
func Evaluate(table []types.EvaluationRow, cfg types.ThresholdConfig) types.EvaluationResult {
	res := types.EvaluationResult{Config: cfg}

	for _, row := range table {
		if row.ArticleCount < cfg.MinArticles {
			res.HoldCount++
			continue
		}
		switch {
		case row.SentimentScore > cfg.BuyThreshold:
			res.TotalSignals++
			if row.ActualChangePct > 0 {
				res.TPBuy++
			} else {
				res.FPBuy++
			}
		case row.SentimentScore < cfg.SellThreshold:
			res.TotalSignals++
			if row.ActualChangePct < 0 {
				res.TPSell++
			} else {
				res.FPSell++
			}
		default:
			res.HoldCount++
		}
	}

	res.Correct = res.TPBuy + res.TPSell
	if res.TotalSignals > 0 {
		res.Accuracy = float64(res.Correct) / float64(res.TotalSignals)
	}
	return res
}

// EvaluatePerTicker scores one config against each ticker's rows separately.
func EvaluatePerTicker(table []types.EvaluationRow, cfg types.ThresholdConfig) map[string]types.EvaluationResult {
	byTicker := make(map[string][]types.EvaluationRow)
	for _, row := range table {
		byTicker[row.Ticker] = append(byTicker[row.Ticker], row)
	}

	stats := make(map[string]types.EvaluationResult, len(byTicker))
	for ticker, rows := range byTicker {
		stats[ticker] = Evaluate(rows, cfg)
	}
	return stats
}

// Tickers returns the distinct tickers present in the table, sorted.
func Tickers(table []types.EvaluationRow) []string {
	seen := make(map[string]bool)
	for _, row := range table {
		seen[row.Ticker] = true
	}
	tickers := make([]string, 0, len(seen))
	for t := range seen {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
