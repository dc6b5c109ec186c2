package backtest

import (
	"sort"

	"stock-signal-bot/internal/signal"
	"stock-signal-bot/internal/types"
)

type groupKey struct {
	ticker string
	date   string
}

// BuildTable joins historical scored articles with realized forward returns.
// Articles are grouped by (ticker, UTC calendar date); groups without a
// price series or a resolvable next-day return are skipped silently, those
// gaps are expected. Rows come out in (ticker, date) order.
func BuildTable(articles []types.Article, prices types.PriceSeries) []types.EvaluationRow {
	groups := make(map[groupKey][]types.Article)
	for _, a := range articles {
		key := groupKey{ticker: a.Ticker, date: a.Published.UTC().Format(types.DateFormat)}
		groups[key] = append(groups[key], a)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ticker != keys[j].ticker {
			return keys[i].ticker < keys[j].ticker
		}
		return keys[i].date < keys[j].date
	})

	table := make([]types.EvaluationRow, 0, len(keys))
	for _, k := range keys {
		series, ok := prices[k.ticker]
		if !ok {
			continue
		}
		change, ok := NextDayChange(series, k.date)
		if !ok {
			continue
		}
		// Backtest scoring keeps every article in the group; the dilution
		// filter applies only to live signals.
		score, _ := signal.WeightedScore(groups[k], false)
		table = append(table, types.EvaluationRow{
			Ticker:          k.ticker,
			Date:            k.date,
			SentimentScore:  score,
			ActualChangePct: change,
			ArticleCount:    len(groups[k]),
		})
	}

	return table
}
