package backtest

import (
	"errors"
	"math"
	"sort"

	"stock-signal-bot/internal/types"
)

// ErrNoViableConfig is the sweeper's terminal failure: no grid point
// produced even a single actionable signal.
var ErrNoViableConfig = errors.New("no viable threshold configuration found")

// Grid is the sweep search space. MinSignals is the viability floor; when no
// candidate reaches it the filter relaxes to one signal before giving up.
type Grid struct {
	BuyThresholds  []float64
	SellThresholds []float64
	MinArticles    []int
	MinSignals     int
}

// DefaultGrid returns the reference 12x12x4 search space.
func DefaultGrid() Grid {
	return Grid{
		BuyThresholds:  Steps(0.05, 0.60, 0.05),
		SellThresholds: Steps(-0.05, -0.60, -0.05),
		MinArticles:    []int{1, 2, 3, 5},
		MinSignals:     3,
	}
}

// Steps expands a {start, stop, step} range into grid values, rounded to two
// decimals to keep thresholds on clean ticks. Stop is inclusive. Step may be
// negative for descending ranges.
func Steps(start, stop, step float64) []float64 {
	if step == 0 {
		return nil
	}
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	if n <= 0 {
		return nil
	}
	vals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		vals = append(vals, math.Round((start+float64(i)*step)*100)/100)
	}
	return vals
}

// Sweep evaluates every grid combination against the table. Enumeration
// order is min_articles outermost, then buy, then sell; SelectOptimal's
// stable sort relies on it as the final tie-break.
func Sweep(table []types.EvaluationRow, grid Grid) []types.EvaluationResult {
	results := make([]types.EvaluationResult, 0,
		len(grid.MinArticles)*len(grid.BuyThresholds)*len(grid.SellThresholds))

	for _, minArt := range grid.MinArticles {
		for _, buy := range grid.BuyThresholds {
			for _, sell := range grid.SellThresholds {
				cfg := types.ThresholdConfig{
					BuyThreshold:  buy,
					SellThreshold: sell,
					MinArticles:   minArt,
				}
				results = append(results, Evaluate(table, cfg))
			}
		}
	}
	return results
}

// SelectOptimal picks the best configuration from sweep results: filter to
// candidates with at least minSignals actionable signals (relaxing to one if
// none qualify), then maximize accuracy with more signals breaking ties.
func SelectOptimal(results []types.EvaluationResult, minSignals int) (types.EvaluationResult, error) {
	viable := filterBySignals(results, minSignals)
	if len(viable) == 0 {
		viable = filterBySignals(results, 1)
	}
	if len(viable) == 0 {
		return types.EvaluationResult{}, ErrNoViableConfig
	}

	sort.SliceStable(viable, func(i, j int) bool {
		if viable[i].Accuracy != viable[j].Accuracy {
			return viable[i].Accuracy > viable[j].Accuracy
		}
		return viable[i].TotalSignals > viable[j].TotalSignals
	})
	return viable[0], nil
}

func filterBySignals(results []types.EvaluationResult, floor int) []types.EvaluationResult {
	out := make([]types.EvaluationResult, 0, len(results))
	for _, r := range results {
		if r.TotalSignals >= floor {
			out = append(out, r)
		}
	}
	return out
}
