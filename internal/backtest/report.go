package backtest

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"stock-signal-bot/internal/types"
)

// Report is the full backtest output handed to manual callers: the table,
// the current-vs-optimal comparison, and per-ticker breakdowns under each.
type Report struct {
	Table            []types.EvaluationRow             `json:"table"`
	Current          types.EvaluationResult            `json:"current"`
	Optimal          types.EvaluationResult            `json:"optimal"`
	PerTickerCurrent map[string]types.EvaluationResult `json:"per_ticker_current"`
	PerTickerOptimal map[string]types.EvaluationResult `json:"per_ticker_optimal"`
}

// BuildReport runs the full backtest for a manual caller. Unlike Tune it
// surfaces DataUnavailable conditions as errors so the caller can report
// "insufficient data".
func (t *AutoTuner) BuildReport(ctx context.Context, current types.ThresholdConfig) (*Report, error) {
	table, err := t.buildTable(ctx)
	if err != nil {
		return nil, err
	}

	currentResult := Evaluate(table, current)
	optimal, err := SelectOptimal(Sweep(table, t.grid), t.grid.MinSignals)
	if err != nil {
		return nil, err
	}

	return &Report{
		Table:            table,
		Current:          currentResult,
		Optimal:          optimal,
		PerTickerCurrent: EvaluatePerTicker(table, current),
		PerTickerOptimal: EvaluatePerTicker(table, optimal.Config),
	}, nil
}

// WriteReport renders the report as the plain-text summary the backtest CLI
// prints. displayName resolves tickers to friendly names.
func WriteReport(w io.Writer, r *Report, displayName func(string) string) {
	rule := strings.Repeat("=", 70)
	sep := strings.Repeat("-", 70)

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "  BACKTEST REPORT: Sentiment Signals vs Actual Price Movements")
	fmt.Fprintf(w, "%s\n", rule)

	fmt.Fprintf(w, "\nData points: %d ticker-date combinations\n", len(r.Table))
	fmt.Fprintf(w, "Tickers with data: %d\n", len(Tickers(r.Table)))
	if first, last, ok := dateRange(r.Table); ok {
		fmt.Fprintf(w, "Date range: %s to %s\n", first, last)
	}

	writeResultSection(w, sep, "CURRENT THRESHOLDS", r.Current)
	writeResultSection(w, sep, "OPTIMAL THRESHOLDS (from sweep)", r.Optimal)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintln(w, "  PER-TICKER ACCURACY (optimal thresholds)")
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  %-12s %-10s %8s %8s %9s\n", "Ticker", "Name", "Signals", "Correct", "Accuracy")
	for _, ticker := range Tickers(r.Table) {
		stats := r.PerTickerOptimal[ticker]
		acc := "N/A"
		if stats.TotalSignals > 0 {
			acc = fmt.Sprintf("%.0f%%", stats.Accuracy*100)
		}
		fmt.Fprintf(w, "  %-12s %-10s %8d %8d %9s\n",
			ticker, displayName(ticker), stats.TotalSignals, stats.Correct, acc)
	}

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintln(w, "  CONFUSION MATRIX (optimal thresholds)")
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintln(w, "                    Actual UP    Actual DOWN")
	fmt.Fprintf(w, "  Predicted BUY     %8d     %8d\n", r.Optimal.TPBuy, r.Optimal.FPBuy)
	fmt.Fprintf(w, "  Predicted SELL    %8d     %8d\n", r.Optimal.FPSell, r.Optimal.TPSell)

	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintln(w, "  RECOMMENDATIONS")
	fmt.Fprintf(w, "%s\n", sep)
	if r.Optimal.Accuracy > r.Current.Accuracy {
		delta := r.Optimal.Accuracy - r.Current.Accuracy
		fmt.Fprintf(w, "  * Switch to optimal thresholds for +%.1f%% accuracy improvement\n", delta*100)
	} else {
		fmt.Fprintln(w, "  * Current thresholds are already at or near optimal")
	}
	fmt.Fprintf(w, "  * BUY_THRESHOLD  = %v\n", r.Optimal.Config.BuyThreshold)
	fmt.Fprintf(w, "  * SELL_THRESHOLD = %v\n", r.Optimal.Config.SellThreshold)
	fmt.Fprintf(w, "  * MIN_ARTICLES   = %d\n", r.Optimal.Config.MinArticles)

	if neutralHeavy := countNeutralHeavy(r.Table); neutralHeavy*2 > len(r.Table) {
		fmt.Fprintf(w, "  * WARNING: %d/%d data points have near-zero sentiment\n", neutralHeavy, len(r.Table))
		fmt.Fprintln(w, "    Consider filtering out neutral-heavy groups or boosting non-neutral weight")
	}
	if r.Optimal.TotalSignals < 5 {
		fmt.Fprintf(w, "  * NOTE: Only %d actionable signals found.\n", r.Optimal.TotalSignals)
		fmt.Fprintln(w, "    Results may not be statistically significant. Collect more data over time.")
	}

	fmt.Fprintf(w, "\n%s\n\n", rule)
}

func writeResultSection(w io.Writer, sep, title string, res types.EvaluationResult) {
	fmt.Fprintf(w, "\n%s\n", sep)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "  BUY > %v, SELL < %v, MIN_ARTICLES = %d\n",
		res.Config.BuyThreshold, res.Config.SellThreshold, res.Config.MinArticles)
	fmt.Fprintf(w, "%s\n", sep)
	fmt.Fprintf(w, "  Accuracy:      %.1f%%  (%d/%d signals correct)\n",
		res.Accuracy*100, res.Correct, res.TotalSignals)
	fmt.Fprintf(w, "  BUY signals:   %d correct, %d wrong\n", res.TPBuy, res.FPBuy)
	fmt.Fprintf(w, "  SELL signals:  %d correct, %d wrong\n", res.TPSell, res.FPSell)
	fmt.Fprintf(w, "  HOLD (no signal): %d\n", res.HoldCount)
}

func dateRange(table []types.EvaluationRow) (first, last string, ok bool) {
	for _, row := range table {
		if first == "" || row.Date < first {
			first = row.Date
		}
		if row.Date > last {
			last = row.Date
		}
	}
	return first, last, first != ""
}

func countNeutralHeavy(table []types.EvaluationRow) int {
	n := 0
	for _, row := range table {
		if math.Abs(row.SentimentScore) < 0.1 {
			n++
		}
	}
	return n
}
