package types

import "time"

// DateFormat is the calendar-day key used across price series and the
// evaluation table.
const DateFormat = "2006-01-02"

// Sentiment labels produced by the classifier.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Signal values emitted per asset.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// Article is one collected headline, immutable once scored. Scored is set by
// the classifier; unscored articles are treated as neutral with 0.5
// confidence downstream.
type Article struct {
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Source     string    `json:"source"`
	Ticker     string    `json:"ticker"`
	Published  time.Time `json:"published"`
	Link       string    `json:"link"`
	Sentiment  string    `json:"sentiment,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Scored     bool      `json:"scored,omitempty"`
}

// PriceSeries maps ticker -> date string -> daily closing price. One entry
// per trading day; non-trading days are simply absent.
type PriceSeries map[string]map[string]float64

// AssetSignal is the aggregator's per-asset output, consumed by the email
// digest and dashboards.
type AssetSignal struct {
	Signal       string  `json:"signal"`
	Score        float64 `json:"score"`
	Confidence   float64 `json:"confidence"`
	ArticleCount int     `json:"article_count"`
	TopHeadline  string  `json:"top_headline"`
	DisplayName  string  `json:"display_name"`
}

// ThresholdConfig is a candidate or live signal-decision triple.
type ThresholdConfig struct {
	BuyThreshold  float64 `json:"buy_threshold" yaml:"buy_threshold"`
	SellThreshold float64 `json:"sell_threshold" yaml:"sell_threshold"`
	MinArticles   int     `json:"min_articles" yaml:"min_articles"`
}

// EvaluationRow joins one (ticker, date) article group with its realized
// forward return.
type EvaluationRow struct {
	Ticker          string  `json:"ticker"`
	Date            string  `json:"date"`
	SentimentScore  float64 `json:"sentiment_score"`
	ActualChangePct float64 `json:"actual_change_pct"`
	ArticleCount    int     `json:"article_count"`
}

// EvaluationResult scores one ThresholdConfig against an evaluation table.
type EvaluationResult struct {
	Config       ThresholdConfig `json:"config"`
	Accuracy     float64         `json:"accuracy"`
	TotalSignals int             `json:"total_signals"`
	Correct      int             `json:"correct"`
	TPBuy        int             `json:"tp_buy"`
	FPBuy        int             `json:"fp_buy"`
	TPSell       int             `json:"tp_sell"`
	FPSell       int             `json:"fp_sell"`
	HoldCount    int             `json:"hold_count"`
}
