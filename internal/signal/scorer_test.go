package signal

import (
	"math"
	"testing"

	"stock-signal-bot/internal/types"
)

func scoredArticle(sentiment string, confidence float64) types.Article {
	return types.Article{
		Title:      "headline",
		Sentiment:  sentiment,
		Confidence: confidence,
		Scored:     true,
	}
}

func TestPolarity(t *testing.T) {
	cases := []struct {
		label string
		want  float64
	}{
		{types.SentimentPositive, 1.0},
		{types.SentimentNegative, -1.0},
		{types.SentimentNeutral, 0.0},
		{"bullish", 0.0}, // unknown labels fail closed
		{"", 0.0},
	}
	for _, c := range cases {
		if got := Polarity(c.label); got != c.want {
			t.Errorf("Polarity(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}

func TestWeightedScore(t *testing.T) {
	articles := []types.Article{
		scoredArticle(types.SentimentPositive, 0.9),
		scoredArticle(types.SentimentNegative, 0.3),
	}

	score, weightTotal := WeightedScore(articles, true)
	if math.Abs(score-0.5) > 1e-9 {
		t.Errorf("Expected score 0.5, got %f", score)
	}
	if math.Abs(weightTotal-1.2) > 1e-9 {
		t.Errorf("Expected weight total 1.2, got %f", weightTotal)
	}
}

func TestWeightedScoreDilutionFilter(t *testing.T) {
	articles := []types.Article{
		scoredArticle(types.SentimentNeutral, 0.4),
	}

	// Live scoring drops the low-confidence neutral article entirely.
	score, weightTotal := WeightedScore(articles, true)
	if score != 0.0 {
		t.Errorf("Expected score 0.0 with all articles filtered, got %f", score)
	}
	if weightTotal != 0.0 {
		t.Errorf("Expected zero surviving weight, got %f", weightTotal)
	}

	// The backtest path keeps it.
	score, weightTotal = WeightedScore(articles, false)
	if score != 0.0 {
		t.Errorf("Expected neutral score 0.0, got %f", score)
	}
	if math.Abs(weightTotal-0.4) > 1e-9 {
		t.Errorf("Expected weight total 0.4 without filter, got %f", weightTotal)
	}
}

func TestWeightedScoreHighConfidenceNeutralSurvives(t *testing.T) {
	articles := []types.Article{
		scoredArticle(types.SentimentPositive, 0.8),
		scoredArticle(types.SentimentNeutral, 0.9),
	}

	score, weightTotal := WeightedScore(articles, true)
	if math.Abs(weightTotal-1.7) > 1e-9 {
		t.Errorf("Expected confident neutral to survive the filter, weight total %f", weightTotal)
	}
	want := 0.8 / 1.7
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Expected score %f, got %f", want, score)
	}
}

func TestWeightedScoreUnscoredDefaults(t *testing.T) {
	articles := []types.Article{
		{Title: "not yet classified"},
	}

	// Unscored articles default to neutral/0.5: filtered in live scoring,
	// kept as zero-polarity weight in the backtest path.
	if score, weight := WeightedScore(articles, true); score != 0.0 || weight != 0.0 {
		t.Errorf("Expected unscored article filtered live, got score=%f weight=%f", score, weight)
	}
	if score, weight := WeightedScore(articles, false); score != 0.0 || weight != 0.5 {
		t.Errorf("Expected unscored article weighted 0.5 in backtest, got score=%f weight=%f", score, weight)
	}
}

func TestWeightedScoreEmpty(t *testing.T) {
	score, weightTotal := WeightedScore(nil, true)
	if score != 0.0 || weightTotal != 0.0 {
		t.Errorf("Expected zeros on empty input, got score=%f weight=%f", score, weightTotal)
	}
}
