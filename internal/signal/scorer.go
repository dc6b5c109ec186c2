package signal

import "stock-signal-bot/internal/types"

// dilutionCutoff excludes low-confidence neutral articles from the weighted
// sum in live scoring so they cannot mute a real signal.
const dilutionCutoff = 0.7

// Polarity maps a sentiment label to its signed numeric projection. Unknown
// labels fail closed to 0.
func Polarity(sentiment string) float64 {
	switch sentiment {
	case types.SentimentPositive:
		return 1.0
	case types.SentimentNegative:
		return -1.0
	default:
		return 0.0
	}
}

// articleWeight returns the polarity and confidence weight for one article,
// applying the unscored defaults (neutral, 0.5).
func articleWeight(a types.Article) (polarity, weight float64) {
	if !a.Scored {
		return 0.0, 0.5
	}
	return Polarity(a.Sentiment), a.Confidence
}

// WeightedScore computes the confidence-weighted average polarity of an
// article group. Live scoring passes applyDilutionFilter=true; the backtest
// table keeps every article. Both paths share this one formula so they
// cannot drift apart. Returns the score and the surviving weight total.
func WeightedScore(articles []types.Article, applyDilutionFilter bool) (score, weightTotal float64) {
	var weightedSum float64
	for _, a := range articles {
		polarity, weight := articleWeight(a)
		if applyDilutionFilter && polarity == 0.0 && weight < dilutionCutoff {
			continue
		}
		weightedSum += polarity * weight
		weightTotal += weight
	}
	if weightTotal <= 0 {
		return 0.0, weightTotal
	}
	return weightedSum / weightTotal, weightTotal
}
