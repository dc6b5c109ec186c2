package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// Model input cap; headlines plus a slice of summary is plenty.
const maxTextLen = 512

// Classifier calls a FinBERT-style inference service and attaches a label
// and confidence to each article. The model itself is a black box behind an
// HTTP endpoint.
type Classifier struct {
	endpoint  string
	batchSize int
	client    *http.Client
}

// NewClassifier creates a classifier from the sentiment service settings.
func NewClassifier(cfg *store.Config) *Classifier {
	return &Classifier{
		endpoint:  cfg.Sentiment.Endpoint,
		batchSize: cfg.Sentiment.BatchSize,
		client: &http.Client{
			Timeout: time.Duration(cfg.Sentiment.TimeoutSeconds) * time.Second,
		},
	}
}

// Score annotates articles with sentiment in batches. A failed batch
// degrades its articles to neutral with zero confidence; with no endpoint
// configured articles stay unscored and downstream defaults (neutral, 0.5)
// apply. Score never fails outright.
func (c *Classifier) Score(ctx context.Context, articles []types.Article) []types.Article {
	if len(articles) == 0 {
		return articles
	}
	if c.endpoint == "" {
		logger.Warn(ctx, "Sentiment endpoint not configured, articles left unscored")
		return articles
	}

	op := logger.StartOperation(ctx, "score-sentiment", "articles", len(articles))
	ctx = op.GetContext()

	scored := make([]types.Article, len(articles))
	copy(scored, articles)

	for start := 0; start < len(scored); start += c.batchSize {
		end := start + c.batchSize
		if end > len(scored) {
			end = len(scored)
		}
		batch := scored[start:end]

		results, err := c.classifyBatch(ctx, batch)
		if err != nil {
			logger.ErrorWithErr(ctx, "Sentiment batch failed", err, "batch_start", start)
			for i := range batch {
				batch[i].Sentiment = types.SentimentNeutral
				batch[i].Confidence = 0.0
				batch[i].Scored = true
			}
			continue
		}
		for i := range batch {
			batch[i].Sentiment = results[i].Label
			batch[i].Confidence = results[i].Score
			batch[i].Scored = true
		}
	}

	pos, neg, neu := tally(scored)
	logger.Info(ctx, "Sentiment results", "positive", pos, "negative", neg, "neutral", neu)
	op.End("positive", pos, "negative", neg, "neutral", neu)
	return scored
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *Classifier) classifyBatch(ctx context.Context, batch []types.Article) ([]classification, error) {
	texts := make([]string, len(batch))
	for i, a := range batch {
		text := a.Title
		if a.Summary != "" {
			text += ". " + a.Summary
		}
		if len(text) > maxTextLen {
			text = text[:maxTextLen]
		}
		texts[i] = text
	}

	body, err := json.Marshal(map[string]any{"texts": texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sentiment service http %d", resp.StatusCode)
	}

	var r struct {
		Results []classification `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, err
	}
	if len(r.Results) != len(batch) {
		return nil, fmt.Errorf("sentiment service returned %d results for %d texts", len(r.Results), len(batch))
	}
	return r.Results, nil
}

func tally(articles []types.Article) (pos, neg, neu int) {
	for _, a := range articles {
		switch a.Sentiment {
		case types.SentimentPositive:
			pos++
		case types.SentimentNegative:
			neg++
		default:
			neu++
		}
	}
	return pos, neg, neu
}
