package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

func TestMain(m *testing.M) {
	logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
	os.Exit(m.Run())
}

func newTestClassifier(endpoint string, batchSize int) *Classifier {
	cfg := &store.Config{}
	cfg.Sentiment.Endpoint = endpoint
	cfg.Sentiment.BatchSize = batchSize
	cfg.Sentiment.TimeoutSeconds = 5
	return NewClassifier(cfg)
}

func TestScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}

		results := make([]map[string]any, len(req.Texts))
		for i := range req.Texts {
			results[i] = map[string]any{"label": "positive", "score": 0.91}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 2)
	articles := []types.Article{
		{Title: "Apple beats earnings", Ticker: "AAPL"},
		{Title: "Microsoft raises guidance", Ticker: "MSFT"},
		{Title: "Nvidia ships new chips", Ticker: "NVDA"},
	}

	scored := c.Score(context.Background(), articles)

	if len(scored) != 3 {
		t.Fatalf("Expected 3 scored articles, got %d", len(scored))
	}
	for _, a := range scored {
		if !a.Scored {
			t.Errorf("%s: expected Scored set", a.Ticker)
		}
		if a.Sentiment != types.SentimentPositive || a.Confidence != 0.91 {
			t.Errorf("%s: unexpected classification %s/%f", a.Ticker, a.Sentiment, a.Confidence)
		}
	}

	// Input untouched.
	if articles[0].Scored {
		t.Error("Score must not mutate its input")
	}
}

func TestScoreFailedBatchDegradesToNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 16)
	scored := c.Score(context.Background(), []types.Article{{Title: "headline"}})

	if len(scored) != 1 {
		t.Fatalf("Expected 1 article back, got %d", len(scored))
	}
	a := scored[0]
	if !a.Scored {
		t.Error("Failed batch should still mark articles scored")
	}
	if a.Sentiment != types.SentimentNeutral || a.Confidence != 0.0 {
		t.Errorf("Expected neutral/0.0 on failure, got %s/%f", a.Sentiment, a.Confidence)
	}
}

func TestScoreResultCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, 16)
	scored := c.Score(context.Background(), []types.Article{{Title: "headline"}})

	if scored[0].Sentiment != types.SentimentNeutral || scored[0].Confidence != 0.0 {
		t.Errorf("Expected neutral/0.0 on mismatched results, got %s/%f",
			scored[0].Sentiment, scored[0].Confidence)
	}
}

func TestScoreNoEndpoint(t *testing.T) {
	c := newTestClassifier("", 16)
	scored := c.Score(context.Background(), []types.Article{{Title: "headline"}})

	if scored[0].Scored {
		t.Error("Expected articles left unscored without an endpoint")
	}
}

func TestScoreEmpty(t *testing.T) {
	c := newTestClassifier("http://unused", 16)
	if got := c.Score(context.Background(), nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}
