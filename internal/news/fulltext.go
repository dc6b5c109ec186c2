package news

import (
	"context"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// Classifier input is truncated anyway; keep extracted text short.
const maxExtractedSummary = 512

// enrichSummaries fills in empty summaries by extracting readable text from
// the article page. Extraction failures leave the article as-is.
func (c *Collector) enrichSummaries(ctx context.Context, articles []types.Article) []types.Article {
	enriched := make([]types.Article, len(articles))
	copy(enriched, articles)

	for i := range enriched {
		if enriched[i].Summary != "" || enriched[i].Link == "" {
			continue
		}
		if _, err := url.ParseRequestURI(enriched[i].Link); err != nil {
			continue
		}

		article, err := readability.FromURL(enriched[i].Link, 10*time.Second)
		if err != nil {
			logger.Debug(ctx, "Full-text extraction failed", "link", enriched[i].Link, "error", err)
			continue
		}

		text := article.TextContent
		if len(text) > maxExtractedSummary {
			text = text[:maxExtractedSummary]
		}
		enriched[i].Summary = text
	}

	return enriched
}
