package news

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// Collector gathers headlines from Yahoo Finance RSS, the Bloomberg markets
// page, and NewsAPI. Articles with no title never leave this package, so the
// core can assume titled input.
type Collector struct {
	cfg     *store.Config
	parser  *gofeed.Parser
	newsAPI *newsAPIClient
}

// NewCollector creates a collector over the configured watchlist and sources.
func NewCollector(cfg *store.Config) *Collector {
	return &Collector{
		cfg:     cfg,
		parser:  gofeed.NewParser(),
		newsAPI: newNewsAPIClient(cfg),
	}
}

// CollectAll gathers today's articles from every source, deduplicated by
// title. Individual source failures are logged and skipped; an empty result
// is the caller's signal that nothing could be fetched.
func (c *Collector) CollectAll(ctx context.Context) []types.Article {
	op := logger.StartOperation(ctx, "collect-news")
	ctx = op.GetContext()

	var all []types.Article
	for _, ticker := range c.cfg.AllTickers() {
		all = append(all, c.collectYahooRSS(ctx, ticker, false)...)
	}
	all = append(all, c.collectBloomberg(ctx)...)
	all = append(all, c.newsAPI.collect(ctx)...)

	all = dropUntitled(all)
	if c.cfg.News.FetchFullText {
		all = c.enrichSummaries(ctx, all)
	}
	unique := deduplicate(all)

	logger.Info(ctx, "News collection completed", "collected", len(all), "after_dedup", len(unique))
	op.End("articles", len(unique))
	return unique
}

// CollectHistorical gathers RSS articles that carry publication dates, for
// the backtester. Articles without a resolvable date are skipped, the
// evaluation table needs them keyed by day.
func (c *Collector) CollectHistorical(ctx context.Context) ([]types.Article, error) {
	var all []types.Article
	for _, ticker := range c.cfg.AllTickers() {
		all = append(all, c.collectYahooRSS(ctx, ticker, true)...)
	}
	unique := deduplicate(dropUntitled(all))
	logger.Info(ctx, "Collected historical articles", "count", len(unique))
	return unique, nil
}

// collectYahooRSS fetches one ticker's RSS feed. With requireDate, entries
// without a parseable publication timestamp are dropped.
func (c *Collector) collectYahooRSS(ctx context.Context, ticker string, requireDate bool) []types.Article {
	url := strings.ReplaceAll(c.cfg.News.YahooRSSURL, "{ticker}", ticker)

	feed, err := c.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Error fetching Yahoo RSS", err, "ticker", ticker)
		return nil
	}

	articles := make([]types.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		if requireDate && published.IsZero() {
			continue
		}
		articles = append(articles, types.Article{
			Title:     item.Title,
			Summary:   item.Description,
			Source:    "Yahoo Finance",
			Ticker:    ticker,
			Published: published,
			Link:      item.Link,
		})
	}

	logger.Debug(ctx, "Yahoo RSS fetched", "ticker", ticker, "articles", len(articles))
	return articles
}

// dropUntitled filters out articles with empty titles.
func dropUntitled(articles []types.Article) []types.Article {
	kept := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if strings.TrimSpace(a.Title) != "" {
			kept = append(kept, a)
		}
	}
	return kept
}

// deduplicate removes articles whose normalized titles repeat, keeping the
// first occurrence.
func deduplicate(articles []types.Article) []types.Article {
	seen := make(map[string]bool, len(articles))
	unique := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(strings.TrimSpace(a.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, a)
	}
	return unique
}
