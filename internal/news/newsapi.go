package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

const newsAPIEndpoint = "https://newsapi.org/v2/everything"

// newsAPIClient queries the NewsAPI "everything" endpoint per watched asset.
type newsAPIClient struct {
	cfg    *store.Config
	apiKey string
	client *http.Client
}

func newNewsAPIClient(cfg *store.Config) *newsAPIClient {
	return &newsAPIClient{
		cfg:    cfg,
		apiKey: os.Getenv("NEWSAPI_KEY"),
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// collect fetches yesterday-to-now articles for every watched asset. Without
// an API key the source is skipped with a warning.
func (n *newsAPIClient) collect(ctx context.Context) []types.Article {
	if n.apiKey == "" {
		logger.Warn(ctx, "NewsAPI key not configured, skipping")
		return nil
	}

	fromDate := time.Now().UTC().AddDate(0, 0, -1).Format(types.DateFormat)

	var articles []types.Article
	for _, ticker := range n.cfg.AllTickers() {
		batch, err := n.query(ctx, n.cfg.SearchKeyword(ticker), fromDate)
		if err != nil {
			logger.ErrorWithErr(ctx, "Error querying NewsAPI", err, "ticker", ticker)
			continue
		}
		for i := range batch {
			batch[i].Ticker = ticker
		}
		articles = append(articles, batch...)
		logger.Debug(ctx, "NewsAPI fetched", "ticker", ticker, "articles", len(batch))
	}
	return articles
}

func (n *newsAPIClient) query(ctx context.Context, keywords, fromDate string) ([]types.Article, error) {
	q := url.Values{}
	q.Set("q", keywords)
	q.Set("domains", n.cfg.News.NewsAPIDomains)
	q.Set("from", fromDate)
	q.Set("language", "en")
	q.Set("sortBy", "relevancy")
	q.Set("pageSize", fmt.Sprintf("%d", n.cfg.News.MaxPerSource))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("newsapi http %d", resp.StatusCode)
	}

	var r struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, err
	}

	articles := make([]types.Article, 0, len(r.Articles))
	for _, a := range r.Articles {
		var published time.Time
		if a.PublishedAt != "" {
			if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				published = ts.UTC()
			}
		}
		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = "Unknown"
		}
		articles = append(articles, types.Article{
			Title:     a.Title,
			Summary:   a.Description,
			Source:    "NewsAPI (" + sourceName + ")",
			Published: published,
			Link:      a.URL,
		})
	}
	return articles, nil
}
