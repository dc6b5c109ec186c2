package news

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

const scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// collectBloomberg scrapes public headlines from the Bloomberg markets page
// and keeps the ones that mention a watched asset. Headlines here have no
// publication timestamp, so they are stamped with the fetch time.
func (c *Collector) collectBloomberg(ctx context.Context) []types.Article {
	if c.cfg.News.BloombergURL == "" {
		return nil
	}

	var articles []types.Article
	now := time.Now().UTC()

	collector := colly.NewCollector(colly.MaxDepth(1))
	collector.SetRequestTimeout(15 * time.Second)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", scrapeUserAgent)
	})

	collector.OnHTML("body", func(e *colly.HTMLElement) {
		e.DOM.Find("h1, h2, h3, a").Each(func(_ int, sel *goquery.Selection) {
			if len(articles) >= 50 {
				return
			}
			text := strings.TrimSpace(sel.Text())
			if len(text) < 15 || len(text) > 300 {
				return
			}
			ticker, ok := c.matchTicker(text)
			if !ok {
				return
			}
			articles = append(articles, types.Article{
				Title:     text,
				Source:    "Bloomberg",
				Ticker:    ticker,
				Published: now,
			})
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Error scraping Bloomberg", err, "url", r.Request.URL.String())
	})

	if err := collector.Visit(c.cfg.News.BloombergURL); err != nil {
		logger.ErrorWithErr(ctx, "Error scraping Bloomberg", err)
		return nil
	}
	collector.Wait()

	logger.Debug(ctx, "Bloomberg scrape completed", "matched", len(articles))
	return articles
}

// matchTicker checks whether a headline mentions a watched asset: stock
// tickers by symbol, commodities and crypto by their display names.
func (c *Collector) matchTicker(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, ticker := range c.cfg.Watchlist.Stocks {
		if strings.Contains(upper, strings.ToUpper(ticker)) {
			return ticker, true
		}
	}
	for name, ticker := range c.cfg.Watchlist.Commodities {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return ticker, true
		}
	}
	for name, ticker := range c.cfg.Watchlist.Crypto {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return ticker, true
		}
	}
	return "", false
}
