package store

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"stock-signal-bot/internal/types"
)

type Config struct {
	Watchlist struct {
		Stocks      []string          `yaml:"stocks"`
		Commodities map[string]string `yaml:"commodities"` // display name -> ticker
		Crypto      map[string]string `yaml:"crypto"`      // display name -> ticker
	} `yaml:"watchlist"`
	News struct {
		YahooRSSURL    string            `yaml:"yahoo_rss_url"`
		BloombergURL   string            `yaml:"bloomberg_url"`
		NewsAPIDomains string            `yaml:"newsapi_domains"`
		SearchKeywords map[string]string `yaml:"search_keywords"` // ticker -> query
		MaxPerSource   int               `yaml:"max_per_source"`
		FetchFullText  bool              `yaml:"fetch_full_text"`
	} `yaml:"news"`
	Thresholds types.ThresholdConfig `yaml:"thresholds"`
	Sentiment  struct {
		Endpoint       string `yaml:"endpoint"`
		BatchSize      int    `yaml:"batch_size"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"sentiment"`
	Backtest struct {
		LookbackDays    int `yaml:"lookback_days"`
		PriceBufferDays int `yaml:"price_buffer_days"`
		Sweep           struct {
			Buy         SweepRange `yaml:"buy"`
			Sell        SweepRange `yaml:"sell"`
			MinArticles []int      `yaml:"min_articles"`
			MinSignals  int        `yaml:"min_signals"`
		} `yaml:"sweep"`
	} `yaml:"backtest"`
	Email struct {
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port"`
	} `yaml:"email"`
	Schedule struct {
		DailyRunTime string `yaml:"daily_run_time"` // "HH:MM", 24h
	} `yaml:"schedule"`
	Dashboard struct {
		Addr string `yaml:"addr"`
	} `yaml:"dashboard"`
	Publish struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"publish"`
	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
}

// SweepRange is one configurable grid dimension.
type SweepRange struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Step  float64 `yaml:"step"`
}

func (c *Config) Validate() error {
	if len(c.Watchlist.Stocks)+len(c.Watchlist.Commodities)+len(c.Watchlist.Crypto) == 0 {
		return fmt.Errorf("watchlist cannot be empty")
	}
	if c.Thresholds.SellThreshold >= c.Thresholds.BuyThreshold {
		return fmt.Errorf("thresholds.sell_threshold (%.2f) must be below thresholds.buy_threshold (%.2f)",
			c.Thresholds.SellThreshold, c.Thresholds.BuyThreshold)
	}
	if c.Thresholds.MinArticles < 0 {
		return fmt.Errorf("thresholds.min_articles must be >= 0, got %d", c.Thresholds.MinArticles)
	}
	if c.Backtest.LookbackDays <= 0 {
		return fmt.Errorf("backtest.lookback_days must be positive, got %d", c.Backtest.LookbackDays)
	}
	if c.Schedule.DailyRunTime != "" {
		if _, err := time.Parse("15:04", c.Schedule.DailyRunTime); err != nil {
			return fmt.Errorf("schedule.daily_run_time must be HH:MM, got %q", c.Schedule.DailyRunTime)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.News.MaxPerSource == 0 {
		c.News.MaxPerSource = 10
	}
	if c.Sentiment.BatchSize == 0 {
		c.Sentiment.BatchSize = 16
	}
	if c.Sentiment.TimeoutSeconds == 0 {
		c.Sentiment.TimeoutSeconds = 60
	}
	if c.Backtest.LookbackDays == 0 {
		c.Backtest.LookbackDays = 30
	}
	if c.Backtest.PriceBufferDays == 0 {
		c.Backtest.PriceBufferDays = 10
	}
	if c.Backtest.Sweep.Buy == (SweepRange{}) {
		c.Backtest.Sweep.Buy = SweepRange{Start: 0.05, Stop: 0.60, Step: 0.05}
	}
	if c.Backtest.Sweep.Sell == (SweepRange{}) {
		c.Backtest.Sweep.Sell = SweepRange{Start: -0.05, Stop: -0.60, Step: -0.05}
	}
	if len(c.Backtest.Sweep.MinArticles) == 0 {
		c.Backtest.Sweep.MinArticles = []int{1, 2, 3, 5}
	}
	if c.Backtest.Sweep.MinSignals == 0 {
		c.Backtest.Sweep.MinSignals = 3
	}
	if c.Email.SMTPHost == "" {
		c.Email.SMTPHost = "smtp.gmail.com"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Schedule.DailyRunTime == "" {
		c.Schedule.DailyRunTime = "07:00"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":5000"
	}
	if c.Publish.OutputDir == "" {
		c.Publish.OutputDir = "docs"
	}
	if c.History.Path == "" {
		c.History.Path = "signals.db"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// AllTickers returns every watched ticker in a stable order: stocks as
// configured, then commodities and crypto sorted by ticker.
func (c *Config) AllTickers() []string {
	tickers := make([]string, 0, len(c.Watchlist.Stocks)+len(c.Watchlist.Commodities)+len(c.Watchlist.Crypto))
	tickers = append(tickers, c.Watchlist.Stocks...)
	tickers = append(tickers, sortedValues(c.Watchlist.Commodities)...)
	tickers = append(tickers, sortedValues(c.Watchlist.Crypto)...)
	return tickers
}

// CommodityTickers returns the commodity tickers sorted.
func (c *Config) CommodityTickers() []string {
	return sortedValues(c.Watchlist.Commodities)
}

// CryptoTickers returns the crypto tickers sorted.
func (c *Config) CryptoTickers() []string {
	return sortedValues(c.Watchlist.Crypto)
}

// DisplayName resolves a ticker to its friendly name, falling back to the
// ticker itself.
func (c *Config) DisplayName(ticker string) string {
	for name, t := range c.Watchlist.Commodities {
		if t == ticker {
			return name
		}
	}
	for name, t := range c.Watchlist.Crypto {
		if t == ticker {
			return name
		}
	}
	return ticker
}

// SearchKeyword resolves a ticker to its news search query, falling back to
// the ticker itself.
func (c *Config) SearchKeyword(ticker string) string {
	if kw, ok := c.News.SearchKeywords[ticker]; ok {
		return kw
	}
	return ticker
}

// Section groups watchlist tickers for presentation (digest and dashboards).
type Section struct {
	Name    string
	Tickers []string
}

// Sections returns the watchlist grouped for display.
func (c *Config) Sections() []Section {
	return []Section{
		{Name: "Stocks", Tickers: c.Watchlist.Stocks},
		{Name: "Commodities", Tickers: c.CommodityTickers()},
		{Name: "Crypto", Tickers: c.CryptoTickers()},
	}
}

func sortedValues(m map[string]string) []string {
	vals := make([]string, 0, len(m))
	for _, v := range m {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}
