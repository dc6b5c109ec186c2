package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

const defaultChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Client fetches daily closing prices from the Yahoo Finance chart API.
type Client struct {
	baseURL      string
	lookbackDays int
	bufferDays   int
	httpClient   *http.Client
}

// NewClient creates a price client covering lookbackDays plus a trailing
// buffer so the last date's forward return is resolvable.
func NewClient(lookbackDays, bufferDays int) *Client {
	return &Client{
		baseURL:      defaultChartBaseURL,
		lookbackDays: lookbackDays,
		bufferDays:   bufferDays,
		httpClient:   &http.Client{Timeout: 20 * time.Second},
	}
}

// DailyCloses fetches each ticker's date -> close mapping over the lookback
// window. Tickers that fail are logged and omitted; an empty series for an
// asset simply drops it from the backtest.
func (c *Client) DailyCloses(ctx context.Context, tickers []string) (types.PriceSeries, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(c.lookbackDays + c.bufferDays))

	series := make(types.PriceSeries, len(tickers))
	for _, ticker := range tickers {
		daily, err := c.fetchDaily(ctx, ticker, start, end)
		if err != nil {
			logger.ErrorWithErr(ctx, "Error fetching price data", err, "ticker", ticker)
			continue
		}
		if len(daily) == 0 {
			logger.Warn(ctx, "No price data", "ticker", ticker)
			continue
		}
		series[ticker] = daily
		logger.Debug(ctx, "Price data fetched", "ticker", ticker, "days", len(daily))
	}
	return series, nil
}

func (c *Client) fetchDaily(ctx context.Context, ticker string, start, end time.Time) (map[string]float64, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("interval", "1d")

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "stock-signal-bot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chart api http %d", resp.StatusCode)
	}

	var r struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, err
	}
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("chart api: %s", r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 || len(r.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := r.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	daily := make(map[string]float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Null closes appear for halted or partial days.
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC().Format(types.DateFormat)
		daily[date] = *closes[i]
	}
	return daily, nil
}
