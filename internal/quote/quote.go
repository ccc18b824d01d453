// Package quote parses Yahoo Finance v8 chart responses into point-in-time
// quote records and daily close series.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"folio/internal/models"
	"folio/internal/proxy"

	"github.com/sirupsen/logrus"
)

// ErrNoQuote flags a response that cannot yield a usable quote (missing
// meta, zero previous close). Callers keep their cached record.
var ErrNoQuote = errors.New("quote: no usable quote in response")

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

type Client struct {
	proxy   *proxy.Client
	baseURL string
	log     *logrus.Logger
}

func New(p *proxy.Client, log *logrus.Logger) *Client {
	return &Client{proxy: p, baseURL: "https://query1.finance.yahoo.com/v8/finance/chart", log: log}
}

func (c *Client) chartURL(symbol, interval, rng string) string {
	return fmt.Sprintf("%s/%s?interval=%s&range=%s", c.baseURL, url.PathEscape(symbol), interval, rng)
}

// Quote fetches the current quote for one instrument. A response without
// a price or with a zero previous close returns ErrNoQuote so the stale
// cached record survives.
func (c *Client) Quote(ctx context.Context, symbol, name string) (models.QuoteRecord, error) {
	body, err := c.proxy.Fetch(ctx, c.chartURL(symbol, "1d", "1d"))
	if err != nil {
		return models.QuoteRecord{}, err
	}
	return Parse(body, symbol, name)
}

// Parse normalizes a raw chart payload into a QuoteRecord.
func Parse(body []byte, symbol, name string) (models.QuoteRecord, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.QuoteRecord{}, fmt.Errorf("decode chart for %s: %w", symbol, err)
	}
	if len(resp.Chart.Result) == 0 {
		return models.QuoteRecord{}, ErrNoQuote
	}
	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return models.QuoteRecord{}, ErrNoQuote
	}
	prev := meta.PreviousClose
	if prev == nil {
		prev = meta.ChartPreviousClose
	}
	if prev == nil || *prev == 0 {
		return models.QuoteRecord{}, ErrNoQuote
	}

	price := *meta.RegularMarketPrice
	change := price - *prev
	pct := change / *prev * 100
	sign := "+"
	if pct < 0 {
		sign = ""
	}
	return models.QuoteRecord{
		Code:          symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: fmt.Sprintf("%s%.2f%%", sign, pct),
	}, nil
}

// DailyCloses fetches a daily close series keyed by UTC calendar date.
func (c *Client) DailyCloses(ctx context.Context, symbol, rng string) (map[string]float64, error) {
	body, err := c.proxy.Fetch(ctx, c.chartURL(symbol, "1d", rng))
	if err != nil {
		return nil, err
	}
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", symbol, err)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoQuote
	}
	r := resp.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close
	out := make(map[string]float64, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC().Format("2006-01-02")
		out[date] = *closes[i]
	}
	if len(out) == 0 {
		return nil, ErrNoQuote
	}
	return out, nil
}
