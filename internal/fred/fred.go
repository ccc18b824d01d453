// Package fred reads observation series from the St. Louis Fed API.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"folio/internal/proxy"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured means no API key is set. This is a user-action state,
// not a fetch failure, and callers must check it before calling out.
var ErrNotConfigured = errors.New("fred: api key not configured")

type Client struct {
	apiKey  string
	baseURL string
	proxy   *proxy.Client
	log     *logrus.Logger
}

func New(apiKey string, p *proxy.Client, log *logrus.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.stlouisfed.org/fred/series/observations",
		proxy:   p,
		log:     log,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Observations fetches a series as a date -> value map. FRED marks missing
// observations with "."; those are skipped.
func (c *Client) Observations(ctx context.Context, seriesID string, start time.Time) (map[string]float64, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("observation_start", start.Format("2006-01-02"))

	body, err := c.proxy.Fetch(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s observations: %w", seriesID, err)
	}
	if resp.Observations == nil {
		return nil, fmt.Errorf("no observations for %s (check API key)", seriesID)
	}

	out := make(map[string]float64, len(resp.Observations))
	for _, obs := range resp.Observations {
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		out[obs.Date] = v
	}
	return out, nil
}
