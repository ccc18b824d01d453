// Package sheet fetches the user-configured portfolio endpoint. The
// endpoint is the user's own, so it is fetched directly, never through a
// relay.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"folio/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrBadPayload means the response parsed as JSON but matches neither the
// legacy bare-array shape nor the stocks/history object shape.
var ErrBadPayload = errors.New("sheet: unrecognized payload shape")

// Payload is the decoded endpoint response. Legacy endpoints fill only
// Stocks; current ones may add History, Stats and Market.
type Payload struct {
	Stocks  []models.RawRow
	History []models.RawRow
	Stats   models.RawRow
	Market  []models.RawRow
}

type Client struct {
	http *http.Client
	log  *logrus.Logger
}

func New(log *logrus.Logger) *Client {
	return &Client{http: &http.Client{Timeout: 15 * time.Second}, log: log}
}

func (c *Client) Fetch(ctx context.Context, endpoint string) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sheet response: %w", err)
	}
	return Decode(body)
}

// Decode detects the payload shape. Apps Script deployments answered with
// a bare holdings array before they grew the history/market tabs.
func Decode(body []byte) (*Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrBadPayload
	}

	switch trimmed[0] {
	case '[':
		var rows []models.RawRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return &Payload{Stocks: rows}, nil
	case '{':
		var obj struct {
			Stocks  []models.RawRow `json:"stocks"`
			History []models.RawRow `json:"history"`
			Stats   models.RawRow   `json:"stats"`
			Market  []models.RawRow `json:"market"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		if obj.Stocks == nil && obj.History == nil {
			return nil, ErrBadPayload
		}
		return &Payload{Stocks: obj.Stocks, History: obj.History, Stats: obj.Stats, Market: obj.Market}, nil
	default:
		return nil, ErrBadPayload
	}
}
