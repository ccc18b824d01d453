// Package proxy fetches third-party endpoints through CORS-bypass relays,
// trying each relay in order until one yields a usable payload.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Relay wraps a target URL into a relay request and unwraps the relay's
// response envelope back into the target's raw JSON.
type Relay struct {
	Name   string
	Encode func(target string) string
	Decode func(body []byte) ([]byte, error)
}

// identity relays return the target's payload as-is.
func identityDecode(body []byte) ([]byte, error) { return body, nil }

// allorigins wraps the payload as a JSON-encoded string under "contents".
func allOriginsDecode(body []byte) ([]byte, error) {
	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("unwrap contents: %w", err)
	}
	if envelope.Contents == "" {
		return nil, fmt.Errorf("empty contents envelope")
	}
	return []byte(envelope.Contents), nil
}

// DefaultRelays is the production relay chain: corsproxy.io first,
// allorigins.win as the single fallback.
func DefaultRelays() []Relay {
	return []Relay{
		{
			Name:   "corsproxy.io",
			Encode: func(target string) string { return "https://corsproxy.io/?" + url.QueryEscape(target) },
			Decode: identityDecode,
		},
		{
			Name:   "allorigins.win",
			Encode: func(target string) string { return "https://api.allorigins.win/get?url=" + url.QueryEscape(target) },
			Decode: allOriginsDecode,
		},
	}
}

type Client struct {
	http   *http.Client
	relays []Relay
	log    *logrus.Logger
}

func New(log *logrus.Logger) *Client {
	return NewWithRelays(&http.Client{Timeout: 15 * time.Second}, DefaultRelays(), log)
}

func NewWithRelays(httpClient *http.Client, relays []Relay, log *logrus.Logger) *Client {
	return &Client{http: httpClient, relays: relays, log: log}
}

// Fetch resolves target through the relay chain and returns its raw JSON.
// Each relay gets exactly one attempt; when all fail the error names the
// originally requested URL.
func (c *Client) Fetch(ctx context.Context, target string) ([]byte, error) {
	for _, relay := range c.relays {
		body, err := c.fetchVia(ctx, relay, target)
		if err != nil {
			c.log.Warnf("relay %s failed for %s: %v", relay.Name, target, err)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("all relays failed for %s", target)
}

func (c *Client) fetchVia(ctx context.Context, relay Relay, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relay.Encode(target), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	payload, err := relay.Decode(body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("malformed payload")
	}
	return payload, nil
}
