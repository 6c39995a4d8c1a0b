// Package upstream holds the HTTP clients of the data shown on the board.
// Every call is bounded by a timeout and returns an error on failure; the
// callers decide what to display instead.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/rubenparnell/departureBoard/internal/version"
	"io"
	"net/http"
	"time"
)

// browserUserAgent is sent to sites that reject unknown agents
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  version.AppVersion.UserAgent(),
	}
}

func (c *Client) get(ctx context.Context, url string, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if userAgent == "" {
		userAgent = c.userAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	resp, err := c.get(ctx, url, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: unable to decode response: %w", url, err)
	}
	return nil
}

func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
