// Package firms talks to the NASA FIRMS area API, which serves current fire
// detections as CSV. The server proxies it for browsers; the ingestor and the
// proxy handler share this client.
package firms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default query triple for the area API.
const (
	DefaultSource = "VIIRS_SNPP_NRT"
	DefaultArea   = "world"
	DefaultRange  = "1"
)

// DefaultBaseURL is the FIRMS area CSV endpoint root.
const DefaultBaseURL = "https://firms.modaps.eosdis.nasa.gov/api/area/csv"

// Client fetches fire-detection CSV from the FIRMS area API.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	MapKey     string
}

// NewClient creates a FIRMS client with the given map key.
func NewClient(mapKey string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    DefaultBaseURL,
		MapKey:     mapKey,
	}
}

// FetchCSV downloads the detection CSV for a source/area/range triple. Empty
// parameters fall back to the defaults.
func (c *Client) FetchCSV(ctx context.Context, source, area, rng string) (string, error) {
	if source == "" {
		source = DefaultSource
	}
	if area == "" {
		area = DefaultArea
	}
	if rng == "" {
		rng = DefaultRange
	}

	u := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.BaseURL, url.PathEscape(c.MapKey), url.PathEscape(source),
		url.PathEscape(area), url.PathEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching FIRMS CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("FIRMS API returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading FIRMS response: %w", err)
	}
	return string(body), nil
}

// PingHealth probes a health endpoint with bounded retry: up to attempts
// tries, delay apart, then gives up silently with the last error.
func PingHealth(ctx context.Context, client *http.Client, healthURL string, attempts int, delay time.Duration) error {
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		lastErr = fmt.Errorf("health check returned %s", resp.Status)
	}
	return lastErr
}
