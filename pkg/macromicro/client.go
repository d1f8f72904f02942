package macromicro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default upstream endpoints. Overridable for tests and mirrors.
const (
	DefaultDataBaseURL = "https://www.macromicro.me"
	DefaultCDNBaseURL  = "https://cdn.macromicro.me"
)

// DefaultTimeout bounds every upstream fetch. Failed or timed-out fetches
// surface immediately — there is no retry or backoff.
const DefaultTimeout = 10 * time.Second

// Client fetches chart data and preview images. Chart-data requests are
// routed through a forwarding proxy: the proxy base URL is prepended verbatim
// to the full target URL.
type Client struct {
	ProxyURL    string       // forwarding proxy base, prepended to data requests
	DataBaseURL string       // chart-data host (default DefaultDataBaseURL)
	CDNBaseURL  string       // image CDN host (default DefaultCDNBaseURL)
	HTTPClient  *http.Client // falls back to a DefaultTimeout client
}

// NewClient creates a Client that routes chart-data requests through the
// given proxy base URL.
func NewClient(proxyURL string) *Client {
	return &Client{
		ProxyURL:    proxyURL,
		DataBaseURL: DefaultDataBaseURL,
		CDNBaseURL:  DefaultCDNBaseURL,
		HTTPClient:  &http.Client{Timeout: DefaultTimeout},
	}
}

// PreviewImageURL returns the CDN URL of the chart's preview image.
func (c *Client) PreviewImageURL(chartID string) string {
	return PreviewImageURL(c.CDNBaseURL, chartID)
}

// FetchChartData fetches the raw chart JSON for the given chart id through
// the proxy and returns the decoded body as a nested mapping. Transport and
// status failures are returned as *FetchError.
func (c *Client) FetchChartData(ctx context.Context, chartID string) (map[string]any, error) {
	target := fmt.Sprintf("%s%s/charts/data/%s", c.ProxyURL, c.DataBaseURL, chartID)

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("decode body: %w", err)}
	}

	return payload, nil
}

// FetchImage downloads the image at the given URL and returns the raw bytes.
// The bytes are not decoded or validated as an image.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

// get performs a GET with the client's timeout and returns the body on a 2xx
// status, or a *FetchError otherwise.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}
