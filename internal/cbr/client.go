package cbr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"currency-bot/internal"

	"go.uber.org/zap"
)

const (
	DefaultURL     = "https://cbr.ru/scripts/XML_daily.asp"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 1 << 20
	userAgent    = "currency-bot/1.0 (+https://cbr.ru)"
)

// Client downloads the daily rates document. It does not retry.
type Client struct {
	BaseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: newLoggingRoundTripper(http.DefaultTransport, logger),
		},
	}
}

// Fetch returns the raw XML body. Every failure is an *internal.FetchError.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return nil, &internal.FetchError{URL: c.BaseURL, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &internal.FetchError{URL: c.BaseURL, Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &internal.FetchError{URL: c.BaseURL, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &internal.FetchError{
			URL:        c.BaseURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("cbr http %d: %s", resp.StatusCode, snippet(body)),
		}
	}
	return body, nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
