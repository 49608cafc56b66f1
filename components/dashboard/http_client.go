package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultUserAgent = "go-apidash/1.0"
	errorBodyLimit   = 4 << 10
)

// JSONGetter issues GET requests and decodes JSON bodies.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, target any) error
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration
}

// HTTPClient talks to the public widget APIs.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient builds a client shared by every widget.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPClient{client: httpClient, userAgent: userAgent}
}

// GetJSON fetches url and decodes the body into target. Failures are returned
// as *WidgetError without a user message so callers can supply one.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return TransportError("", 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return TransportError("", 0, fmt.Errorf("http request: %w", redactURLError(err)))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, errorBodyLimit))
		return TransportError("", resp.StatusCode, fmt.Errorf("remote error %d: %s", resp.StatusCode, buf.String()))
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &WidgetError{Kind: KindShape, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// redactURLError drops the query string from request errors; it may carry
// API keys.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	target := uerr.URL
	if u, perr := url.Parse(target); perr == nil {
		u.RawQuery = ""
		target = u.String()
	}
	return fmt.Errorf("%s %q: %w", uerr.Op, target, uerr.Err)
}
