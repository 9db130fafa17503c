package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mkowalczyk/allerlog/internal/client/token"
	"github.com/mkowalczyk/allerlog/internal/common"
	"github.com/mkowalczyk/allerlog/internal/logging"
	"github.com/mkowalczyk/allerlog/internal/metrics"
)

const maxBodySize = 1 << 20

// Client performs JSON requests against the configured base URL, signing
// them with the current bearer token and recovering from token expiry at
// most once per request. The refresh credential is an http-only cookie, so
// the underlying http.Client carries a cookie jar.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *token.Store
	log     logging.Logger
	metrics metrics.Collector
	group   singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying transport. The client installs its
// own cookie jar if the given http.Client has none.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithMetrics(m metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New constructs a Client for the given base URL. The token store supplies
// the bearer value at dispatch time for every request.
func New(baseURL string, tokens *token.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		log:     logging.NewSlogLogger(slog.Default()),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err == nil {
			c.http.Jar = jar
		}
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// noRefreshPaths are the endpoints whose 401/403 responses must never
// trigger the refresh protocol: a failed login or register is a final
// answer, and refresh failing is what the protocol already handles.
var noRefreshPaths = map[string]struct{}{
	common.PathLogin:    {},
	common.PathRegister: {},
	common.PathRefresh:  {},
}

// do issues the request once and applies the recovery protocol: a 401/403
// on a refresh-eligible request obtains a new token through the single
// flight coordinator and re-issues the request exactly once. The second
// outcome is final; there is no retry loop.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.roundTrip(ctx, method, path, body, out)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	if httpErr.Status != http.StatusUnauthorized && httpErr.Status != http.StatusForbidden {
		return err
	}
	if _, excluded := noRefreshPaths[path]; excluded {
		return err
	}
	if c.tokens.Get() == "" {
		// Nothing to refresh; the caller was never authenticated.
		return err
	}

	tok := c.refreshToken(ctx)
	if tok == "" {
		// Refresh failed; the token is already cleared and the logout
		// endpoint notified. Surface the original failure.
		return fmt.Errorf("%w: %w", common.ErrAuthExpired, err)
	}

	c.metrics.RecordRetry()
	c.log.Debug(ctx, "re-issuing request after token refresh", "method", method, "path", path)
	return c.roundTrip(ctx, method, path, body, out)
}

// roundTrip performs a single HTTP exchange with no recovery. The bearer
// header reflects the token value at dispatch time.
func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Get(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.RecordRequestLatency(time.Since(start))
	if err != nil {
		c.metrics.RecordNetworkError()
		return fmt.Errorf("%w: %s %s: %v", common.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.metrics.RecordHTTPStatus(resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.RecordNetworkError()
		return fmt.Errorf("%w: %s %s: reading body: %v", common.ErrNetwork, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: data}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response for %s %s: %w", method, path, err)
		}
	}
	return nil
}
