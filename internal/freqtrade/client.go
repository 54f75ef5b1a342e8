// Package freqtrade is a REST client for the freqtrade bot API.
package freqtrade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultRateLimit   = 5 // requests per second
)

// Client calls the freqtrade REST API under /api/v1.
type Client struct {
	baseURL     string
	username    string
	password    string
	client      *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	logger      *logrus.Entry
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBasicAuth sets the API username and password.
func WithBasicAuth(username, password string) ClientOption {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *logrus.Entry) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the bot at baseURL, e.g. http://127.0.0.1:8080.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET with retries and exponential backoff and decodes the body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt,
				"backoff": delay,
			}).WithError(lastErr).Debug("retrying freqtrade request")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		body, err := c.do(ctx, path, query)
		if err != nil {
			if !isRetryable(err) {
				return err
			}
			lastErr = err
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	fullURL := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// Ping checks that the bot API answers.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/ping", nil, &resp); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if resp.Status != "pong" {
		return fmt.Errorf("ping: unexpected status %q", resp.Status)
	}
	return nil
}

// Strategy describes a strategy loaded by the bot.
type Strategy struct {
	Name      string `json:"strategy"`
	Timeframe string `json:"timeframe"`
}

// Strategy returns the named strategy's metadata.
func (c *Client) Strategy(ctx context.Context, name string) (*Strategy, error) {
	var s Strategy
	if err := c.get(ctx, "/strategy/"+url.PathEscape(name), nil, &s); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", name, err)
	}
	return &s, nil
}

// StrategyTimeframe returns the timeframe the named strategy runs on.
func (c *Client) StrategyTimeframe(ctx context.Context, name string) (string, error) {
	s, err := c.Strategy(ctx, name)
	if err != nil {
		return "", err
	}
	if s.Timeframe == "" {
		return "", fmt.Errorf("strategy %s: empty timeframe", name)
	}
	return s.Timeframe, nil
}
