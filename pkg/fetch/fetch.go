// Package fetch is the retrying HTTP collaborator of the crawl pipeline. It
// wraps a resty client with the fixed retry/timeout policy of the crawler:
// a hard per-request timeout, a fixed delay between attempts, and a bounded
// retry count, after which the failure is permanent.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Default policy values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 3
	DefaultRetryDelay = 5 * time.Second
	DefaultUserAgent  = "juricite/1.0 (+https://github.com/coolbeans/juricite)"
)

// Config holds the fetch policy.
type Config struct {
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
	UserAgent  string
}

// DefaultConfig returns the default fetch policy.
func DefaultConfig() Config {
	return Config{
		Timeout:    DefaultTimeout,
		RetryCount: DefaultRetryCount,
		RetryDelay: DefaultRetryDelay,
		UserAgent:  DefaultUserAgent,
	}
}

// Client fetches documents with automatic retries. Safe for concurrent use.
type Client struct {
	httpClient *resty.Client
}

// New creates a Client with the given policy. Zero fields fall back to the
// defaults.
func New(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryCount <= 0 {
		config.RetryCount = DefaultRetryCount
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	httpClient := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryDelay).
		SetRetryMaxWaitTime(config.RetryDelay).
		SetHeader("User-Agent", config.UserAgent).
		AddRetryCondition(func(response *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return response.StatusCode() >= 500
		})

	return &Client{httpClient: httpClient}
}

// Fetch retrieves one URL and returns the response body. Transport failures
// and 5xx responses are retried per the configured policy; exhausting the
// retries returns the last error. A 4xx response fails without retrying.
func (client *Client) Fetch(ctx context.Context, targetURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(targetURL); err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", targetURL, err)
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		Get(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	if response.StatusCode() >= 400 {
		return nil, fmt.Errorf("HTTP %d for %s", response.StatusCode(), targetURL)
	}

	return response.Body(), nil
}
