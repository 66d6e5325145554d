package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Scryfall API.
	DefaultBaseURL = "https://api.scryfall.com"

	// DefaultUserAgent identifies this client to Scryfall.
	DefaultUserAgent = "cardsearch/1.0"

	rateLimitDelay = 50 * time.Millisecond // Scryfall asks for 50-100ms between requests
	requestTimeout = 30 * time.Second
)

// Client represents a Scryfall API client with rate limiting.
// It never retries: a failed request is reported to the caller as is.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	baseURL     string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (used by tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit sets the minimum spacing between requests. Zero disables it.
func WithRateLimit(delay time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = rate.NewLimiter(spacing(delay), 1)
	}
}

func spacing(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}

// SetRateLimit changes the spacing between requests. Zero disables it.
// Safe to call while requests are in flight.
func (c *Client) SetRateLimit(delay time.Duration) {
	c.rateLimiter.SetLimit(spacing(delay))
}

// RateLimit returns the current request rate.
func (c *Client) RateLimit() rate.Limit {
	return c.rateLimiter.Limit()
}

// NewClient creates a new Scryfall API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   DefaultUserAgent,
		baseURL:     DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPage performs a single GET against url and decodes one search page.
func (c *Client) FetchPage(ctx context.Context, url string) (*Page, error) {
	var page Page
	if err := c.doRequest(ctx, url, &page); err != nil {
		return nil, err
	}
	if !page.HasMore {
		page.NextPage = ""
	}
	return &page, nil
}

// doRequest performs one rate-limited HTTP GET and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return &NetworkError{URL: url, Message: "rate limiter: " + err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &NetworkError{URL: url, Message: "create request: " + err.Error(), Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Status: resp.StatusCode, URL: url, Message: "read response body: " + err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Prefer Scryfall's own explanation when the body is an error object
		message := http.StatusText(resp.StatusCode)
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			message = apiErr.Details
		}
		return &NetworkError{Status: resp.StatusCode, URL: url, Message: message}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &NetworkError{URL: url, Message: fmt.Sprintf("parse JSON response: %v", err), Err: err}
	}

	return nil
}
