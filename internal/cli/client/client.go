package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/homebuddy-dev/homebuddy/internal/cli/browser"
	"github.com/homebuddy-dev/homebuddy/internal/cli/session"
)

// RequestIDHeader carries a per-request ULID for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client represents an HTTP client for the HomeBuddy API
type Client struct {
	session    *session.Session
	httpClient *http.Client
	navigator  browser.Navigator
	logger     zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNavigator sets where login redirects are sent
func WithNavigator(nav browser.Navigator) Option {
	return func(c *Client) {
		c.navigator = nav
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a new API client bound to a session
func New(sess *session.Session, opts ...Option) *Client {
	c := &Client{
		session: sess,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client is bound to
func (c *Client) Session() *session.Session {
	return c.session
}

// RequestOptions mirrors the options of a browser fetch call.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    io.Reader
}

// MakeRequest issues an authenticated request to endpoint.
//
// Content-Type defaults to application/json and may be overridden by the
// caller's headers. The stored token, when present, is always sent as a
// bearer Authorization header. A 401 response clears the token, runs the
// redirect-to-login check and is returned to the caller without an error.
// Transport failures are logged and returned.
func (c *Client) MakeRequest(ctx context.Context, endpoint string, opts *RequestOptions) (*http.Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	token, err := c.session.Token()
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	for k, v := range opts.Headers {
		header.Set(k, v)
	}
	if token != "" {
		header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.do(ctx, endpoint, opts.Method, header, opts.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Error().Str("endpoint", endpoint).Msg("Unauthorized access (401). Redirecting to login...")
		if err := c.session.RemoveToken(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to remove token")
		}
		c.redirectToLogin()
	}

	return resp, nil
}

// Fetch issues a request without touching the stored token, as the login and
// registration forms do.
func (c *Client) Fetch(ctx context.Context, endpoint string, opts *RequestOptions) (*http.Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	header := http.Header{}
	for k, v := range opts.Headers {
		header.Set(k, v)
	}
	return c.do(ctx, endpoint, opts.Method, header, opts.Body)
}

func (c *Client) redirectToLogin() {
	page, redirect, err := c.session.CheckAuth()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to check authentication")
		return
	}
	if !redirect {
		return
	}

	c.logger.Warn().Str("login_page", page).Msg("No token found, redirecting to login")
	if c.navigator == nil {
		return
	}
	if err := c.navigator.Navigate(page); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to redirect to login")
	}
}

func (c *Client) do(ctx context.Context, endpoint, method string, header http.Header, body io.Reader) (*http.Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.requestURL(endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = header
	requestID := ulid.Make().String()
	req.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Str("request_id", requestID).
		Msg("API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", target).Msg("Request failed")
		return nil, fmt.Errorf("request failed for %s: %w", target, err)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("duration", time.Since(start)).
		Msg("API response")

	return resp, nil
}

// requestURL joins the base URL and endpoint. An empty base URL means
// "relative to the page", so the endpoint is resolved against the page origin.
func (c *Client) requestURL(endpoint string) (string, error) {
	target := c.session.URL(endpoint)
	if c.session.BaseURL != "" {
		return target, nil
	}

	origin, err := url.Parse(c.session.Location.Origin() + "/")
	if err != nil {
		return "", fmt.Errorf("invalid page origin: %w", err)
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return origin.ResolveReference(ref).String(), nil
}
