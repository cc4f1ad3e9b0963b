// Package crewapi talks to the crew marketplace HTTP backend: directory
// search (guest, direct and library surfaces), the roles list, and the
// team-membership endpoints. Every response envelope is normalized here.
package crewapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/crewdir/pkg/ctxutil"
)

// Paths holds the backend endpoint paths, relative to the base URL.
type Paths struct {
	GuestBrowse   string
	DirectSearch  string
	LibrarySearch string
	Roles         string
	Team          string
}

// DefaultPaths returns the paths used by the production backend.
func DefaultPaths() Paths {
	return Paths{
		GuestBrowse:   "/guest/browse",
		DirectSearch:  "/users/search",
		LibrarySearch: "/users",
		Roles:         "/roles",
		Team:          "/team",
	}
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Token is the bearer access token. Empty means guest.
	Token      string
	Timeout    time.Duration
	RetryDelay time.Duration
	// RateLimit is the maximum number of requests per second; <= 0 disables limiting.
	RateLimit float64
	Burst     int
	Paths     Paths
}

// Client is the HTTP client for the crew marketplace backend.
type Client struct {
	baseURL    string
	token      string
	paths      Paths
	retryDelay time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a Client. Zero-valued options fall back to defaults.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Paths == (Paths{}) {
		opts.Paths = DefaultPaths()
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		paths:      opts.Paths,
		retryDelay: opts.RetryDelay,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		log:        logger.With("adapter", "crewapi"),
	}
}

// Authenticated reports whether the client sends a bearer token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// get performs a GET request with a single retry and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, true)
}

// do sends one request. Only idempotent calls pass retry=true.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, retry bool) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	newRequest := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(ctx, req)
		return req, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := newRequest()
	if err != nil {
		return nil, err
	}

	c.log.DebugContext(ctx, "crewapi request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", req.Header.Get("X-Request-ID")),
	)

	var resp *http.Response
	if retry {
		resp, err = c.doWithRetry(ctx, req, newRequest)
	} else {
		resp, err = c.httpClient.Do(req)
	}
	if err != nil {
		c.log.ErrorContext(ctx, "crewapi request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	c.log.DebugContext(ctx, "crewapi response",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	return body, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, rebuild func() (*http.Request, error)) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "crewapi retry", slog.String("path", req.URL.Path), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}

	retryReq, buildErr := rebuild()
	if buildErr != nil {
		return nil, buildErr
	}
	return c.httpClient.Do(retryReq)
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")

	_, requestID := ctxutil.EnsureRequestID(ctx)
	req.Header.Set("X-Request-ID", requestID)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

const maxErrorMessage = 200

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage]
	}
	return msg
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
