package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/branchd-dev/starter/internal/cli/auth"
)

const (
	// DefaultTimeout bounds every request issued by the client
	DefaultTimeout = 10 * time.Second

	// LoginPath is where the client sends the application after a 401
	LoginPath = "/login"
)

// Navigator performs a full application reload at the given path, discarding
// all in-memory state
type Navigator interface {
	HardRedirect(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) HardRedirect(path string) {
	f(path)
}

// Client represents an HTTP client for the starter API. A single instance is
// shared by every caller.
type Client struct {
	rc     *resty.Client
	store  auth.TokenStore
	nav    Navigator
	logger zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithLogger sets the logger used by the request hooks
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.rc.SetTimeout(timeout)
	}
}

// New creates a new API client. The token store is read before every request
// and cleared on any 401; nav may be nil, in which case 401s only clear the
// token.
func New(baseURL string, store auth.TokenStore, nav Navigator, opts ...Option) *Client {
	c := &Client{
		store:  store,
		nav:    nav,
		logger: zerolog.Nop(),
	}

	c.rc = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(DefaultTimeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.attachToken).
		OnAfterResponse(c.handleUnauthorized)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root requests are resolved against
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// attachToken adds the stored bearer token. A store failure only drops the
// header; the request still goes out.
func (c *Client) attachToken(_ *resty.Client, req *resty.Request) error {
	token, ok, err := c.store.Get()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read token, sending request without authorization")
		return nil
	}
	if ok {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return nil
}

// handleUnauthorized clears the session and forces the application back to the
// login screen on any 401, then hands the error back to the caller
func (c *Client) handleUnauthorized(_ *resty.Client, resp *resty.Response) error {
	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}

	if err := c.store.Clear(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to clear token after unauthorized response")
	}

	c.logger.Warn().
		Str("method", resp.Request.Method).
		Str("url", resp.Request.URL).
		Msg("Session rejected, redirecting to login")

	if c.nav != nil {
		c.nav.HardRedirect(LoginPath)
	}

	return newResponseError(resp)
}

// Do sends a request and decodes a successful JSON response into result.
// The body is decoded whatever Content-Type the backend sends. body and
// result may be nil. Failures are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return &APIError{
			Kind:    ErrNetwork,
			Message: fmt.Sprintf("%s %s failed", method, path),
			Err:     err,
		}
	}

	if resp.IsError() {
		apiErr := newResponseError(resp)
		c.logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", apiErr.StatusCode).
			Str("message", apiErr.Message).
			Msg("API request failed")
		return apiErr
	}

	raw := bytes.TrimSpace(resp.Body())
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return &APIError{
			Kind:       ErrServer,
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("%s %s returned an invalid body", method, path),
			Err:        err,
		}
	}
	return nil
}
