// Package rotto is the HTTP client for the Rotto funding backend.
package rotto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// Config holds the client settings.
type Config struct {
	// Tokens authorises requests when set. Without it requests go out anonymously.
	Tokens     service.TokenStore
	Logger     *slog.Logger
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
}

// Validate checks that the configuration can build a client.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base URL %q: %w", common.ErrInvalidConfig, c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL %q must use http or https", common.ErrInvalidConfig, c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: base URL %q has no host", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Endpoint   string
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("rotto API error: %s returned %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("rotto API error: %s returned %d - %s", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap maps the status code onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return common.ErrAccountNotFound
	case e.StatusCode == http.StatusUnauthorized:
		return common.ErrUnauthorized
	case e.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	default:
		return common.ErrServer
	}
}

// Client talks to the backend.
type Client struct {
	baseURL *url.URL
	// authed adds the stored bearer token; plain is used for the auth endpoints.
	authed *http.Client
	plain  *http.Client
	tokens service.TokenStore
	logger *slog.Logger
}

var _ service.HistoryFetcher = (*Client)(nil)

// NewClient creates a backend client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, _ := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	plain := &http.Client{Timeout: 30 * time.Second}
	if cfg.HTTPClient != nil {
		c := *cfg.HTTPClient
		plain = &c
	}
	if cfg.Timeout > 0 {
		plain.Timeout = cfg.Timeout
	}

	authed := plain
	if cfg.Tokens != nil {
		transport := plain.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		authed = &http.Client{
			Timeout: plain.Timeout,
			Transport: &oauth2.Transport{
				Source: NewTokenSource(cfg.Tokens),
				Base:   transport,
			},
		}
	}

	return &Client{
		baseURL: base,
		authed:  authed,
		plain:   plain,
		tokens:  cfg.Tokens,
		logger:  logger.With("component", "rotto"),
	}, nil
}

// HistoryPath returns the endpoint path serving filter for accountCode.
func HistoryPath(accountCode string, filter model.Filter) string {
	p := "/account/" + url.PathEscape(accountCode) + "/history"
	switch filter {
	case model.FilterDeposit:
		return p + "/deposit"
	case model.FilterWithdrawal:
		return p + "/withdrawal"
	default:
		return p
	}
}

// FetchHistory issues exactly one history read for filter and returns the
// records in backend order. A rejected access token is refreshed once.
func (c *Client) FetchHistory(ctx context.Context, accountCode string, filter model.Filter) ([]model.TransactionRecord, error) {
	if strings.TrimSpace(accountCode) == "" {
		return nil, fmt.Errorf("%w: account code is empty", common.ErrInvalidAccount)
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown filter %d", common.ErrInvalidConfig, int(filter))
	}

	endpoint := HistoryPath(accountCode, filter)

	body, err := c.getAuthorized(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", accountCode, err)
	}

	records, err := decodeHistory(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode history for %s: %w", accountCode, err)
	}

	c.logger.Debug("Fetched history",
		"account", accountCode,
		"filter", filter.String(),
		"records", len(records))

	return records, nil
}

// getAuthorized performs a GET and, on 401, refreshes the stored tokens and replays once.
func (c *Client) getAuthorized(ctx context.Context, endpoint string) ([]byte, error) {
	body, err := c.do(ctx, c.authed, http.MethodGet, endpoint, nil, nil)
	if err == nil || c.tokens == nil || !isUnauthorized(err) {
		return body, err
	}

	c.logger.Info("Access token rejected, refreshing", "endpoint", endpoint)
	if _, refreshErr := c.Refresh(ctx); refreshErr != nil {
		return nil, fmt.Errorf("%w: token refresh failed: %w", common.ErrUnauthorized, refreshErr)
	}

	return c.do(ctx, c.authed, http.MethodGet, endpoint, nil, nil)
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, hc *http.Client, method, endpoint string, body io.Reader, header http.Header) ([]byte, error) {
	// endpoint is already escaped. The query is kept out of logs and errors.
	path := endpoint
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		path = endpoint[:i]
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("Backend request",
		"method", method,
		"endpoint", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", common.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &APIError{
			Endpoint:   method + " " + path,
			StatusCode: resp.StatusCode,
			Body:       msg,
		}
	}

	return data, nil
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
