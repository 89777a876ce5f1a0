// Package financeapi is a client for the budget REST API that owns the
// summary and the expense list.
package financeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orcamento/internal/core"
)

const (
	summaryPath    = "/api/finance/summary"
	expensesPath   = "/api/finance/expenses"
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "orcamento/1.0"
)

// ErrUnexpectedStatus is wrapped by read requests answered with a non-2xx status.
var ErrUnexpectedStatus = errors.New("financeapi: unexpected status")

// Client talks to the budget API. It holds no state besides its configuration,
// every call reaches the server.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchDashboard returns the summary totals and the expense rows.
func (c *Client) FetchDashboard(ctx context.Context) (core.Dashboard, error) {
	body, err := c.get(ctx, summaryPath)
	if err != nil {
		return core.Dashboard{}, err
	}

	var d core.Dashboard
	if err := json.Unmarshal(body, &d); err != nil {
		return core.Dashboard{}, fmt.Errorf("financeapi: parsing summary: %w", err)
	}
	return d, nil
}

// ListExpenses returns the expense rows without the summary.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	body, err := c.get(ctx, expensesPath)
	if err != nil {
		return nil, err
	}

	var expenses []core.Expense
	if err := json.Unmarshal(body, &expenses); err != nil {
		return nil, fmt.Errorf("financeapi: parsing expenses: %w", err)
	}
	return expenses, nil
}

// CreateExpense posts a validated expense. Any 2xx status is success and the
// response body is ignored. A rejection is returned as *APIError.
func (c *Client) CreateExpense(ctx context.Context, e core.NewExpense) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("financeapi: encoding expense: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+expensesPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("financeapi: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("financeapi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	return &APIError{StatusCode: resp.StatusCode, Message: ExtractMessage(body)}
}

// Ping checks that the API answers the summary endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, summaryPath)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("financeapi: creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("financeapi: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d on GET %s", ErrUnexpectedStatus, resp.StatusCode, path)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("financeapi: reading response: %w", err)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
