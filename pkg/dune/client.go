package dune

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL      = "https://api.dune.com"
	defaultPollInterval = 2 * time.Second

	stateCompleted = "QUERY_STATE_COMPLETED"
	stateFailed    = "QUERY_STATE_FAILED"
	stateCancelled = "QUERY_STATE_CANCELLED"
)

// Row is a single result row as returned by the Dune API.
type Row map[string]any

// Client executes saved queries through the official Dune API v1:
// execute the query, poll the execution until it settles, then download
// the result rows.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

type Option func(*Client)

// WithBaseURL overrides the API host, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPollInterval overrides the execution status poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type executeResponse struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

type statusResponse struct {
	State string `json:"state"`
}

type resultsResponse struct {
	State  string `json:"state"`
	Result struct {
		Rows []Row `json:"rows"`
	} `json:"result"`
}

// Refresh executes the query and blocks until its result rows are
// available.
func (c *Client) Refresh(ctx context.Context, query Query) ([]Row, error) {
	executionID, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := c.awaitCompletion(ctx, executionID); err != nil {
		return nil, fmt.Errorf("query %d (%s): %w", query.QueryID, query.Name, err)
	}
	return c.results(ctx, executionID)
}

func (c *Client) execute(ctx context.Context, query Query) (string, error) {
	body := map[string]any{}
	if params := query.parameterMap(); params != nil {
		body["query_parameters"] = params
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/api/v1/query/%d/execute", c.baseURL, query.QueryID)
	var resp executeResponse
	if err := c.do(ctx, http.MethodPost, url, bytes.NewReader(encoded), &resp); err != nil {
		return "", fmt.Errorf("execute query %d: %w", query.QueryID, err)
	}
	if resp.ExecutionID == "" {
		return "", fmt.Errorf("execute query %d: empty execution id", query.QueryID)
	}
	return resp.ExecutionID, nil
}

func (c *Client) awaitCompletion(ctx context.Context, executionID string) error {
	url := fmt.Sprintf("%s/api/v1/execution/%s/status", c.baseURL, executionID)
	for {
		var status statusResponse
		if err := c.do(ctx, http.MethodGet, url, nil, &status); err != nil {
			return err
		}
		switch status.State {
		case stateCompleted:
			return nil
		case stateFailed, stateCancelled:
			return fmt.Errorf("execution %s ended in state %s", executionID, status.State)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) results(ctx context.Context, executionID string) ([]Row, error) {
	url := fmt.Sprintf("%s/api/v1/execution/%s/results", c.baseURL, executionID)
	var resp resultsResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch results of execution %s: %w", executionID, err)
	}
	return resp.Result.Rows, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-Dune-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dune API returned %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
