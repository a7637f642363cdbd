package walkthrough

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"
)

// learnerHeader matches the header the API reads the learner from.
const learnerHeader = "X-Learner-ID"

// HTTPClient wraps http.Client for one learner.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	learner string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL, learner string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		learner: learner,
	}
}

// envelope is the session response shape shared by every activity.
type envelope[V any] struct {
	SessionID string `json:"session_id"`
	View      V      `json:"view"`
	Accepted  *bool  `json:"accepted"`
	Result    string `json:"result"`
}

// statusError is returned for responses outside the expected status.
type statusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// do sends body as JSON and decodes a response with status want into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, want int) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(learnerHeader, c.learner)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode != want {
		return &statusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = string(data)
		return nil
	}
	// Responses omit empty fields; start from zero so nothing leaks across calls.
	reflect.ValueOf(out).Elem().SetZero()
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, http.StatusOK)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, http.StatusOK)
}

func (c *HTTPClient) create(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, http.StatusCreated)
}

func (c *HTTPClient) end(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}
