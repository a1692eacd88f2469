package httpclient

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
)

// maxErrorBody bounds how much of a failed response body is kept on StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status: %d", e.Method, e.URL, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// JSONClient talks to a JSON REST API with bearer authentication.
type JSONClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewJSONClient creates a JSONClient rooted at baseURL.
func NewJSONClient(baseURL, token string, timeout time.Duration) *JSONClient {
	return &JSONClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  NewClient(timeout),
	}
}

// BaseURL returns the root every request path is appended to.
func (c *JSONClient) BaseURL() string {
	return c.baseURL
}

// Do sends body (when non-nil) as JSON and decodes a 2xx response into out (when non-nil).
// Non-2xx responses yield a *StatusError.
func (c *JSONClient) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
