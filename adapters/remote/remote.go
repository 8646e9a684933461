// Package remote implements the Resource port over an external HTTP service.
// This is the usual production collaborator: the detail controller talks to a
// REST-like endpoint owned by the embedding application's backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/artpar/pagekit/core/detail"
	"github.com/artpar/pagekit/ports"
)

// Client provides HTTP communication with the backend service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	headers    map[string]string
}

// ClientConfig configures the remote client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Headers map[string]string
}

// NewClient creates a new remote HTTP client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		headers:    cfg.Headers,
	}
}

// Request sends an HTTP request to the remote service and decodes the JSON
// response into result when non-nil.
func (c *Client) Request(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// errorBody is the JSON shape the backend uses for rejections.
type errorBody struct {
	Error       string              `json:"error"`
	Message     string              `json:"message"`
	FieldErrors []detail.FieldError `json:"fieldErrors"`
}

// decodeError maps an HTTP error response to a typed error. A 404 becomes
// ports.ErrNotFound; a rejection carrying fieldErrors becomes a
// *detail.ValidationError; everything else is a *RemoteError.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return ports.ErrNotFound
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.FieldErrors) > 0 {
		return &detail.ValidationError{Fields: body.FieldErrors}
	}

	return &RemoteError{
		StatusCode: resp.StatusCode,
		Message:    string(raw),
	}
}

// RemoteError represents a non-validation error from the remote service.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error means the item does not exist.
func IsNotFound(err error) bool {
	if errors.Is(err, ports.ErrNotFound) {
		return true
	}
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}
