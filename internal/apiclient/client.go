// Package apiclient talks to the library REST API. Every response is wrapped in a
// {data, pagination?} envelope; errors carry a message field.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bookworm/bookworm-web/internal/model"
)

const maxResponseBytes = 8 << 20

// Sentinel errors a StatusError unwraps to.
var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrForbidden    = errors.New("api: forbidden")
	ErrNotFound     = errors.New("api: not found")
	ErrBadRequest   = errors.New("api: bad request")
	ErrUpstream     = errors.New("api: upstream failure")
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= 400 && e.Status < 500:
		return ErrBadRequest
	default:
		return ErrUpstream
	}
}

// Envelope is the API's response wrapper. Data is decoded lazily by the caller.
type Envelope struct {
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// Decode unmarshals the data field into dst. A missing or null data field leaves dst untouched.
func (e *Envelope) Decode(dst any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Client is a JSON client for the library API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client for baseURL (e.g. "http://localhost:5000/api/v1").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Get fetches path with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Patch sends body as JSON. body may be nil for action endpoints.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do performs one request and decodes the envelope.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestIDFrom(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	env := &Envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			if resp.StatusCode >= 300 {
				return nil, &StatusError{Status: resp.StatusCode}
			}
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Message: env.Message}
	}
	return env, nil
}

type contextKey string

const (
	contextKeyToken     contextKey = "token"
	contextKeyRequestID contextKey = "request_id"
)

// WithToken attaches the caller's credential; requests made with the returned
// context carry it as a bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

// WithRequestID propagates the inbound request ID to the API.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

func tokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyToken).(string)
	return v
}

func requestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyRequestID).(string)
	return v
}
