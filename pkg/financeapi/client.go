// Package financeapi is a typed client for the upstream finance and instructor API.
package financeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admin-dashboard-api/pkg/middleware/requestid"
)

const maxResponseBytes = 8 << 20

// ErrUnexpectedShape is returned when a response body matches none of the shapes the endpoint is allowed to return.
var ErrUnexpectedShape = errors.New("financeapi: unexpected response shape")

// Observer receives timing for every upstream call.
type Observer interface {
	ObserveUpstreamRequest(endpoint string, status int, duration time.Duration)
}

// APIError is a non-2xx answer from the finance API.
type APIError struct {
	Endpoint string `json:"-"`
	Status   int    `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("financeapi %s: %d %s: %s", e.Endpoint, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("financeapi %s: %d: %s", e.Endpoint, e.Status, msg)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
	Logger     *zap.Logger
}

// Client issues requests against the finance API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	observer Observer
	logger   *zap.Logger
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("financeapi: base URL is required")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("financeapi: parse base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("financeapi: unsupported scheme %q", parsed.Scheme)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: base, http: httpClient, observer: opts.Observer, logger: logger}, nil
}

type bearerKey struct{}

// WithBearerToken makes every request issued with ctx carry the caller's token.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// BearerToken returns the token attached with WithBearerToken.
func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}

func (c *Client) logSkipped(endpoint string, skipped []SkippedItem) {
	for _, item := range skipped {
		c.logger.Warn("skipping malformed record", zap.String("endpoint", endpoint), zap.Int("index", item.Index), zap.Error(item.Err))
	}
}

// envelope is the common {data, error} wrapper of the finance API.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, endpoint, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, endpoint, path string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, endpoint, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("financeapi %s: marshal body: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("financeapi %s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.HeaderKey, reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(endpoint, 0, duration)
		return nil, fmt.Errorf("financeapi %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, duration)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("financeapi %s: read body: %w", endpoint, err)
	}
	c.logger.Debug("finance api call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(endpoint, resp.StatusCode, raw)
	}
	return unwrap(endpoint, raw)
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstreamRequest(endpoint, status, duration)
	}
}

func decodeAPIError(endpoint string, status int, raw []byte) *APIError {
	apiErr := &APIError{Endpoint: endpoint, Status: status}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		return apiErr
	}
	var flat struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil {
		apiErr.Code = flat.Code
		apiErr.Message = flat.Message
	}
	return apiErr
}

// unwrap strips one {data: ...} envelope level when the body carries one.
func unwrap(endpoint string, raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("financeapi %s: %w: %v", endpoint, ErrUnexpectedShape, err)
	}
	data, ok := probe["data"]
	if !ok || !isEnvelope(probe) {
		return trimmed, nil
	}
	return data, nil
}

// isEnvelope reports whether every key belongs to the response envelope.
func isEnvelope(probe map[string]json.RawMessage) bool {
	for key := range probe {
		switch key {
		case "data", "error", "meta", "pagination", "success", "message":
		default:
			return false
		}
	}
	_, hasMeta := probe["meta"]
	if hasMeta {
		// {data: [...], meta} is itself a paginated page, not an envelope.
		return !isJSONArray(probe["data"])
	}
	return true
}
