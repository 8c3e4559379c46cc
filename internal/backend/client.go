// Package backend is the HTTP client for the remote order and authentication
// APIs. It only speaks the wire contract; every decision is made by callers.
package backend

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
)

const maxBodySize = 4 << 20

// StatusError is returned for responses outside the expected status range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Client talks to both remote APIs.
type Client struct {
	apiURL     string
	erpURL     string
	httpClient *http.Client
	transport  *http.Transport
	logger     *zap.Logger
}

// New creates a Client. apiURL hosts authentication and freight quotes,
// erpURL hosts the VendorAt order endpoints.
func New(apiURL, erpURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		erpURL:     strings.TrimRight(erpURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		transport:  transport,
		logger:     logger,
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

func join(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// do sends the request and decodes a JSON body into out when out is non-nil.
// accept decides which status codes count as success.
func (c *Client) do(ctx context.Context, method, rawURL string, in, out any, accept func(int) bool) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("method", method), zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, rawURL, err)
	}
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if !accept(resp.StatusCode) {
		return data, &StatusError{Method: method, URL: rawURL, StatusCode: resp.StatusCode, Body: data}
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return data, fmt.Errorf("decode %s %s: %w", method, rawURL, err)
		}
	}
	return data, nil
}

func is2xx(code int) bool { return code >= 200 && code < 300 }

// isOK is the success rule of the approval mutations: exactly 200.
func isOK(code int) bool { return code == http.StatusOK }

// ErrorMessage extracts the backend's own message from a StatusError body:
// the "message" field, else the "Response" field. It returns "" when none.
func ErrorMessage(err error) string {
	var se *StatusError
	if !errors.As(err, &se) {
		return ""
	}
	var body map[string]any
	if json.Unmarshal(se.Body, &body) != nil {
		return ""
	}
	for _, key := range []string{"message", "Response"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
