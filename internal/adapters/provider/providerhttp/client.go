// Package providerhttp holds the HTTP plumbing shared by the gateway provider adapters.
package providerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 64 * 1024

// Response is what came back from one provider call.
type Response struct {
	StatusCode int
	Body       string
}

// Success reports whether the HTTP exchange itself succeeded (2xx).
func (r Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts provider requests with a per-call timeout.
type Client struct {
	httpClient *http.Client
}

// New creates a Client. A nil http.Client uses a fresh default client.
func New(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{httpClient: hc}
}

// PostJSON sends payload as a JSON body.
func (c *Client) PostJSON(ctx context.Context, endpoint string, headers map[string]string, payload any, timeout time.Duration) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal payload: %w", err)
	}
	return c.post(ctx, endpoint, "application/json", headers, body, timeout)
}

// PostForm sends fields as an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, endpoint string, headers map[string]string, fields url.Values, timeout time.Duration) (Response, error) {
	return c.post(ctx, endpoint, "application/x-www-form-urlencoded", headers, []byte(fields.Encode()), timeout)
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, headers map[string]string, body []byte, timeout time.Duration) (Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: string(raw)}, nil
}

// DecodeBody decodes a JSON object body. ok is false for empty, non-JSON or non-object bodies.
func DecodeBody(body string) (map[string]any, bool) {
	body = strings.TrimSpace(body)
	if body == "" || !strings.HasPrefix(body, "{") {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, false
	}
	return m, true
}

// Indicator interprets a provider status-like field.
// recognized is false when the value carries no clear success or failure meaning.
func Indicator(v any) (success, recognized bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		switch {
		case t == 1 || (t >= 200 && t < 300):
			return true, true
		default:
			return false, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "ok", "success", "sent", "1", "200", "201", "202":
			return true, true
		case "false", "fail", "failed", "error", "0":
			return false, true
		}
	}
	return false, false
}

// BodyExcerpt shortens a response body for error messages.
func BodyExcerpt(body string) string {
	body = strings.TrimSpace(body)
	const limit = 200
	if len([]rune(body)) <= limit {
		return body
	}
	return string([]rune(body)[:limit]) + "..."
}

// ErrorMessage extracts a provider's own failure message from a decoded body.
func ErrorMessage(decoded map[string]any) string {
	for _, key := range []string{"message", "msg", "error", "reason", "detail"} {
		if s, ok := decoded[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
