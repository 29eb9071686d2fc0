// Package httpclient es el cliente JSON saliente de los adapters (Coinbase, OpenAI).
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
	// Espera máxima que se respeta de un Retry-After antes de rendirse.
	maxRetryAfter = 5 * time.Second
)

type Client struct {
	HTTP    *http.Client
	BaseURL string // sin "/" final; vacío => solo URLs absolutas

	// Limiter opcional para respetar rate limits del upstream.
	Limiter *rate.Limiter
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

func NewWithBaseURL(baseURL string, timeout time.Duration) (*Client, error) {
	c := New(timeout)
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return c, nil
	}
	u, err := url.ParseRequestURI(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	c.BaseURL = strings.TrimRight(baseURL, "/")
	return c, nil
}

// WithRateLimit: rps <= 0 quita el límite.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if rps <= 0 {
		c.Limiter = nil
		return c
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	return c
}

// URL resuelve un path contra BaseURL. Coinbase firma la URL completa antes del request.
func (c *Client) URL(pathOrURL string) (string, error) {
	p := strings.TrimSpace(pathOrURL)
	switch {
	case p == "":
		return "", errors.New("httpclient: empty url")
	case strings.HasPrefix(p, "http://"), strings.HasPrefix(p, "https://"):
		return p, nil
	case c.BaseURL == "":
		return "", errors.New("httpclient: relative path requires BaseURL")
	}
	return c.BaseURL + "/" + strings.TrimLeft(p, "/"), nil
}

// HTTPError es una respuesta no-2xx. Message es el texto de error del upstream si
// el body lo trae en alguno de los formatos conocidos.
type HTTPError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	case e.Body != "":
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// Reason devuelve Message, o Body si no se pudo extraer.
func (e *HTTPError) Reason() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Body
}

// DoJSON envía in como JSON (si no es nil) y decodifica la respuesta en out (si no es nil).
// Un 429 se reintenta una vez si el upstream indica Retry-After corto.
func (c *Client) DoJSON(ctx context.Context, method, pathOrURL string, headers map[string]string, in, out any) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}
	full, err := c.URL(pathOrURL)
	if err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		status, raw, retryAfter, err := c.send(ctx, method, full, headers, payload)
		if err != nil {
			return err
		}
		if status == http.StatusTooManyRequests && attempt == 0 && retryAfter > 0 && retryAfter <= maxRetryAfter {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter):
			}
			continue
		}
		if status < 200 || status >= 300 {
			body := strings.TrimSpace(string(raw))
			return &HTTPError{StatusCode: status, Body: body, Message: upstreamMessage(raw)}
		}
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("httpclient: unmarshal json: %w", err)
		}
		return nil
	}
}

func (c *Client) send(ctx context.Context, method, full string, headers map[string]string, payload []byte) (int, []byte, time.Duration, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return 0, nil, 0, fmt.Errorf("httpclient: rate limit: %w", err)
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("httpclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if k = strings.TrimSpace(k); k != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, 0, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, raw, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// Retry-After en segundos; el formato fecha no se usa en los upstreams actuales.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// upstreamMessage entiende {"message":...}, {"error":"..."} y {"error":{"message":...}}.
func upstreamMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Message); m != "" {
		return m
	}
	if len(body.Error) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(body.Error, &s) == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
