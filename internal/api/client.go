package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NexCodeix/Risus-Mobile-Version-Latest-sub000/internal/common"
)

const (
	DefaultTimeout  = 15 * time.Second
	maxResponseSize = 10 << 20
)

// Session is the slice of session state the client needs
type Session interface {
	Token() string
	Expire(token string) bool
}

// Options configures a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
	Session   Session
	Metrics   *Metrics
}

// Client is the shared HTTP client for the backend REST API
type Client struct {
	baseURL *url.URL
	http    *http.Client
	session Session
	metrics *Metrics
	flight  singleflight.Group
}

// NewClient creates a new API client
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute, got %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout, Transport: opts.Transport},
		session: opts.Session,
		metrics: opts.Metrics,
	}, nil
}

// Host returns the backend host (with port, if any)
func (c *Client) Host() string {
	return c.baseURL.Host
}

// URL builds an absolute URL for an API path such as "/feed/"
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Get fetches path and decodes the JSON body into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, c.URL(path, query), nil, "")
	if err != nil {
		return err
	}
	return decode(body, out)
}

// GetShared is Get with in-flight coalescing: concurrent callers using the same key
// share one request and its outcome. The shared request is bounded by the client timeout,
// not by any one caller's context; a caller that gives up only stops waiting.
func (c *Client) GetShared(ctx context.Context, key, path string, query url.Values, out interface{}) error {
	ch := c.flight.DoChan(key, func() (interface{}, error) {
		return c.do(context.WithoutCancel(ctx), http.MethodGet, c.URL(path, query), nil, "")
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return decode(res.Val.([]byte), out)
	}
}

// Post sends in as JSON and decodes the response into out. Either may be nil.
func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}
	body, err := c.do(ctx, http.MethodPost, c.URL(path, nil), payload, "application/json")
	if err != nil {
		return err
	}
	return decode(body, out)
}

// PostMultipart sends a multipart form and decodes the response into out
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out interface{}) error {
	payload, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPost, c.URL(path, nil), payload, contentType)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Delete issues a DELETE for path
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, c.URL(path, nil), nil, "")
	return err
}

// Probe checks that rawURL is fetchable with the current credentials and returns the
// URL reached after following redirects.
func (c *Client) Probe(ctx context.Context, rawURL string) (string, error) {
	resp, token, err := c.send(ctx, http.MethodHead, rawURL, nil, "")
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, token, err = c.send(ctx, http.MethodGet, rawURL, nil, "")
	}
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return "", c.failure(http.MethodHead, rawURL, resp.StatusCode, body, token)
	}
	return resp.Request.URL.String(), nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte, contentType string) ([]byte, error) {
	resp, token, err := c.send(ctx, method, rawURL, payload, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, common.NetworkError(fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.failure(method, rawURL, resp.StatusCode, body, token)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, rawURL string, payload []byte, contentType string) (*http.Response, string, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}

	var token string
	if c.session != nil {
		token = c.session.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", common.RequestID(ctx))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		return nil, token, common.NetworkError(err)
	}
	c.metrics.observe(method, resp.StatusCode, time.Since(start))
	return resp, token, nil
}

func (c *Client) failure(method, rawURL string, status int, body []byte, token string) error {
	apiErr := common.NormalizeError(status, body)
	if status == http.StatusUnauthorized && token != "" && c.session != nil {
		if c.session.Expire(token) {
			c.metrics.forcedLogout()
			log.Printf("api: %s %s returned 401, session cleared", method, rawURL)
		}
	}
	return apiErr
}

func decode(body []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
