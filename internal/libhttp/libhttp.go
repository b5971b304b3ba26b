package libhttp

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

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// HTTPError is returned for any non 2xx response. Body holds the raw payload
// so adapters can map provider specific error messages.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, string(e.Body))
}

type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second. Callers block in Call
// until a token is available or ctx is done.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers[key] = value
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs a request and decodes a JSON response into T.
// params is either a map[string]string or a struct with `url` tags.
func Call[T any](
	ctx context.Context,
	c *Client,
	method string,
	endpoint string,
	body any,
	params any,
) (T, error) {
	var res T

	raw, err := c.Do(ctx, method, endpoint, body, params)
	if err != nil {
		return res, err
	}

	if err = json.Unmarshal(raw, &res); err != nil {
		return res, fmt.Errorf("failed to decode response: %w", err)
	}
	return res, nil
}

// Do performs a request and returns the raw response body.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, params any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if params != nil {
		values, er := encodeParams(params)
		if er != nil {
			return nil, fmt.Errorf("failed to encode params: %w", er)
		}
		q := u.Query()
		for k, vs := range values {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, er := json.Marshal(body)
		if er != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", er)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: raw}
	}
	return raw, nil
}

func encodeParams(params any) (url.Values, error) {
	switch p := params.(type) {
	case url.Values:
		return p, nil
	case map[string]string:
		values := url.Values{}
		for k, v := range p {
			values.Set(k, v)
		}
		return values, nil
	default:
		return query.Values(params)
	}
}

// AsHTTPError unwraps an *HTTPError from err.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
