package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dairyflow/pkg/constraints"
	"dairyflow/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenStore is the slice of session storage the client needs.
type TokenStore interface {
	GetToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	GetRefreshToken(ctx context.Context) (string, error)
	SaveRefreshToken(ctx context.Context, token string) error
	ClearAll(ctx context.Context) error
}

// Client issues requests against the farm API, attaching the stored bearer
// token and recovering once from an expired access token.
type Client struct {
	baseURL     string
	store       TokenStore
	httpClient  *http.Client
	timeout     time.Duration
	headers     http.Header
	refreshPath string
	observer    Observer

	coalesce     bool
	refreshGroup singleflight.Group

	pipeline Doer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver reports request and refresh outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithRefreshPath overrides the refresh endpoint path relative to the base URL.
func WithRefreshPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.refreshPath = p
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithRefreshCoalescing makes concurrent 401s holding the same refresh token
// share one refresh call instead of each issuing their own.
func WithRefreshCoalescing() Option {
	return func(c *Client) {
		c.coalesce = true
	}
}

func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if baseURL == "" {
		logger.Warn("api base url not configured, falling back to localhost",
			zap.String("base_url", constraints.DefaultBaseURL))
		baseURL = constraints.DefaultBaseURL
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		store:       store,
		httpClient:  &http.Client{},
		timeout:     constraints.DefaultTimeout,
		headers:     make(http.Header),
		refreshPath: constraints.PathRefresh,
		observer:    nopObserver{},
	}
	c.headers.Set("Content-Type", constraints.ContentTypeJSON)
	c.headers.Set("Accept", constraints.ContentTypeJSON)

	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = c.timeout
	c.httpClient = &hc

	c.pipeline = chain(c.transport,
		c.normalizeError,
		c.authRetry,
		c.observe,
		c.attachAuth,
	)
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a successful (2xx) answer with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type RequestOption func(*Request)

func WithQuery(q url.Values) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(url.Values)
		}
		for k, vs := range q {
			for _, v := range vs {
				r.Query.Add(k, v)
			}
		}
	}
}

func WithRequestHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Header.Set(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do runs one call through the pipeline. Failures are always *Error except
// for a body that cannot be encoded, which fails before any I/O.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("client: encode %s %s body: %w", method, path, err)
	}

	req := &Request{
		Method: method,
		Path:   path,
		Body:   payload,
		Header: make(http.Header),
	}
	for _, opt := range opts {
		opt(req)
	}
	return c.pipeline(ctx, req)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}
