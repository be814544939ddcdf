package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xmigraph/pkg/cache"
	xerrors "github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/httputil"
	"github.com/matzehuels/xmigraph/pkg/observability"
)

// Client provides shared HTTP functionality for remote API clients.
// It handles caching, throttling, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	limiter   *RateLimiter
	logger    *log.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. with one whose
// transport attaches credentials.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit overrides [DefaultRateLimit].
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(c *Client) { c.limiter = NewRateLimiter(cfg) }
}

// WithLogger sets the logger for cache maintenance messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithKeyer overrides the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client. Cached responses are stored under namespace
// with the given TTL; a nil cache disables caching. Headers are applied to
// all requests made through this client and may be nil.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	cl := &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		limiter:   NewRateLimiter(DefaultRateLimit),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// WithHTTP returns a shallow copy of c that sends requests through h. The
// copy shares the cache and the rate limiter.
func (c *Client) WithHTTP(h *http.Client) *Client {
	cp := *c
	if h != nil {
		cp.http = h
	}
	return &cp
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	ck := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, ck); ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, "http")
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, ck, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Invalidate drops a cached response.
func (c *Client) Invalidate(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.keyer.HTTPKey(c.namespace, key))
}

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	defer body.Close()
	return decode(body, v)
}

// Post JSON-encodes in, POSTs it, and JSON-decodes the response into out.
// A nil out discards the response body.
func (c *Client) Post(ctx context.Context, url string, in, out any) error {
	return c.PostWithHeaders(ctx, url, nil, in, out)
}

// PostWithHeaders is [Client.Post] with additional headers.
func (c *Client) PostWithHeaders(ctx context.Context, url string, headers map[string]string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	body, err := c.doRequest(ctx, http.MethodPost, url, h, payload)
	if err != nil {
		return err
	}
	defer body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}
	return decode(body, out)
}

func (c *Client) doRequest(ctx context.Context, method, url string, headers map[string]string, payload []byte) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %w", ErrNetwork, xerrors.Wrap(xerrors.ErrCodeNetwork, err, "%s %s", method, path)))
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := c.checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus classifies a response and tags it with the package sentinels
// so callers can match either the sentinel or the error code.
func (c *Client) checkStatus(resp *http.Response) error {
	err := httputil.CheckStatus(resp)
	if err == nil {
		return nil
	}
	var rl *xerrors.RateLimitedError
	switch {
	case errors.As(err, &rl):
		c.limiter.RecordRateLimit(rl.RetryAfter)
		return err
	case xerrors.Is(err, xerrors.ErrCodeNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case xerrors.Is(err, xerrors.ErrCodeUnauthorized), xerrors.Is(err, xerrors.ErrCodeForbidden):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case httputil.IsRetryable(err):
		return httputil.Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
}

func decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return xerrors.Wrap(xerrors.ErrCodeInvalidFormat, err, "decode response")
	}
	return nil
}
