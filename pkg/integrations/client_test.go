package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xmigraph/pkg/cache"
	xerrors "github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/httputil"
)

func newTestClient(t *testing.T, server *httptest.Server, headers map[string]string) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	client := NewClient(c, "test", time.Hour, headers)
	if server != nil {
		client.http = server.Client()
	}
	return client
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(nil, "test", time.Hour, headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if _, ok := client.cache.(cache.NullCache); !ok {
		t.Errorf("NewClient(nil cache) cache = %T, want NullCache", client.cache)
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if client.limiter == nil {
		t.Error("NewClient() limiter is nil")
	}
}

func TestNewClientOptions(t *testing.T) {
	h := &http.Client{Timeout: time.Second}
	logger := log.New(io.Discard)
	client := NewClient(nil, "test", time.Hour, nil,
		WithHTTPClient(h),
		WithLogger(logger),
		WithRateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}),
		WithKeyer(cache.NewScopedKeyer(cache.NewDefaultKeyer(), "tenant")),
	)
	if client.http != h {
		t.Error("WithHTTPClient not applied")
	}
	if client.Logger() != logger {
		t.Error("WithLogger not applied")
	}
	if NewClient(nil, "test", time.Hour, nil, WithLogger(nil)).Logger() == nil {
		t.Error("nil logger should keep the default")
	}
	if _, ok := client.keyer.(*cache.ScopedKeyer); !ok {
		t.Errorf("keyer = %T, want *cache.ScopedKeyer", client.keyer)
	}

	other := &http.Client{}
	cp := client.WithHTTP(other)
	if cp.http != other || client.http != h {
		t.Error("WithHTTP should only change the copy")
	}
	if cp.limiter != client.limiter {
		t.Error("WithHTTP copy should share the limiter")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var custom, override string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		custom = r.Header.Get("X-Custom")
		override = r.Header.Get("X-Override")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := newTestClient(t, server, map[string]string{"X-Override": "default"})

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL,
		map[string]string{"X-Custom": "custom", "X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if custom != "custom" {
		t.Errorf("custom header = %q, want %q", custom, "custom")
	}
	if override != "overridden" {
		t.Errorf("override header = %q, want %q", override, "overridden")
	}
}

func TestClientPost(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var in payload
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"echo": in.Name})
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var out map[string]string
	if err := client.Post(context.Background(), server.URL, payload{Name: "Overview"}, &out); err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	if out["echo"] != "Overview" {
		t.Errorf("echo = %q, want Overview", out["echo"])
	}

	if err := client.Post(context.Background(), server.URL, payload{Name: "x"}, nil); err != nil {
		t.Errorf("Post(nil out) error: %v", err)
	}
}

func TestClientDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var v map[string]any
	err := client.Get(context.Background(), server.URL, &v)
	if !xerrors.Is(err, xerrors.ErrCodeInvalidFormat) {
		t.Errorf("Get() error = %v, want INVALID_FORMAT", err)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		sentinel  error
		errCode   xerrors.Code
		retryable bool
	}{
		{"404", http.StatusNotFound, ErrNotFound, xerrors.ErrCodeNotFound, false},
		{"401", http.StatusUnauthorized, ErrUnauthorized, xerrors.ErrCodeUnauthorized, false},
		{"403", http.StatusForbidden, ErrUnauthorized, xerrors.ErrCodeForbidden, false},
		{"400", http.StatusBadRequest, ErrNetwork, xerrors.ErrCodeNetwork, false},
		{"500", http.StatusInternalServerError, ErrNetwork, xerrors.ErrCodeNetwork, true},
		{"503", http.StatusServiceUnavailable, ErrNetwork, xerrors.ErrCodeNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer server.Close()

			client := newTestClient(t, server, nil)

			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			if got := xerrors.GetCode(err); got != tt.errCode {
				t.Errorf("code = %q, want %q", got, tt.errCode)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", httputil.IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestClientRateLimitedPausesLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !xerrors.Is(err, xerrors.ErrCodeRateLimited) {
		t.Fatalf("error = %v, want RATE_LIMITED", err)
	}
	if client.limiter.Allow() {
		t.Error("limiter should pause after 429")
	}
}

func TestClientCached(t *testing.T) {
	client := newTestClient(t, nil, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			v.Value = "fetched"
			return nil
		}
	}

	var first testData
	if err := client.Cached(context.Background(), "key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	var second testData
	if err := client.Cached(context.Background(), "key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q, want %q", second.Value, "fetched")
	}

	var third testData
	if err := client.Cached(context.Background(), "key", true, &third, fetch(&third)); err != nil {
		t.Fatalf("Cached(refresh) error: %v", err)
	}
	if fetchCount != 2 {
		t.Errorf("refresh fetch count = %d, want 2", fetchCount)
	}

	if err := client.Invalidate(context.Background(), "key"); err != nil {
		t.Fatalf("Invalidate() error: %v", err)
	}
	var fourth testData
	_ = client.Cached(context.Background(), "key", false, &fourth, fetch(&fourth))
	if fetchCount != 3 {
		t.Errorf("fetch count after invalidate = %d, want 3", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := newTestClient(t, nil, nil)

	fetchCount := 0
	var value string
	err := client.Cached(context.Background(), "err-key", false, &value, func() error {
		fetchCount++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetchCount != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetchCount)
	}
}

func TestRateLimiter(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0})
	for range 100 {
		if !r.Allow() {
			t.Fatal("zero rate should not throttle")
		}
	}

	r.RecordRateLimit(0)
	if r.Allow() {
		t.Error("Allow() should be false during backoff")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}

func TestServiceURL(t *testing.T) {
	tests := []struct {
		host, path, want string
	}{
		{"eu.leanix.net", "/services/x", "https://eu.leanix.net/services/x"},
		{"eu.leanix.net/", "services/x", "https://eu.leanix.net/services/x"},
		{"http://127.0.0.1:1234", "/a", "http://127.0.0.1:1234/a"},
	}
	for _, tt := range tests {
		if got := ServiceURL(tt.host, tt.path, nil); got != tt.want {
			t.Errorf("ServiceURL(%q, %q) = %q, want %q", tt.host, tt.path, got, tt.want)
		}
	}
}
