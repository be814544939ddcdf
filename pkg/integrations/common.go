package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the API rejects the credentials (401 or 403).
	ErrUnauthorized = errors.New("unauthorized")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// ServiceURL builds "https://{host}/{path}" with an optional query.
// A host that already carries a scheme (as httptest servers do) is used as is.
func ServiceURL(host, path string, query url.Values) string {
	base := host
	if !strings.Contains(host, "://") {
		base = "https://" + host
	}
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
