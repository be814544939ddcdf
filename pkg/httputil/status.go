package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/xmigraph/pkg/errors"
)

// maxErrorBody bounds how much of an error response is quoted in messages.
const maxErrorBody = 512

// CheckStatus maps a non-2xx response to a coded error and returns nil for
// 2xx. Server errors and 429 are wrapped as [RetryableError]. The body is
// not closed.
//
//	401        -> UNAUTHORIZED
//	403        -> FORBIDDEN
//	404        -> NOT_FOUND
//	429        -> RATE_LIMITED (retryable, honours Retry-After)
//	5xx        -> NETWORK_ERROR (retryable)
//	other      -> NETWORK_ERROR
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	msg := fmt.Sprintf("%s %s: status %d", resp.Request.Method, resp.Request.URL.Path, code)
	if snippet := readSnippet(resp.Body); snippet != "" {
		msg += ": " + snippet
	}

	switch {
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "%s", msg)
	case code == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "%s", msg)
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", msg)
	case code == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return Retryable(&errors.RateLimitedError{RetryAfter: secs, Message: msg})
	case code >= 500:
		return Retryable(errors.New(errors.ErrCodeNetwork, "%s", msg))
	default:
		return errors.New(errors.ErrCodeNetwork, "%s", msg)
	}
}

func readSnippet(r io.Reader) string {
	if r == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}
