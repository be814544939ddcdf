// Package httputil provides HTTP helpers shared by the API clients.
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError],
// doubling the delay between attempts:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.Post(ctx, url, body, &out)
//	})
//
// Only errors explicitly marked retryable are retried. A rate-limited
// failure waits at least as long as the server's Retry-After header asks.
//
// # Status mapping
//
// [CheckStatus] turns a non-2xx response into a coded error from
// [errors]: 401 and 403 become UNAUTHORIZED and FORBIDDEN, 404 NOT_FOUND,
// 429 RATE_LIMITED, everything else NETWORK_ERROR. 429 and 5xx responses
// are marked retryable.
//
// [errors]: github.com/matzehuels/xmigraph/pkg/errors
package httputil
