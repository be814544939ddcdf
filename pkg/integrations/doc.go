// Package integrations provides the shared HTTP client for remote APIs.
//
// # Overview
//
// API clients live in subpackages and build on [Client]:
//
//   - [leanix]: workspace bookmarks (list and create visualizer bookmarks)
//
// # Client Pattern
//
// Subpackage clients wrap [Client] and add typed operations:
//
//	auth := leanix.NewAuthenticator(instance, token)
//	client := leanix.NewClient(auth, nil)
//	marks, err := client.ListBookmarks(ctx, leanix.TypeVisualizer, false)
//
// [Client] handles:
//   - JSON requests with default and per-request headers
//   - Throttling through a token bucket, paused after 429 responses
//   - Retry with exponential backoff for network errors and 5xx responses
//   - Response caching via [cache.Cache] for idempotent reads
//   - HTTP events reported to [observability.HTTP]
//
// # Errors
//
// Failed responses carry both a sentinel ([ErrNotFound], [ErrUnauthorized],
// [ErrNetwork]) and a coded error from the errors package, so callers can
// use either errors.Is(err, integrations.ErrNotFound) or
// errors.GetCode(err).
//
// [leanix]: github.com/matzehuels/xmigraph/pkg/integrations/leanix
// [cache.Cache]: github.com/matzehuels/xmigraph/pkg/cache.Cache
// [observability.HTTP]: github.com/matzehuels/xmigraph/pkg/observability.HTTP
package integrations
