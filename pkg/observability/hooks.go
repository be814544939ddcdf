// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without coupling the
// pipeline to a metrics backend. Consumers register hooks at startup to
// receive events about extraction, graph building, publishing, cache
// operations, and outgoing API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Metrics] is the bundled implementation. It records every event as a
// Prometheus counter or histogram on its own registry and serves them
// through [Metrics.Handler].
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics()
//	m.Install()
//	http.Handle("/metrics", m.Handler())
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnExtractStart(ctx, docHash)
//	// ... extract ...
//	observability.Pipeline().OnExtractComplete(ctx, docHash, len(diagrams), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the extraction pipeline.
type PipelineHooks interface {
	// Extract events
	OnExtractStart(ctx context.Context, docHash string)
	OnExtractComplete(ctx context.Context, docHash string, diagramCount int, duration time.Duration, err error)

	// Graph events
	OnGraphStart(ctx context.Context, diagram string, elementCount int)
	OnGraphComplete(ctx context.Context, diagram string, vertices, edges int, duration time.Duration, err error)

	// Publish events
	OnPublishStart(ctx context.Context, diagram string)
	OnPublishComplete(ctx context.Context, diagram string, duration time.Duration, err error)

	// OnDiagnostic records one non-fatal diagnostic of the given kind.
	OnDiagnostic(ctx context.Context, kind string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnExtractStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnExtractComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnGraphStart(context.Context, string, int)                            {}
func (NoopPipelineHooks) OnGraphComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnPublishStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnPublishComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnDiagnostic(context.Context, string)                            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
