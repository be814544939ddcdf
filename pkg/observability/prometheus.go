package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xmigraph"

// Metrics implements every hook interface by recording Prometheus metrics
// on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	diagrams      prometheus.Counter
	vertices      prometheus.Counter
	edges         prometheus.Counter
	diagnostics   *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics creates a Metrics with Go runtime and process collectors
// already registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that failed",
		}, []string{"stage"}),
		diagrams: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagrams_extracted_total",
			Help:      "Diagrams produced by extraction",
		}),
		vertices: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_vertices_total",
			Help:      "Vertices inserted into built graphs",
		}),
		edges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_edges_total",
			Help:      "Edges inserted into built graphs",
		}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Non-fatal diagnostics by kind",
		}, []string{"kind"}),

		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of cache hits",
		}, []string{"key_type"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of cache misses",
		}, []string{"key_type"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing API requests by status code",
		}, []string{"method", "host", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_duration_seconds",
			Help:      "Latency of outgoing API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_errors_total",
			Help:      "Outgoing API requests that failed without a response",
		}, []string{"method", "host"}),
	}
}

// Registry returns the registry the metrics are recorded on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Install registers m as the global pipeline, cache, and HTTP hooks.
func (m *Metrics) Install() {
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func (m *Metrics) observeStage(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) OnExtractStart(context.Context, string) {}

func (m *Metrics) OnExtractComplete(_ context.Context, _ string, n int, d time.Duration, err error) {
	m.observeStage("extract", d, err)
	if err == nil {
		m.diagrams.Add(float64(n))
	}
}

func (m *Metrics) OnGraphStart(context.Context, string, int) {}

func (m *Metrics) OnGraphComplete(_ context.Context, _ string, vertices, edges int, d time.Duration, err error) {
	m.observeStage("graph", d, err)
	if err == nil {
		m.vertices.Add(float64(vertices))
		m.edges.Add(float64(edges))
	}
}

func (m *Metrics) OnPublishStart(context.Context, string) {}

func (m *Metrics) OnPublishComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.observeStage("publish", d, err)
}

func (m *Metrics) OnDiagnostic(_ context.Context, kind string) {
	m.diagnostics.WithLabelValues(kind).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, host, statusClass(code)).Inc()
	m.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(method, host).Inc()
}

// statusClass buckets status codes as "2xx", "4xx", ... to bound label
// cardinality.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return string(rune('0'+code/100)) + "xx"
}
