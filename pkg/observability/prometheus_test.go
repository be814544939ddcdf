package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsRecordsEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.OnExtractComplete(ctx, "h", 3, 10*time.Millisecond, nil)
	m.OnExtractComplete(ctx, "h", 0, time.Millisecond, errors.New("bad xml"))
	m.OnGraphComplete(ctx, "Overview", 5, 2, time.Millisecond, nil)
	m.OnDiagnostic(ctx, "unknown_style")
	m.OnDiagnostic(ctx, "unknown_style")
	m.OnDiagnostic(ctx, "missing_endpoint")
	m.OnCacheHit(ctx, "graph")
	m.OnCacheMiss(ctx, "document")
	m.OnCacheSet(ctx, "graph", 512)
	m.OnResponse(ctx, "GET", "acme.leanix.net", "/x", 200, time.Millisecond)
	m.OnResponse(ctx, "POST", "acme.leanix.net", "/x", 503, time.Millisecond)
	m.OnError(ctx, "GET", "acme.leanix.net", "/x", errors.New("reset"))

	out := scrape(t, m)
	want := []string{
		`xmigraph_diagrams_extracted_total 3`,
		`xmigraph_stage_errors_total{stage="extract"} 1`,
		`xmigraph_graph_vertices_total 5`,
		`xmigraph_graph_edges_total 2`,
		`xmigraph_diagnostics_total{kind="unknown_style"} 2`,
		`xmigraph_diagnostics_total{kind="missing_endpoint"} 1`,
		`xmigraph_cache_hits_total{key_type="graph"} 1`,
		`xmigraph_cache_misses_total{key_type="document"} 1`,
		`xmigraph_cache_written_bytes_total{key_type="graph"} 512`,
		`xmigraph_http_client_requests_total{code="2xx",host="acme.leanix.net",method="GET"} 1`,
		`xmigraph_http_client_requests_total{code="5xx",host="acme.leanix.net",method="POST"} 1`,
		`xmigraph_http_client_errors_total{host="acme.leanix.net",method="GET"} 1`,
	}
	for _, line := range want {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("metrics output missing %q", line)
		}
	}
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.OnDiagnostic(context.Background(), "malformed_geometry")

	body := scrape(t, m)
	if !strings.Contains(body, `xmigraph_diagnostics_total{kind="malformed_geometry"} 1`) {
		t.Errorf("metrics output missing diagnostics counter:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("metrics output missing runtime collector")
	}
}

func TestMetricsInstall(t *testing.T) {
	defer Reset()
	m := NewMetrics()
	m.Install()

	if Pipeline() != PipelineHooks(m) || Cache() != CacheHooks(m) || HTTP() != HTTPHooks(m) {
		t.Error("Install() should register m for every hook category")
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 404: "4xx", 503: "5xx", 0: "other", 700: "other"}
	for code, want := range tests {
		if got := statusClass(code); got != want {
			t.Errorf("statusClass(%d) = %q, want %q", code, got, want)
		}
	}
}
