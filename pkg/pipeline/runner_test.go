package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/xmigraph/pkg/cache"
	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations/leanix"
	"github.com/matzehuels/xmigraph/pkg/model"
)

func loadSample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../model/testdata/sample.xmi")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	return data
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner should fill defaults: %+v", r)
	}
}

func TestRunnerExtract(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	doc := loadSample(t)

	first, err := r.Extract(ctx, doc, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if first.CacheHit {
		t.Error("first extraction should miss the cache")
	}
	if got := model.Names(first.Diagrams); len(got) != 2 || got[0] != "Overview" || got[1] != "Empty" {
		t.Errorf("diagrams = %v", got)
	}
	if len(first.Diagnostics) != 3 {
		t.Errorf("diagnostics = %d, want 3", len(first.Diagnostics))
	}

	var replayed diag.Collector
	second, err := r.Extract(ctx, doc, Options{Sink: &replayed})
	if err != nil {
		t.Fatalf("Extract (cached): %v", err)
	}
	if !second.CacheHit {
		t.Error("second extraction should hit the cache")
	}
	if len(second.Diagnostics) != len(first.Diagnostics) {
		t.Errorf("cached diagnostics = %d, want %d", len(second.Diagnostics), len(first.Diagnostics))
	}
	if replayed.Count(diag.UnresolvedSubject) != 2 || replayed.Count(diag.MalformedGeometry) != 1 {
		t.Errorf("replayed = %v", replayed.All())
	}
	if second.DocHash != first.DocHash {
		t.Error("document hash should be stable")
	}

	refreshed, err := r.Extract(ctx, doc, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerExtractOptionsChangeKey(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	doc := loadSample(t)

	if _, err := r.Extract(ctx, doc, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Extract(ctx, doc, Options{IncludeUnconnected: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("different extraction options should not share a cache entry")
	}
}

func TestRunnerExtractInvalidDocument(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Extract(context.Background(), []byte("<xmi:XMI><unclosed>"), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestRunnerBuildGraph(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()

	ex, err := r.Extract(ctx, loadSample(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := model.Find(ex.Diagrams, "Overview")

	g, err := r.BuildGraph(ctx, d, Options{})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if g.CacheHit {
		t.Error("first build should miss the cache")
	}
	if g.Diagram != "Overview" || g.Vertices == 0 {
		t.Errorf("result = %+v", g)
	}
	if !strings.HasPrefix(g.XML, "<mxGraphModel") {
		t.Errorf("XML should start with <mxGraphModel, got %.40q", g.XML)
	}

	again, err := r.BuildGraph(ctx, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit || again.XML != g.XML {
		t.Error("second build should be served from cache with the same XML")
	}

	styled, err := r.BuildGraph(ctx, d, Options{Styles: map[string]string{"Class": "shape=cube"}})
	if err != nil {
		t.Fatal(err)
	}
	if styled.CacheHit {
		t.Error("style overrides should change the cache key")
	}
	if !strings.Contains(styled.XML, "shape=cube") {
		t.Error("style override missing from XML")
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	doc := loadSample(t)

	t.Run("ambiguous", func(t *testing.T) {
		_, err := r.Execute(context.Background(), doc, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("named", func(t *testing.T) {
		res, err := r.Execute(context.Background(), doc, Options{Diagram: "Overview"})
		if err != nil {
			t.Fatal(err)
		}
		if res.Graph.Diagram != "Overview" || len(res.Extract.Diagrams) != 2 {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := r.Execute(context.Background(), doc, Options{Formats: []string{"gif"}})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestRunnerPreview(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	ex, err := r.Extract(ctx, loadSample(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := model.Find(ex.Diagrams, "Overview")

	out, err := r.Preview(ctx, d, Options{Formats: []string{FormatDOT, FormatJSON, FormatXML}})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("formats = %d, want 3", len(out))
	}
	if !strings.HasPrefix(string(out[FormatDOT]), "digraph") {
		t.Errorf("dot = %.40q", out[FormatDOT])
	}
	var decoded model.Diagram
	if err := json.Unmarshal(out[FormatJSON], &decoded); err != nil || decoded.Name != "Overview" {
		t.Errorf("json = %v, %v", decoded.Name, err)
	}
	if !strings.Contains(string(out[FormatXML]), "mxGraphModel") {
		t.Error("xml preview should contain the graph document")
	}
}

type fakePublisher struct {
	xml  string
	opts leanix.CreateOptions
	err  error
}

func (f *fakePublisher) CreateBookmark(_ context.Context, graphXML string, opts leanix.CreateOptions) (*leanix.Bookmark, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.xml, f.opts = graphXML, opts
	return &leanix.Bookmark{ID: "bm-1", Name: opts.Name, Type: leanix.TypeVisualizer}, nil
}

func TestRunnerPublish(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	ex, err := r.Extract(ctx, loadSample(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := model.Find(ex.Diagrams, "Overview")

	t.Run("default name", func(t *testing.T) {
		p := &fakePublisher{}
		res, err := r.Publish(ctx, p, d, Options{Description: "from EA"})
		if err != nil {
			t.Fatalf("Publish: %v", err)
		}
		if p.opts.Name != "Overview" || p.opts.Description != "from EA" {
			t.Errorf("create options = %+v", p.opts)
		}
		if p.xml != res.Graph.XML {
			t.Error("published XML should match the built graph")
		}
		if res.Bookmark.ID != "bm-1" {
			t.Errorf("bookmark = %+v", res.Bookmark)
		}
	})

	t.Run("explicit name", func(t *testing.T) {
		p := &fakePublisher{}
		if _, err := r.Publish(ctx, p, d, Options{BookmarkName: "Shop landscape", GroupKey: "architecture"}); err != nil {
			t.Fatal(err)
		}
		if p.opts.Name != "Shop landscape" || p.opts.GroupKey != "architecture" {
			t.Errorf("create options = %+v", p.opts)
		}
	})

	t.Run("publisher error", func(t *testing.T) {
		p := &fakePublisher{err: errors.New(errors.ErrCodeUnauthorized, "token rejected")}
		_, err := r.Publish(ctx, p, d, Options{})
		if !errors.Is(err, errors.ErrCodeUnauthorized) {
			t.Errorf("error = %v, want UNAUTHORIZED", err)
		}
	})
}
