package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xmigraph/pkg/cache"
	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/integrations/leanix"
	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/observability"
	"github.com/matzehuels/xmigraph/pkg/render"
	"github.com/matzehuels/xmigraph/pkg/style"
	"github.com/matzehuels/xmigraph/pkg/xmi"
)

// Publisher stores a graph document remotely. *leanix.Client implements it.
type Publisher interface {
	CreateBookmark(ctx context.Context, graphXML string, opts leanix.CreateOptions) (*leanix.Bookmark, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute extracts doc, selects opts.Diagram, and builds its graph.
func (r *Runner) Execute(ctx context.Context, doc []byte, opts Options) (*Result, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	ex, err := r.Extract(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	d, err := opts.SelectDiagram(ex.Diagrams)
	if err != nil {
		return nil, err
	}
	g, err := r.BuildGraph(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	return &Result{Extract: ex, Graph: g}, nil
}

// =============================================================================
// Extract
// =============================================================================

// extractEntry is the cached form of an extraction.
type extractEntry struct {
	Diagrams    []model.Diagram   `json:"diagrams"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

// Extract parses doc and returns its diagrams with elements ordered
// container-first. Results are cached by document content and the options
// that change them; cached diagnostics are reported again on a hit.
func (r *Runner) Extract(ctx context.Context, doc []byte, opts Options) (*ExtractResult, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &ExtractResult{DocHash: cache.Hash(doc)}
	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, res.DocHash)

	col, sink := r.sink(ctx, opts)
	key := r.Keyer.DocumentKey(res.DocHash, opts.DocumentKeyOpts())

	if entry, ok := r.cached(ctx, key, "document", opts.Refresh); ok {
		var e extractEntry
		if json.Unmarshal(entry, &e) == nil {
			replay(sink, e.Diagnostics)
			res.Diagrams, res.Diagnostics, res.CacheHit = e.Diagrams, col.All(), true
			res.Duration = time.Since(start)
			hooks.OnExtractComplete(ctx, res.DocHash, len(res.Diagrams), res.Duration, nil)
			opts.Logger.Debug("extraction served from cache", "diagrams", len(res.Diagrams))
			return res, nil
		}
	}

	diagrams, err := extract(doc, sink, opts)
	res.Duration = time.Since(start)
	hooks.OnExtractComplete(ctx, res.DocHash, len(diagrams), res.Duration, err)
	if err != nil {
		return nil, err
	}
	res.Diagrams, res.Diagnostics = diagrams, col.All()

	r.store(ctx, key, "document", extractEntry{Diagrams: diagrams, Diagnostics: res.Diagnostics}, cache.DocumentTTL)

	opts.Logger.Info("extracted diagrams",
		"diagrams", len(diagrams),
		"diagnostics", len(res.Diagnostics),
		"duration", res.Duration)
	return res, nil
}

func extract(doc []byte, sink diag.Sink, opts Options) ([]model.Diagram, error) {
	root, err := xmi.ParseBytes(doc)
	if err != nil {
		return nil, err
	}
	return model.Extract(root, sink, opts.ExtractOptions()...)
}

// =============================================================================
// Graph
// =============================================================================

// BuildGraph builds the mxGraph document of d. Results are cached by the
// diagram's content, the style table hash, and the graph options.
func (r *Runner) BuildGraph(ctx context.Context, d model.Diagram, opts Options) (*GraphResult, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnGraphStart(ctx, d.Name, len(d.Elements))

	col, sink := r.sink(ctx, opts)

	diagramHash, err := cache.HashJSON(d)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.GraphKey(diagramHash, opts.GraphKeyOpts())

	if data, ok := r.cached(ctx, key, "graph", opts.Refresh); ok {
		var g GraphResult
		if json.Unmarshal(data, &g) == nil {
			replay(sink, g.Diagnostics)
			g.Diagnostics, g.CacheHit = col.All(), true
			g.Duration = time.Since(start)
			hooks.OnGraphComplete(ctx, d.Name, g.Vertices, g.Edges, g.Duration, nil)
			return &g, nil
		}
	}

	built := render.Build(d, style.NewMapper(opts.Table, nil), sink, render.Options{
		SkipUnknown:      opts.SkipUnknown,
		AbsoluteGeometry: opts.AbsoluteGeometry,
	})
	var xml string
	if opts.Indent {
		xml, err = built.Model.EncodeIndent()
	} else {
		xml, err = built.Model.Encode()
	}
	duration := time.Since(start)
	hooks.OnGraphComplete(ctx, d.Name, built.Vertices, built.Edges, duration, err)
	if err != nil {
		return nil, err
	}

	g := &GraphResult{
		Diagram:     d.Name,
		XML:         xml,
		Vertices:    built.Vertices,
		Edges:       built.Edges,
		Skipped:     built.Skipped,
		Dropped:     built.Dropped,
		Diagnostics: col.All(),
		Duration:    duration,
	}
	r.store(ctx, key, "graph", g, cache.GraphTTL)

	opts.Logger.Info("built graph",
		"diagram", d.Name,
		"vertices", g.Vertices,
		"edges", g.Edges,
		"dropped", g.Dropped,
		"duration", duration)
	return g, nil
}

// =============================================================================
// Preview
// =============================================================================

// Preview renders d in each of opts.Formats. Graphviz formats share one
// DOT source; "xml" is the mxGraph document and "json" the normalized
// diagram model.
func (r *Runner) Preview(ctx context.Context, d model.Diagram, opts Options) (map[string][]byte, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(opts.Formats))
	dot := render.ToDOT(d, render.DOTOptions{Detailed: opts.Detailed})

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = render.RenderSVG(ctx, dot)
		return svg, err
	}

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatXML:
			var g *GraphResult
			if g, err = r.BuildGraph(ctx, d, opts); err == nil {
				data = []byte(g.XML)
			}
		case FormatJSON:
			data, err = json.MarshalIndent(d, "", "  ")
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out[format] = data
	}

	opts.Logger.Debug("rendered preview", "diagram", d.Name, "formats", opts.Formats)
	return out, nil
}

// =============================================================================
// Publish
// =============================================================================

// Publish builds the graph of d and stores it through p as a bookmark
// named opts.BookmarkName, or the diagram name when that is empty.
func (r *Runner) Publish(ctx context.Context, p Publisher, d model.Diagram, opts Options) (*PublishResult, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	g, err := r.BuildGraph(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}

	name := opts.BookmarkName
	if name == "" {
		name = d.Name
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnPublishStart(ctx, d.Name)
	b, err := p.CreateBookmark(ctx, g.XML, leanix.CreateOptions{
		Name:        name,
		Description: opts.Description,
		GroupKey:    opts.GroupKey,
	})
	hooks.OnPublishComplete(ctx, d.Name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	opts.Logger.Info("published bookmark", "diagram", d.Name, "bookmark", b.ID, "name", b.Name)
	return &PublishResult{Graph: g, Bookmark: b}, nil
}

// =============================================================================
// Helpers
// =============================================================================

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// prepare applies the runner's logger and validates opts.
func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// sink returns a collector plus the sink that feeds it, the logger, the
// diagnostic hook, and the caller's own sink.
func (r *Runner) sink(ctx context.Context, opts Options) (*diag.Collector, diag.Sink) {
	col := &diag.Collector{}
	hooks := observability.Pipeline()
	return col, diag.Tee(
		col,
		diag.LogSink(opts.Logger),
		diag.SinkFunc(func(d diag.Diagnostic) { hooks.OnDiagnostic(ctx, string(d.Kind)) }),
		opts.Sink,
	)
}

func (r *Runner) cached(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func replay(s diag.Sink, ds []diag.Diagnostic) {
	for _, d := range ds {
		s.Report(d)
	}
}
