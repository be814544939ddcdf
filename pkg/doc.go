// Package pkg provides the core libraries for xmigraph, which turns UML
// diagrams exported as XMI into mxGraph documents.
//
// # Overview
//
// Modeling tools export a whole repository as one XMI document: packages,
// elements, connectors, and a diagram section that says which of those
// appear on which canvas and where. xmigraph reads that document, assembles
// one normalized [model.Diagram] per canvas, and converts each diagram into
// an mxGraph XML model that can be stored as a LeanIX diagram bookmark.
//
// # Architecture
//
// The data flow through xmigraph:
//
//	XMI document
//	     ↓
//	[xmi] package (generic element tree)
//	     ↓
//	[model] package (hierarchy, reference index, assembly, ordering)
//	     ↓
//	[render] package (style mapping + mxGraph adapter, DOT/SVG preview)
//	     ↓
//	mxGraph XML → [integrations/leanix] bookmark
//
// # Quick Start
//
//	root, err := xmi.ParseBytes(data)
//	if err != nil {
//	    return err
//	}
//
//	var diags diag.Collector
//	diagrams, err := model.Extract(root, &diags)
//	if err != nil {
//	    return err
//	}
//
//	mapper := style.NewMapper(style.Default(), &diags)
//	xml, err := render.BuildGraph(diagrams[0], mapper, &diags)
//
// Most callers use [pipeline.Runner] instead, which adds validation,
// caching, and diagnostics collection around the same steps.
//
// # Main Packages
//
// ## Domain
//
// [xmi] - Namespace-preserving XML element tree. Tag and attribute names keep
// their prefixes ("uml:Model", "xmi:id") because XMI lookups rely on them.
//
// [model] - Diagram extraction: geometry parsing, package hierarchy,
// connector reference index, per-diagram assembly, and the parent-first
// element ordering the graph adapter needs.
//
// [style] - Type-to-style table with the built-in UML and ArchiMate entries
// and TOML overrides.
//
// [mxgraph] - Minimal mxGraph model: cells, batched updates, and the XML
// codec.
//
// [render] - Graph assembly from a diagram, plus Graphviz previews (DOT,
// SVG, PNG, PDF).
//
// [diag] - Non-fatal diagnostics reported while extracting and rendering.
//
// ## Infrastructure
//
// [pipeline] - Orchestration (extract → graph → preview/publish) shared by
// the CLI and the HTTP API.
//
// [cache] - Result cache with file, Redis, and MongoDB backends.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Pipeline hooks and Prometheus metrics.
//
// [errors] - Coded errors with user messages and HTTP status mapping.
//
// ## External Integrations
//
// [integrations] - Shared HTTP client with retries and rate limiting.
//
// [integrations/leanix] - LeanIX authentication and diagram bookmarks.
//
// # Error Handling
//
// Fatal problems are returned as *errors.Error values carrying a code such
// as INVALID_DOCUMENT or DIAGRAM_NOT_FOUND. Recoverable problems (an element
// with malformed geometry, a connector whose endpoint is not on the canvas)
// are reported to a [diag.Sink] and processing continues.
//
// # Testing
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/model/...      # Specific package
//	go test -run Example ./...   # Examples only
//
// [xmi]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/xmi
// [model]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/model
// [model.Diagram]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/model#Diagram
// [style]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/style
// [mxgraph]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/mxgraph
// [render]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/render
// [diag]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/diag
// [diag.Sink]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/diag#Sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/errors
// [integrations]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/integrations
// [integrations/leanix]: https://pkg.go.dev/github.com/matzehuels/xmigraph/pkg/integrations/leanix
package pkg
