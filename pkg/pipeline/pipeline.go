// Package pipeline provides the core conversion pipeline for xmigraph.
//
// This package implements the complete extract → graph → publish pipeline
// used by the CLI and the API server. By centralizing this logic, both
// entry points cache, log, and report diagnostics the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Extract: Parse an XMI export into ordered per-diagram models
//  2. Graph: Build and serialize the mxGraph document of one diagram
//  3. Publish: Store the graph document as a LeanIX bookmark
//
// A fourth, optional stage renders a Graphviz preview (DOT, SVG, PNG, PDF)
// of a diagram for inspection without a LeanIX workspace.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, xmiBytes, pipeline.Options{Diagram: "Overview"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Graph.XML)
//
// Run individual stages:
//
//	ex, err := runner.Extract(ctx, xmiBytes, opts)
//	g, err := runner.BuildGraph(ctx, ex.Diagrams[0], opts)
//	pub, err := runner.Publish(ctx, bookmarks, ex.Diagrams[0], opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/xmigraph/pkg/cache"
	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations/leanix"
	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatXML  = "xml"  // mxGraph model document
	FormatJSON = "json" // normalized diagram model
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultPNGScale is the rasterization scale of PNG previews.
const DefaultPNGScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatXML:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// previewFormats are produced by the Graphviz preview renderer.
var previewFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the conversion pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Extract options
	IncludeUnconnected bool `json:"include_unconnected,omitempty"`
	Refresh            bool `json:"refresh,omitempty"`

	// Diagram selects one diagram by name for Execute and Publish.
	Diagram string `json:"diagram,omitempty"`

	// Graph options
	SkipUnknown      bool              `json:"skip_unknown,omitempty"`
	AbsoluteGeometry bool              `json:"absolute_geometry,omitempty"`
	Indent           bool              `json:"indent,omitempty"`
	Styles           map[string]string `json:"styles,omitempty"` // Overrides merged over Table

	// Preview options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Publish options
	BookmarkName string `json:"bookmark_name,omitempty"` // Defaults to the diagram name
	Description  string `json:"description,omitempty"`
	GroupKey     string `json:"group_key,omitempty"` // Defaults to leanix.GroupFreedraw

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	Table  style.Table `json:"-"` // Base style table; defaults to style.Default()
	Sink   diag.Sink   `json:"-"` // Extra diagnostics receiver

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Extract *ExtractResult
	Graph   *GraphResult
}

// ExtractResult is the outcome of the extract stage.
type ExtractResult struct {
	DocHash     string            `json:"doc_hash"`
	Diagrams    []model.Diagram   `json:"diagrams"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	CacheHit    bool              `json:"cache_hit"`
	Duration    time.Duration     `json:"-"`
}

// GraphResult is the outcome of the graph stage for one diagram.
type GraphResult struct {
	Diagram     string            `json:"diagram"`
	XML         string            `json:"xml"`
	Vertices    int               `json:"vertices"`
	Edges       int               `json:"edges"`
	Skipped     int               `json:"skipped"`
	Dropped     int               `json:"dropped"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	CacheHit    bool              `json:"cache_hit"`
	Duration    time.Duration     `json:"-"`
}

// PublishResult is the outcome of the publish stage.
type PublishResult struct {
	Graph    *GraphResult
	Bookmark *leanix.Bookmark
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: xml, json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// IsPreviewFormat reports whether format is rendered through Graphviz.
func IsPreviewFormat(format string) bool { return previewFormats[format] }

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGraph(); err != nil {
		return err
	}
	if err := o.ValidateForPreview(); err != nil {
		return err
	}
	if o.BookmarkName != "" {
		if err := errors.ValidateBookmarkName(o.BookmarkName); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateForGraph merges style overrides into the table and sets the
// logger default.
func (o *Options) ValidateForGraph() error {
	if o.Table.Len() == 0 {
		o.Table = style.Default()
	}
	if len(o.Styles) > 0 {
		for typ := range o.Styles {
			if typ == "" {
				return errors.New(errors.ErrCodeInvalidStyle, "style override with empty type")
			}
		}
		o.Table = o.Table.With(o.Styles)
		o.Styles = nil
	}
	o.setLogger()
	return nil
}

// ValidateForPreview sets the preview format default and validates formats.
func (o *Options) ValidateForPreview() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// DocumentKeyOpts returns cache key options for extraction.
func (o *Options) DocumentKeyOpts() cache.DocumentKeyOpts {
	return cache.DocumentKeyOpts{IncludeUnconnected: o.IncludeUnconnected}
}

// GraphKeyOpts returns cache key options for graph building. The style
// table is keyed by content hash.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		StyleHash:        o.Table.Hash(),
		SkipUnknown:      o.SkipUnknown,
		AbsoluteGeometry: o.AbsoluteGeometry,
		Indent:           o.Indent,
	}
}

// ExtractOptions returns the model extraction options.
func (o *Options) ExtractOptions() []model.Option {
	var opts []model.Option
	if o.IncludeUnconnected {
		opts = append(opts, model.IncludeUnconnected())
	}
	return opts
}

// SelectDiagram returns the diagram named by o.Diagram. With no name and a
// single diagram, that diagram is returned.
func (o *Options) SelectDiagram(diagrams []model.Diagram) (model.Diagram, error) {
	if o.Diagram == "" {
		if len(diagrams) == 1 {
			return diagrams[0], nil
		}
		return model.Diagram{}, errors.New(errors.ErrCodeInvalidInput,
			"document has %d diagrams, choose one of: %v", len(diagrams), model.Names(diagrams))
	}
	d, ok := model.Find(diagrams, o.Diagram)
	if !ok {
		return model.Diagram{}, errors.New(errors.ErrCodeDiagramNotFound, "diagram %q not found", o.Diagram)
	}
	return d, nil
}
