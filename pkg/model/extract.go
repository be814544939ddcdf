package model

import (
	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/xmi"
)

// Well-known paths in an export document.
const (
	RootName      = "xmi:XMI"
	ModelName     = "uml:Model"
	ExtensionName = "xmi:Extension"

	fieldConnectors = "connectors"
	fieldConnector  = "connector"
	fieldDiagrams   = "diagrams"
	fieldDiagram    = "diagram"
)

// Option configures Extract.
type Option func(*extractConfig)

type extractConfig struct {
	includeUnconnected bool
}

// IncludeUnconnected makes elements that no connector references
// resolvable, using their declarations in the flat element list. Without
// it, placements of such elements are reported as unresolved.
func IncludeUnconnected() Option {
	return func(c *extractConfig) { c.includeUnconnected = true }
}

// Extract builds the normalized model of every diagram in doc, in
// document order, with elements ordered by [OrderElements].
//
// doc must be the root of an export (an xmi:XMI element); any other root
// is an [errors.ErrCodeInvalidDocument] error. Missing sections are
// treated as empty. Non-fatal problems go to sink, which may be nil.
func Extract(doc *xmi.Node, sink diag.Sink, opts ...Option) ([]Diagram, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "empty document")
	}
	if doc.Name != RootName {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "root element is %q, want %q", doc.Name, RootName)
	}

	var cfg extractConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	sink = diag.OrDiscard(sink)

	ext := doc.Child(ExtensionName)
	h := ResolveHierarchy(doc.Child(ModelName))
	notes := ScanStereotypes(ext.Path(fieldElements).All(fieldElement))
	conns, elems := BuildReferenceIndex(ext.Path(fieldConnectors).All(fieldConnector), notes, h)
	if cfg.includeUnconnected {
		elems.AddUnconnected(notes, h)
	}

	nodes := ext.Path(fieldDiagrams).All(fieldDiagram)
	diagrams := make([]Diagram, 0, len(nodes))
	for _, n := range nodes {
		d := AssembleDiagram(n, elems, conns, sink)
		d.Elements = OrderElements(d.Elements)
		diagrams = append(diagrams, d)
	}
	return diagrams, nil
}
