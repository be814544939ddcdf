// Package diag carries non-fatal events raised while extracting and
// rendering diagrams.
//
// Extraction never fails because of partial data: a placement that
// references nothing known is dropped, an unparsable bounding box is
// ignored, an unknown type renders unstyled, an edge without endpoints is
// skipped. Each of these is reported as a [Diagnostic] to a [Sink] so the
// caller can log, count or assert on them.
//
// Sinks are passed explicitly to every operation; there is no package
// level registry.
package diag

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// MalformedGeometry: a bounding-box string could not be parsed.
	// The element is still emitted, without a position.
	MalformedGeometry Kind = "malformed_geometry"

	// UnresolvedSubject: a placement references neither a known element
	// nor a known connector. The placement is dropped.
	UnresolvedSubject Kind = "unresolved_subject"

	// UnknownStyle: a type has no entry in the style table. The item is
	// rendered with the empty style.
	UnknownStyle Kind = "unknown_style"

	// MissingEndpoint: an edge references a vertex that was never created.
	// The edge is dropped. Unlike UnresolvedSubject this signals an
	// ordering or referential integrity problem.
	MissingEndpoint Kind = "missing_endpoint"
)

// Diagnostic describes one non-fatal event.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Diagram string `json:"diagram,omitempty"` // Diagram name, if known
	Subject string `json:"subject,omitempty"` // Element, connector or placement id
	Detail  string `json:"detail,omitempty"`  // Human-readable context
}

// String formats the diagnostic for logs and CLI output.
func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.Diagram != "" {
		s += fmt.Sprintf(" [%s]", d.Diagram)
	}
	if d.Subject != "" {
		s += " " + d.Subject
	}
	if d.Detail != "" {
		s += ": " + d.Detail
	}
	return s
}

// Sink receives diagnostics.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// OrDiscard returns s, or Discard if s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Collector records diagnostics in arrival order. It is safe for
// concurrent use so callers may share one across diagrams built in
// parallel.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// All returns a copy of the collected diagnostics.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the number of collected diagnostics of the given kind.
func (c *Collector) Count(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Len returns the total number of collected diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// LogSink forwards diagnostics to a logger. Unknown styles and missing
// endpoints are logged at warn level; the benign kinds at debug.
func LogSink(l *log.Logger) Sink {
	if l == nil {
		l = log.Default()
	}
	return SinkFunc(func(d Diagnostic) {
		kv := []any{"kind", d.Kind}
		if d.Diagram != "" {
			kv = append(kv, "diagram", d.Diagram)
		}
		if d.Subject != "" {
			kv = append(kv, "subject", d.Subject)
		}
		if d.Detail != "" {
			kv = append(kv, "detail", d.Detail)
		}
		switch d.Kind {
		case UnknownStyle, MissingEndpoint:
			l.Warn("diagnostic", kv...)
		default:
			l.Debug("diagnostic", kv...)
		}
	})
}

// Tee reports every diagnostic to each non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}

// WithDiagram returns a sink that stamps diagram onto every diagnostic
// that does not already name one.
func WithDiagram(s Sink, diagram string) Sink {
	s = OrDiscard(s)
	return SinkFunc(func(d Diagnostic) {
		if d.Diagram == "" {
			d.Diagram = diagram
		}
		s.Report(d)
	})
}
