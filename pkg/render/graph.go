package render

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/mxgraph"
	"github.com/matzehuels/xmigraph/pkg/style"
)

// Options configures graph construction.
type Options struct {
	// SkipUnknown omits elements whose type has no style entry instead of
	// rendering them unstyled. Edges to omitted elements are dropped
	// without a MissingEndpoint diagnostic.
	SkipUnknown bool

	// AbsoluteGeometry keeps export coordinates as they are. By default,
	// nested vertices are positioned relative to their parent's origin,
	// which is how mxGraph interprets child geometry.
	AbsoluteGeometry bool
}

// Result is the outcome of [Build].
type Result struct {
	Model    *mxgraph.Model
	Vertices int // Vertices created
	Edges    int // Edges created
	Skipped  int // Elements omitted by Options.SkipUnknown
	Dropped  int // Edges dropped for a missing endpoint
}

// BuildGraph builds and serializes the mxGraph model of d with default
// options.
func BuildGraph(d model.Diagram, m *style.Mapper, sink diag.Sink) (string, error) {
	return Build(d, m, sink, Options{}).Model.Encode()
}

// Build constructs the mxGraph model of d.
//
// Styles come from m; a nil mapper uses [style.Default]. When sink is not
// nil, style diagnostics are redirected to it alongside the diagnostics
// raised here, all stamped with the diagram name. Otherwise m keeps its
// own sink and missing endpoints go unreported.
func Build(d model.Diagram, m *style.Mapper, sink diag.Sink, opts Options) *Result {
	if m == nil {
		m = style.NewMapper(style.Default(), nil)
	}
	if sink != nil {
		sink = diag.WithDiagram(sink, d.Name)
		m = m.WithSink(sink)
	} else {
		sink = diag.Discard
	}

	g := mxgraph.New()
	res := &Result{Model: g}

	g.BeginUpdate()
	defer g.EndUpdate()

	cells := make(map[string]*mxgraph.Cell, len(d.Elements))
	origins := make(map[string][2]int, len(d.Elements))
	skipped := mapset.NewThreadUnsafeSet[string]()

	for _, e := range model.OrderElements(d.Elements) {
		if opts.SkipUnknown && e.Type != "" && !m.Known(e.Type) {
			m.StyleFor(e.Type)
			skipped.Add(e.ID)
			res.Skipped++
			continue
		}

		var x, y, w, h int
		if e.Geometry != nil {
			x, y, w, h = e.Geometry.X, e.Geometry.Y, e.Geometry.Width, e.Geometry.Height
		}
		ax, ay := x, y

		parent := cells[e.ParentID]
		if parent != nil && !opts.AbsoluteGeometry {
			o := origins[e.ParentID]
			x, y = x-o[0], y-o[1]
		}

		cell := g.InsertVertex(parent, e.ID, Label(e, d), x, y, w, h, m.StyleFor(e.Type))
		res.Vertices++
		if _, dup := cells[e.ID]; !dup {
			cells[e.ID] = cell
			origins[e.ID] = [2]int{ax, ay}
		}
	}

	for _, c := range d.Connectors {
		src, dst := cells[c.SourceID], cells[c.TargetID]
		if src == nil || dst == nil {
			if skipped.Contains(c.SourceID) || skipped.Contains(c.TargetID) {
				continue
			}
			sink.Report(diag.Diagnostic{
				Kind:    diag.MissingEndpoint,
				Subject: c.ID,
				Detail:  missingDetail(c, src, dst),
			})
			res.Dropped++
			continue
		}
		g.InsertEdge(nil, c.ID, "", src, dst, m.StyleFor(c.StyleKey()))
		res.Edges++
	}
	return res
}

func missingDetail(c model.Connector, src, dst *mxgraph.Cell) string {
	switch {
	case src == nil && dst == nil:
		return "no vertex for source " + c.SourceID + " or target " + c.TargetID
	case src == nil:
		return "no vertex for source " + c.SourceID
	default:
		return "no vertex for target " + c.TargetID
	}
}
