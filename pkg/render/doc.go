// Package render turns normalized diagrams into graph documents.
//
// # mxGraph
//
// [BuildGraph] is the main entry point. It feeds a [model.Diagram] into an
// [mxgraph.Model] inside a single update batch and returns the serialized
// <mxGraphModel> XML, ready to be stored as a LeanIX visualizer bookmark or
// opened in draw.io:
//
//	mapper := style.NewMapper(style.Default(), sink)
//	xml, err := render.BuildGraph(diagram, mapper, sink)
//
// Vertices are created in container-first order (see
// [model.OrderElements]) so that every vertex can be nested under its
// parent's cell. Edges follow once all vertices exist. Edges whose source
// or target has no cell are dropped and reported as
// [diag.MissingEndpoint].
//
// [Build] exposes the same process with [Options] and returns the model
// along with counts, for callers that need more than the XML.
//
// # Labels
//
// Vertices are labeled with the element name, which the model already
// resolves to the documentation for notes. Text elements carry the
// diagram's metadata block instead (see [Label]).
//
// # Preview
//
// [ToDOT] renders a diagram as Graphviz DOT, drawing containers as
// clusters. [RenderSVG] lays it out in-process using
// [github.com/goccy/go-graphviz]; [ToPDF] and [ToPNG] convert the SVG with
// rsvg-convert.
//
// [model.Diagram]: github.com/matzehuels/xmigraph/pkg/model.Diagram
// [model.OrderElements]: github.com/matzehuels/xmigraph/pkg/model.OrderElements
// [mxgraph.Model]: github.com/matzehuels/xmigraph/pkg/mxgraph.Model
// [diag.MissingEndpoint]: github.com/matzehuels/xmigraph/pkg/diag.MissingEndpoint
package render
