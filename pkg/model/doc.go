// Package model reconstructs per-diagram element and connector records
// from a parsed XMI export.
//
// # Sources
//
// An export carries three independently indexed substructures:
//
//   - The containment tree (uml:Model/packagedElement...), which defines
//     ownership. [ResolveHierarchy] flattens it to an id → parent id map.
//   - The flat element and connector lists under xmi:Extension. Each
//     connector embeds a stub (type, name) for both endpoints.
//     [ScanStereotypes] and [BuildReferenceIndex] join them into an
//     [ElementIndex] and a [ConnectorIndex].
//   - Per-diagram placements (xmi:Extension/diagrams/diagram/elements).
//     [AssembleDiagram] resolves each placement's subject against the two
//     indices and attaches parsed geometry.
//
// [OrderElements] then sorts a diagram's elements so that every container
// precedes its contents, which is what graph construction needs to nest
// vertices under already-created parents.
//
// [Extract] runs the whole sequence for a document.
//
// # Diagnostics
//
// Nothing in this package fails on partial data. Unresolvable placements
// and malformed bounding boxes are reported to a [diag.Sink] and skipped.
//
// [diag.Sink]: github.com/matzehuels/xmigraph/pkg/diag.Sink
package model
