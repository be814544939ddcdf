// Package mxgraph is a minimal in-memory mxGraph model with an XML codec.
//
// It covers the subset draw.io style editors need to open a diagram:
// a root cell "0", a default layer "1", vertices with geometry nested
// under layers or other vertices, and edges between vertices.
//
//	m := mxgraph.New()
//	m.BeginUpdate()
//	a := m.InsertVertex(nil, "a", "API", 10, 10, 120, 60, "rounded=1;")
//	b := m.InsertVertex(nil, "b", "DB", 200, 10, 80, 60, "")
//	m.InsertEdge(nil, "e1", "", a, b, "endArrow=open;")
//	m.EndUpdate()
//	xml, err := m.Encode()
//
// Mutations are grouped in update batches. Listeners registered with
// [Model.OnChange] receive the changes of a batch once the outermost
// EndUpdate returns. Insertions outside an explicit batch form their own
// batch. Encoding is refused while a batch is open.
package mxgraph
