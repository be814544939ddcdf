package model

import (
	"testing"

	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/xmi"
)

func placement(attrs map[string]string) *xmi.Node { return node("element", attrs) }

func diagramNode(name string, placements ...*xmi.Node) *xmi.Node {
	return node("diagram", map[string]string{xmi.AttrID: "D-" + name},
		node("properties", map[string]string{"name": name, "type": "Logical"}),
		node("project", map[string]string{"author": "jdoe", "type": "override"}),
		node("elements", nil, placements...),
	)
}

func TestAssembleDiagram(t *testing.T) {
	elems := ElementIndex{
		"a": {ID: "a", Type: "Component", Name: "A"},
		"b": {ID: "b", ParentID: "a", Type: "Class", Name: "B"},
	}
	conns := ConnectorIndex{
		"c": {ID: "c", SourceID: "a", TargetID: "b", Kind: "serving"},
	}
	n := diagramNode("Main",
		placement(map[string]string{"subject": "b", "geometry": "Left=10;Top=10;Right=20;Bottom=20;", "seqno": "1"}),
		placement(map[string]string{"subject": "a", "geometry": "Left=0;Top=0;Right=100;Bottom=100;", "name": "Renamed"}),
		placement(map[string]string{"subject": "c", "geometry": "SX=0;EDGE=1;", "style": "Mode=3;"}),
	)

	var c diag.Collector
	d := AssembleDiagram(n, elems, conns, &c)

	if d.Name != "Main" || d.ID != "D-Main" {
		t.Errorf("name, id = %q, %q", d.Name, d.ID)
	}
	if d.Meta["author"] != "jdoe" || d.Meta["type"] != "override" {
		t.Errorf("meta = %v, project block should win", d.Meta)
	}
	if len(d.Elements) != 2 || len(d.Connectors) != 1 {
		t.Fatalf("elements, connectors = %d, %d; want 2, 1", len(d.Elements), len(d.Connectors))
	}

	b := d.Elements[0]
	if b.ID != "b" || b.ParentID != "a" || b.Geometry == nil || *b.Geometry != (Geometry{10, 10, 10, 10}) {
		t.Errorf("b = %+v geometry %v", b, b.Geometry)
	}
	if b.Attrs["seqno"] != "1" {
		t.Errorf("b attrs = %v", b.Attrs)
	}
	if _, ok := b.Attrs["subject"]; ok {
		t.Error("subject should not be kept in attrs")
	}

	a := d.Elements[1]
	if a.Name != "Renamed" {
		t.Errorf("placement name should override record, got %q", a.Name)
	}
	if _, ok := a.Attrs["name"]; ok {
		t.Error("overridden name should not be kept in attrs")
	}
	if elems["a"].Name != "A" {
		t.Error("index was mutated")
	}

	conn := d.Connectors[0]
	if conn.Kind != "serving" || conn.Geometry != nil || conn.Attrs["style"] != "Mode=3;" {
		t.Errorf("connector = %+v", conn)
	}
	if c.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", c.All())
	}
}

func TestAssembleDiagramUnresolvedSubject(t *testing.T) {
	elems := ElementIndex{
		"a": {ID: "a", Type: "Component"},
		"b": {ID: "b", Type: "Component"},
	}
	withGhost := diagramNode("D",
		placement(map[string]string{"subject": "a"}),
		placement(map[string]string{"subject": "ghost", "geometry": "Left=0;Top=0;Right=1;Bottom=1"}),
		placement(map[string]string{"seqno": "9"}),
		placement(map[string]string{"subject": "b"}),
	)
	without := diagramNode("D",
		placement(map[string]string{"subject": "a"}),
		placement(map[string]string{"subject": "b"}),
	)

	var c diag.Collector
	got := AssembleDiagram(withGhost, elems, nil, &c)
	want := AssembleDiagram(without, elems, nil, nil)

	if len(got.Elements) != len(want.Elements) {
		t.Fatalf("elements = %d, want %d", len(got.Elements), len(want.Elements))
	}
	for i := range want.Elements {
		if got.Elements[i].ElementRecord != want.Elements[i].ElementRecord {
			t.Errorf("element %d = %+v, want %+v", i, got.Elements[i], want.Elements[i])
		}
	}
	if n := c.Count(diag.UnresolvedSubject); n != 2 {
		t.Errorf("unresolved diagnostics = %d, want 2", n)
	}
	for _, d := range c.All() {
		if d.Diagram != "D" {
			t.Errorf("diagnostic not stamped with diagram: %+v", d)
		}
	}
}

func TestAssembleDiagramMalformedGeometry(t *testing.T) {
	elems := ElementIndex{"a": {ID: "a", Type: "Note"}}
	n := diagramNode("D",
		placement(map[string]string{"subject": "a", "geometry": "Left=x;Top=0;Right=1;Bottom=1"}),
		placement(map[string]string{"subject": "a", "geometry": ""}),
	)

	var c diag.Collector
	d := AssembleDiagram(n, elems, nil, &c)

	if len(d.Elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(d.Elements))
	}
	for _, e := range d.Elements {
		if e.Geometry != nil {
			t.Errorf("geometry = %v, want none", e.Geometry)
		}
	}
	if n := c.Count(diag.MalformedGeometry); n != 1 {
		t.Errorf("malformed diagnostics = %d, want 1 (empty geometry is not malformed)", n)
	}
}

func TestAssembleDiagramEmpty(t *testing.T) {
	d := AssembleDiagram(node("diagram", nil), nil, nil, nil)
	if d.Elements == nil || d.Connectors == nil {
		t.Error("element and connector slices should be non-nil")
	}
	if d.Name != "" || len(d.Meta) != 0 {
		t.Errorf("d = %+v", d)
	}
}
