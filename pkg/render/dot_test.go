package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/xmigraph/pkg/model"
)

func TestToDOT(t *testing.T) {
	dot := ToDOT(nestedDiagram(), DOTOptions{})

	for _, want := range []string{
		"compound=true;",
		`label="Landscape";`,
		`subgraph "cluster_shop" {`,
		`subgraph "cluster_checkout" {`,
		`"cart" [label="Cart"];`,
		`"shop" -> "checkout" [ltail="cluster_shop", lhead="cluster_checkout", arrowhead=vee];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") {
		t.Error("connector to an element outside the diagram should be omitted")
	}
	if strings.Index(dot, "cluster_shop") > strings.Index(dot, "cluster_checkout") {
		t.Error("outer cluster should open first")
	}
}

func TestToDOTShapes(t *testing.T) {
	d := model.Diagram{
		Meta: map[string]string{"name": "D"},
		Elements: []model.Element{
			elem("n", "", "Note", "a\tb", nil),
			elem("x", "", "ArchiMate_DataObject", "Order", nil),
			elem("t", "", "Text", "", nil),
		},
	}
	dot := ToDOT(d, DOTOptions{Detailed: true})
	for _, want := range []string{
		`"n" [label="a b\nNote", shape=note`,
		`"x" [label="Order\nArchiMate_DataObject", shape=note, fillcolor="#99ffff"]`,
		`"t" [label="Name: D\nText", shape=plaintext`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTCycle(t *testing.T) {
	d := model.Diagram{Elements: []model.Element{
		elem("a", "b", "Class", "A", nil),
		elem("b", "a", "Class", "B", nil),
	}}
	dot := ToDOT(d, DOTOptions{})
	if !strings.Contains(dot, `"a" [`) || !strings.Contains(dot, `"b" [`) {
		t.Errorf("elements on a cycle should still be drawn:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz runtime initialization is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(nestedDiagram(), DOTOptions{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "Cart") {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}

	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("invalid DOT should fail")
	}
}
