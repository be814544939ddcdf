package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/xmigraph/pkg/model"
)

// DOTOptions configures DOT generation.
type DOTOptions struct {
	// Detailed adds the element type under each label.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT. Elements that contain other
// elements of the diagram become clusters; connectors become edges, with
// lhead/ltail pointing at the cluster when an endpoint is a container.
// Connectors with an endpoint that is not in the diagram are omitted.
func ToDOT(d model.Diagram, opts DOTOptions) string {
	elems := model.OrderElements(d.Elements)

	children := make(map[string][]model.Element)
	present := make(map[string]bool, len(elems))
	for _, e := range elems {
		present[e.ID] = true
	}
	var roots []model.Element
	for _, e := range elems {
		if e.ParentID != "" && e.ParentID != e.ID && present[e.ParentID] {
			children[e.ParentID] = append(children[e.ParentID], e)
			continue
		}
		roots = append(roots, e)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", dotText(d.Name))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	written := make(map[string]bool, len(elems))
	var write func(e model.Element, indent string)
	write = func(e model.Element, indent string) {
		if written[e.ID] {
			return
		}
		written[e.ID] = true

		label := dotText(Label(e, d))
		if opts.Detailed && e.Type != "" {
			label += "\n" + e.Type
		}

		kids := children[e.ID]
		if len(kids) == 0 {
			fmt.Fprintf(&buf, "%s%q [%s];\n", indent, e.ID, strings.Join(nodeAttrs(e, label), ", "))
			return
		}

		fmt.Fprintf(&buf, "%ssubgraph %q {\n", indent, clusterID(e.ID))
		fmt.Fprintf(&buf, "%s  label=%q;\n", indent, label)
		fmt.Fprintf(&buf, "%s  style=\"rounded\";\n", indent)
		fmt.Fprintf(&buf, "%s  %q [shape=point, style=invis, label=\"\"];\n", indent, e.ID)
		for _, k := range kids {
			write(k, indent+"  ")
		}
		fmt.Fprintf(&buf, "%s}\n", indent)
	}
	for _, r := range roots {
		write(r, "  ")
	}
	// Elements on a parent cycle are never reached from a root.
	for _, e := range elems {
		write(e, "  ")
	}

	buf.WriteString("\n")
	for _, c := range d.Connectors {
		if !present[c.SourceID] || !present[c.TargetID] {
			continue
		}
		var attrs []string
		if len(children[c.SourceID]) > 0 {
			attrs = append(attrs, fmt.Sprintf("ltail=%q", clusterID(c.SourceID)))
		}
		if len(children[c.TargetID]) > 0 {
			attrs = append(attrs, fmt.Sprintf("lhead=%q", clusterID(c.TargetID)))
		}
		attrs = append(attrs, edgeAttrs(c.StyleKey())...)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.SourceID, c.TargetID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.SourceID, c.TargetID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func clusterID(id string) string { return "cluster_" + id }

// dotText replaces characters DOT labels cannot carry verbatim.
func dotText(s string) string {
	return strings.NewReplacer("\t", " ", "\r", "").Replace(s)
}

func nodeAttrs(e model.Element, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch shapeKey(e.Type) {
	case "note", "comment":
		attrs = append(attrs, "shape=note", "fillcolor=\"#ffffcc\"")
	case "text":
		attrs = append(attrs, "shape=plaintext", "style=\"\"")
	case "component":
		attrs = append(attrs, "shape=component")
	case "package":
		attrs = append(attrs, "shape=folder")
	case "dataobject", "businessobject":
		attrs = append(attrs, "shape=note", "fillcolor=\"#99ffff\"")
	case "applicationcomponent", "applicationfunction", "applicationservice", "applicationinterface":
		attrs = append(attrs, "fillcolor=\"#99ffff\"")
	case "node", "device", "systemsoftware", "technologyobject", "technologyservice":
		attrs = append(attrs, "shape=box3d", "fillcolor=\"#afffaf\"")
	}
	return attrs
}

// shapeKey reduces "uml:Note" or "ArchiMate_DataObject" to "note" or
// "dataobject".
func shapeKey(typ string) string {
	typ = strings.TrimPrefix(typ, "uml:")
	typ = strings.TrimPrefix(typ, "ArchiMate_")
	return strings.ToLower(typ)
}

func edgeAttrs(kind string) []string {
	switch strings.ToLower(kind) {
	case "association", "notelink":
		return []string{"arrowhead=none"}
	case "dependency", "flow", "access":
		return []string{"style=dashed", "arrowhead=vee"}
	case "realization", "realisation":
		return []string{"style=dashed", "arrowhead=empty"}
	case "generalization":
		return []string{"arrowhead=empty"}
	case "assignment":
		return []string{"arrowtail=dot", "dir=both"}
	case "serving":
		return []string{"arrowhead=vee"}
	case "composition":
		return []string{"arrowtail=diamond", "dir=both", "arrowhead=none"}
	case "aggregation":
		return []string{"arrowtail=odiamond", "dir=both", "arrowhead=none"}
	}
	return nil
}

// RenderSVG lays out a DOT graph with Graphviz and returns the SVG.
// Render it to PDF or PNG with [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with one
// whose viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
