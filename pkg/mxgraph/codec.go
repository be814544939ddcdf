package mxgraph

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/xmigraph/pkg/errors"
)

type xmlModel struct {
	XMLName xml.Name  `xml:"mxGraphModel"`
	Cells   []xmlCell `xml:"root>mxCell"`
}

type xmlCell struct {
	ID       string       `xml:"id,attr"`
	Value    *string      `xml:"value,attr"`
	Style    string       `xml:"style,attr,omitempty"`
	Vertex   string       `xml:"vertex,attr,omitempty"`
	Edge     string       `xml:"edge,attr,omitempty"`
	Parent   string       `xml:"parent,attr,omitempty"`
	Source   string       `xml:"source,attr,omitempty"`
	Target   string       `xml:"target,attr,omitempty"`
	Geometry *xmlGeometry `xml:"mxGeometry"`
}

type xmlGeometry struct {
	X        string `xml:"x,attr,omitempty"`
	Y        string `xml:"y,attr,omitempty"`
	Width    string `xml:"width,attr,omitempty"`
	Height   string `xml:"height,attr,omitempty"`
	Relative string `xml:"relative,attr,omitempty"`
	As       string `xml:"as,attr"`
}

// Encode serializes the model as a compact <mxGraphModel> document. Cells
// appear in depth-first order, so every parent precedes its children.
// Zero coordinates and sizes are omitted.
func (m *Model) Encode() (string, error) {
	return m.encode("")
}

// EncodeIndent is like Encode but indents nested elements.
func (m *Model) EncodeIndent() (string, error) {
	return m.encode("  ")
}

func (m *Model) encode(indent string) (string, error) {
	if m.Updating() {
		return "", errors.New(errors.ErrCodeInternal, "cannot encode graph model during an update")
	}

	doc := xmlModel{}
	for _, c := range m.Cells() {
		doc.Cells = append(doc.Cells, toXML(c))
	}

	var b strings.Builder
	enc := xml.NewEncoder(&b)
	enc.Indent("", indent)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode graph model: %w", err)
	}
	return b.String(), nil
}

func toXML(c *Cell) xmlCell {
	x := xmlCell{ID: c.ID, Style: c.Style}
	if c.Parent != nil {
		x.Parent = c.Parent.ID
	}
	if c.Vertex || c.Edge {
		v := c.Value
		x.Value = &v
	}
	if c.Vertex {
		x.Vertex = "1"
	}
	if c.Edge {
		x.Edge = "1"
	}
	if c.Source != nil {
		x.Source = c.Source.ID
	}
	if c.Target != nil {
		x.Target = c.Target.ID
	}
	if g := c.Geometry; g != nil {
		x.Geometry = &xmlGeometry{
			X:      itoaNonZero(g.X),
			Y:      itoaNonZero(g.Y),
			Width:  itoaNonZero(g.Width),
			Height: itoaNonZero(g.Height),
			As:     "geometry",
		}
		if g.Relative {
			x.Geometry.Relative = "1"
		}
	}
	return x
}

func itoaNonZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Decode parses an <mxGraphModel> document produced by Encode or by an
// mxGraph based editor. Cells must appear after their parent. Fractional coordinates are truncated.
func Decode(data string) (*Model, error) {
	var doc xmlModel
	if err := xml.Unmarshal([]byte(data), &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph model")
	}

	m := &Model{cells: make(map[string]*Cell, len(doc.Cells))}
	for i, xc := range doc.Cells {
		if xc.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "cell %d has no id", i)
		}
		if _, dup := m.cells[xc.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate cell id %q", xc.ID)
		}
		c := &Cell{ID: xc.ID, Style: xc.Style, Vertex: xc.Vertex == "1", Edge: xc.Edge == "1"}
		if xc.Value != nil {
			c.Value = *xc.Value
		}

		if xc.Parent == "" {
			if m.root != nil {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "multiple root cells: %q and %q", m.root.ID, xc.ID)
			}
			m.root = c
		} else {
			p, ok := m.cells[xc.Parent]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidFormat, "cell %q references unknown parent %q", xc.ID, xc.Parent)
			}
			c.Parent = p
			p.children = append(p.children, c)
			if p == m.root && m.defaultParent == nil {
				m.defaultParent = c
			}
		}

		if xc.Geometry != nil {
			c.Geometry = fromXMLGeometry(xc.Geometry)
		}
		m.cells[c.ID] = c
	}

	// Terminals may be declared after the edges that reference them.
	for _, xc := range doc.Cells {
		c := m.cells[xc.ID]
		var err error
		if c.Source, err = m.terminal(xc.ID, xc.Source); err != nil {
			return nil, err
		}
		if c.Target, err = m.terminal(xc.ID, xc.Target); err != nil {
			return nil, err
		}
	}

	if m.root == nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "graph model has no root cell")
	}
	if m.defaultParent == nil {
		m.defaultParent = &Cell{ID: "1", Parent: m.root}
		m.root.children = append(m.root.children, m.defaultParent)
		m.cells["1"] = m.defaultParent
	}
	m.nextID = len(m.cells)
	return m, nil
}

func (m *Model) terminal(cellID, ref string) (*Cell, error) {
	if ref == "" {
		return nil, nil
	}
	t, ok := m.cells[ref]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %q references unknown terminal %q", cellID, ref)
	}
	return t, nil
}

func fromXMLGeometry(x *xmlGeometry) *Geometry {
	return &Geometry{
		X:        atoiLenient(x.X),
		Y:        atoiLenient(x.Y),
		Width:    atoiLenient(x.Width),
		Height:   atoiLenient(x.Height),
		Relative: x.Relative == "1",
	}
}

func atoiLenient(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
