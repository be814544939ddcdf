package model

import (
	"maps"

	"github.com/matzehuels/xmigraph/pkg/diag"
	"github.com/matzehuels/xmigraph/pkg/xmi"
)

// Placement attribute names with special meaning.
const (
	attrSubject  = "subject"
	attrGeometry = "geometry"

	fieldElements = "elements"
	fieldElement  = "element"
	fieldProject  = "project"
)

// AssembleDiagram resolves the placements of one diagram node.
//
// Each placement whose subject is in elems becomes an Element, each whose
// subject is in conns becomes a Connector, in placement order. Placement
// attributes override the indexed record on conflicting keys (name, type,
// stereotype, documentation). The remaining attributes are kept in Attrs,
// except subject and geometry, which become ID and Geometry.
//
// Unresolvable placements are dropped and reported as
// [diag.UnresolvedSubject]. Element placements with an unparsable
// geometry are kept without one and reported as [diag.MalformedGeometry].
//
// The elements are returned in placement order; see [OrderElements].
func AssembleDiagram(node *xmi.Node, elems ElementIndex, conns ConnectorIndex, sink diag.Sink) Diagram {
	meta := make(map[string]string)
	maps.Copy(meta, node.Child(fieldProperties).AttrMap())
	maps.Copy(meta, node.Child(fieldProject).AttrMap())

	d := Diagram{
		ID:         node.ID(),
		Name:       meta[attrName],
		Meta:       meta,
		Elements:   []Element{},
		Connectors: []Connector{},
	}
	sink = diag.WithDiagram(diag.OrDiscard(sink), d.Name)

	for _, p := range node.Path(fieldElements).All(fieldElement) {
		attrs := p.AttrMap()
		subject := attrs[attrSubject]
		raw, hasGeometry := attrs[attrGeometry]
		delete(attrs, attrSubject)
		delete(attrs, attrGeometry)

		var geom *Geometry
		malformed := false
		if hasGeometry && raw != "" {
			if g, ok := ParseGeometry(raw); ok {
				geom = &g
			} else {
				malformed = true
			}
		}

		if rec, ok := elems[subject]; ok {
			if malformed {
				sink.Report(diag.Diagnostic{
					Kind:    diag.MalformedGeometry,
					Subject: subject,
					Detail:  "unparsable bounding box " + quote(raw),
				})
			}
			overrideRecord(&rec, attrs)
			d.Elements = append(d.Elements, Element{ElementRecord: rec, Geometry: geom, Attrs: nilIfEmpty(attrs)})
			continue
		}

		if rec, ok := conns[subject]; ok {
			overrideConnector(&rec, attrs)
			d.Connectors = append(d.Connectors, Connector{ConnectorRecord: rec, Geometry: geom, Attrs: nilIfEmpty(attrs)})
			continue
		}

		detail := "subject not found in element or connector index"
		if subject == "" {
			detail = "placement has no subject"
		}
		sink.Report(diag.Diagnostic{Kind: diag.UnresolvedSubject, Subject: subject, Detail: detail})
	}
	return d
}

// overrideRecord applies diagram-local attributes that shadow record
// fields and removes them from attrs.
func overrideRecord(rec *ElementRecord, attrs map[string]string) {
	for key, dst := range map[string]*string{
		attrName:          &rec.Name,
		attrType:          &rec.Type,
		attrStereotype:    &rec.Stereotype,
		attrDocumentation: &rec.Documentation,
	} {
		if v, ok := attrs[key]; ok {
			*dst = v
			delete(attrs, key)
		}
	}
}

func overrideConnector(rec *ConnectorRecord, attrs map[string]string) {
	for key, dst := range map[string]*string{
		attrType:       &rec.Type,
		attrStereotype: &rec.Stereotype,
	} {
		if v, ok := attrs[key]; ok {
			*dst = v
			delete(attrs, key)
		}
	}
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

func quote(s string) string { return "\"" + s + "\"" }
