package model

import (
	"strings"
	"unicode"

	"github.com/matzehuels/xmigraph/pkg/xmi"
)

// Field names inside connector and element entries of the flat lists.
const (
	fieldSource             = "source"
	fieldTarget             = "target"
	fieldModel              = "model"
	fieldProperties         = "properties"
	fieldExtendedProperties = "extendedProperties"

	attrConditional   = "conditional"
	attrStereotype    = "stereotype"
	attrDocumentation = "documentation"
	attrEAType        = "ea_type"
	attrType          = "type"
	attrName          = "name"
)

// ScanStereotypes collects the declared stereotype and documentation of
// every entry in the flat element list, keyed by the entry's xmi:idref.
// Entries without an idref are skipped. Empty attribute values count as
// absent.
func ScanStereotypes(elements []*xmi.Node) map[string]Annotation {
	notes := make(map[string]Annotation, len(elements))
	for _, el := range elements {
		id := el.Ref()
		if id == "" {
			continue
		}
		props := el.Child(fieldProperties)
		notes[id] = Annotation{
			Type:          el.Attr(xmi.AttrType),
			Name:          el.Attr(attrName),
			Stereotype:    props.Attr(attrStereotype),
			Documentation: props.Attr(attrDocumentation),
		}
	}
	return notes
}

// NormalizeKind reduces a connector's free-text classification to the
// characters [A-Za-z0-9_]. Whitespace, line breaks and punctuation are all
// removed, so "  condition: (x>0)\r\n" becomes "conditionx0".
func NormalizeKind(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, s)
}

// BuildReferenceIndex walks the flat connector list and indexes every
// connector and both of its endpoints.
//
// Each endpoint becomes an ElementRecord whose parent comes from h, whose
// type is the annotated stereotype if any (else the endpoint stub's type)
// and whose name is the annotated documentation if any (else the stub's
// name). An element referenced by several connectors derives the same
// record each time, so repeated upserts are harmless.
//
// Connectors without an idref are skipped, as are endpoints without one.
func BuildReferenceIndex(connectors []*xmi.Node, notes map[string]Annotation, h Hierarchy) (ConnectorIndex, ElementIndex) {
	conns := make(ConnectorIndex, len(connectors))
	elems := make(ElementIndex, 2*len(connectors))

	for _, c := range connectors {
		id := c.Ref()
		if id == "" {
			continue
		}
		src, dst := c.Child(fieldSource), c.Child(fieldTarget)
		props := c.Child(fieldProperties)

		conns[id] = ConnectorRecord{
			ID:         id,
			SourceID:   src.Ref(),
			TargetID:   dst.Ref(),
			Kind:       NormalizeKind(c.Child(fieldExtendedProperties).Attr(attrConditional)),
			Type:       props.Attr(attrEAType),
			Stereotype: props.Attr(attrStereotype),
		}

		for _, end := range [...]*xmi.Node{src, dst} {
			if rec, ok := endpointRecord(end, notes, h); ok {
				elems[rec.ID] = rec
			}
		}
	}
	return conns, elems
}

func endpointRecord(end *xmi.Node, notes map[string]Annotation, h Hierarchy) (ElementRecord, bool) {
	id := end.Ref()
	if id == "" {
		return ElementRecord{}, false
	}
	stub := end.Child(fieldModel)
	note := notes[id]
	return ElementRecord{
		ID:            id,
		ParentID:      h.Parent(id),
		Type:          firstNonEmpty(note.Stereotype, stub.Attr(attrType)),
		Name:          firstNonEmpty(note.Documentation, stub.Attr(attrName)),
		Stereotype:    note.Stereotype,
		Documentation: note.Documentation,
	}, true
}

// AddUnconnected indexes annotated elements that no connector references,
// so that their placements resolve too. Existing records are kept.
func (idx ElementIndex) AddUnconnected(notes map[string]Annotation, h Hierarchy) {
	for id, note := range notes {
		if _, ok := idx[id]; ok {
			continue
		}
		idx[id] = ElementRecord{
			ID:            id,
			ParentID:      h.Parent(id),
			Type:          firstNonEmpty(note.Stereotype, strings.TrimPrefix(note.Type, "uml:")),
			Name:          firstNonEmpty(note.Documentation, note.Name),
			Stereotype:    note.Stereotype,
			Documentation: note.Documentation,
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
