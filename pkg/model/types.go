package model

import "slices"

// Hierarchy maps an element id to the id of the element that directly
// contains it. Roots are absent.
type Hierarchy map[string]string

// Parent returns the parent id of id, or "" for roots and unknown ids.
func (h Hierarchy) Parent(id string) string { return h[id] }

// Annotation holds per-element metadata declared in the flat element
// list, separate from the connector stubs.
type Annotation struct {
	Type          string // Declared xmi:type, e.g. "uml:Class"
	Name          string // Declared name
	Stereotype    string // Domain type override, e.g. "ArchiMate_ApplicationComponent"
	Documentation string // Free-text documentation
}

// ElementRecord is the resolved semantic record of a model element.
//
// Type is the stereotype when one is declared, otherwise the raw UML
// type. Name is the documentation when present, otherwise the element
// name. Empty strings stand for absent values.
type ElementRecord struct {
	ID            string `json:"id"`
	ParentID      string `json:"parentId,omitempty"`
	Type          string `json:"type,omitempty"`
	Name          string `json:"name,omitempty"`
	Stereotype    string `json:"stereotype,omitempty"`
	Documentation string `json:"documentation,omitempty"`
}

// ConnectorRecord is the resolved record of a model connector.
//
// Kind is the normalized classification from the connector's extended
// properties (see [NormalizeKind]). Type and Stereotype are the declared
// UML type and stereotype, used as style fallbacks when Kind is empty.
type ConnectorRecord struct {
	ID         string `json:"id"`
	SourceID   string `json:"sourceId,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	Kind       string `json:"kind"`
	Type       string `json:"type,omitempty"`
	Stereotype string `json:"stereotype,omitempty"`
}

// StyleKey returns the key used for style lookup: Kind, then Stereotype,
// then Type.
func (c ConnectorRecord) StyleKey() string {
	switch {
	case c.Kind != "":
		return c.Kind
	case c.Stereotype != "":
		return c.Stereotype
	default:
		return c.Type
	}
}

// ElementIndex maps element ids to their resolved records.
type ElementIndex map[string]ElementRecord

// ConnectorIndex maps connector ids to their resolved records.
type ConnectorIndex map[string]ConnectorRecord

// Element is an ElementRecord merged with one diagram placement.
type Element struct {
	ElementRecord
	Geometry *Geometry        `json:"geometry,omitempty"`
	Attrs    map[string]string `json:"attributes,omitempty"` // Remaining placement attributes
}

// Connector is a ConnectorRecord merged with one diagram placement.
type Connector struct {
	ConnectorRecord
	Geometry *Geometry        `json:"geometry,omitempty"`
	Attrs    map[string]string `json:"attributes,omitempty"`
}

// Diagram is the normalized model of one diagram.
//
// Meta holds the diagram's properties block merged with its project
// block (project wins on conflicting keys). Elements are ordered so that
// a container precedes its contents.
type Diagram struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Meta       map[string]string `json:"meta,omitempty"`
	Elements   []Element         `json:"elements"`
	Connectors []Connector       `json:"connectors"`
}

// Element returns the first element with the given id.
func (d Diagram) Element(id string) (Element, bool) {
	i := slices.IndexFunc(d.Elements, func(e Element) bool { return e.ID == id })
	if i < 0 {
		return Element{}, false
	}
	return d.Elements[i], true
}

// Find returns the first diagram with the given name.
func Find(diagrams []Diagram, name string) (Diagram, bool) {
	i := slices.IndexFunc(diagrams, func(d Diagram) bool { return d.Name == name })
	if i < 0 {
		return Diagram{}, false
	}
	return diagrams[i], true
}

// Names returns the diagram names in order.
func Names(diagrams []Diagram) []string {
	names := make([]string, len(diagrams))
	for i, d := range diagrams {
		names[i] = d.Name
	}
	return names
}
