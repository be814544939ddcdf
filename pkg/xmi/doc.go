// Package xmi reads UML modeling-tool exports into a tagged tree.
//
// An XMI export mixes a recursive containment tree (uml:Model and its
// packagedElement children) with flat, vendor-specific extension lists
// (xmi:Extension/elements, connectors, diagrams). Rather than exposing
// nested arrays of attribute maps, the reader produces a single [Node]
// type: a qualified tag name, an attribute map and ordered children.
//
// Qualified names keep their source prefix ("xmi:id", "uml:Model"), so
// lookups match what appears in the file regardless of the namespace URI
// the exporter declared.
//
// All accessor methods are nil-safe. Missing substructures read as empty,
// which lets callers chain lookups without checking every level:
//
//	doc, err := xmi.Parse(f)
//	diagrams := doc.Path("xmi:Extension", "diagrams").All("diagram")
package xmi
