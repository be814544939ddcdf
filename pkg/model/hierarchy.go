package model

import "github.com/matzehuels/xmigraph/pkg/xmi"

// ContainmentField is the child element name that carries nested model
// elements in the containment tree.
const ContainmentField = "packagedElement"

// ResolveHierarchy walks the containment tree under root depth-first and
// records, for every node with an id whose direct container also has an
// id, index[id] = containerID.
//
// Nodes without an id are still traversed, but their children are
// recorded as roots (absent from the map), since their direct container
// has no id to reference. The root itself is never recorded. A nil root
// yields an empty map.
func ResolveHierarchy(root *xmi.Node) Hierarchy {
	h := make(Hierarchy)
	var walk func(n *xmi.Node, parentID string)
	walk = func(n *xmi.Node, parentID string) {
		id := n.ID()
		if id != "" && parentID != "" {
			h[id] = parentID
		}
		for _, child := range n.All(ContainmentField) {
			walk(child, id)
		}
	}
	if root != nil {
		walk(root, "")
	}
	return h
}
