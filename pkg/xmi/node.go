package xmi

// Well-known attribute names used by XMI exports.
const (
	AttrID    = "xmi:id"
	AttrIDRef = "xmi:idref"
	AttrType  = "xmi:type"
)

// Node is one element of a parsed document.
//
// The zero value is an empty element with no name. A nil *Node is valid
// for every method and behaves like an element with no attributes and no
// children.
type Node struct {
	Name     string            // Qualified tag name, e.g. "uml:Model"
	Attrs    map[string]string // Attributes keyed by qualified name
	Children []*Node           // Child elements in document order
	Text     string            // Concatenated character data, trimmed
}

// Lookup returns the attribute value and whether it was present.
func (n *Node) Lookup(key string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// Attr returns the attribute value, or "" if absent.
func (n *Node) Attr(key string) string {
	v, _ := n.Lookup(key)
	return v
}

// ID returns the node's xmi:id attribute.
func (n *Node) ID() string { return n.Attr(AttrID) }

// Ref returns the node's xmi:idref attribute.
func (n *Node) Ref() string { return n.Attr(AttrIDRef) }

// Child returns the first child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child with the given name in document order.
// It returns nil when there are none.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of first-child lookups and returns the final node,
// or nil if any step is missing.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// AttrMap returns a copy of the attributes. The result is never nil.
func (n *Node) AttrMap() map[string]string {
	out := make(map[string]string)
	if n == nil {
		return out
	}
	for k, v := range n.Attrs {
		out[k] = v
	}
	return out
}

// Walk calls fn for n and every descendant in depth-first pre-order.
// Returning false from fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
