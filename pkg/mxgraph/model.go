package mxgraph

import (
	"slices"
	"strconv"
)

// Geometry is a cell's bounds relative to its parent.
type Geometry struct {
	X, Y, Width, Height int
	Relative            bool // Edge geometry, positioned relative to the terminals
}

// Cell is a node of the model tree: the root, a layer, a vertex or an edge.
type Cell struct {
	ID       string
	Value    string
	Style    string
	Vertex   bool
	Edge     bool
	Parent   *Cell
	Source   *Cell
	Target   *Cell
	Geometry *Geometry

	children []*Cell
}

// Children returns the cell's children in insertion order.
func (c *Cell) Children() []*Cell { return slices.Clone(c.children) }

// Depth returns the number of ancestors of c.
func (c *Cell) Depth() int {
	n := 0
	for p := c.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// ChangeKind classifies a model change.
type ChangeKind int

const (
	CellAdded ChangeKind = iota
	TerminalSet
)

// Change is one mutation recorded in an update batch.
type Change struct {
	Kind ChangeKind
	Cell *Cell
}

// Model is an mxGraph model. It is not safe for concurrent use.
type Model struct {
	root          *Cell
	defaultParent *Cell
	cells         map[string]*Cell
	nextID        int
	updateLevel   int
	pending       []Change
	listeners     []func([]Change)
}

// New returns a model with a root cell "0" and a default layer "1".
func New() *Model {
	root := &Cell{ID: "0"}
	layer := &Cell{ID: "1", Parent: root}
	root.children = []*Cell{layer}
	return &Model{
		root:          root,
		defaultParent: layer,
		cells:         map[string]*Cell{"0": root, "1": layer},
		nextID:        2,
	}
}

// Root returns the root cell.
func (m *Model) Root() *Cell { return m.root }

// DefaultParent returns the default layer that receives cells inserted
// with a nil parent.
func (m *Model) DefaultParent() *Cell { return m.defaultParent }

// Cell returns the cell with the given id.
func (m *Model) Cell(id string) (*Cell, bool) {
	c, ok := m.cells[id]
	return c, ok
}

// Len returns the number of cells, including the root and default layer.
func (m *Model) Len() int { return len(m.cells) }

// Cells returns every cell in depth-first order starting at the root.
func (m *Model) Cells() []*Cell {
	out := make([]*Cell, 0, len(m.cells))
	var walk func(*Cell)
	walk = func(c *Cell) {
		out = append(out, c)
		for _, ch := range c.children {
			walk(ch)
		}
	}
	walk(m.root)
	return out
}

// OnChange registers fn to receive the changes of each completed batch.
func (m *Model) OnChange(fn func([]Change)) {
	m.listeners = append(m.listeners, fn)
}

// BeginUpdate opens an update batch. Batches nest.
func (m *Model) BeginUpdate() { m.updateLevel++ }

// EndUpdate closes the innermost batch. Closing the outermost batch
// notifies listeners. Calls without a matching BeginUpdate are ignored.
func (m *Model) EndUpdate() {
	if m.updateLevel == 0 {
		return
	}
	m.updateLevel--
	if m.updateLevel > 0 || len(m.pending) == 0 {
		return
	}
	changes := m.pending
	m.pending = nil
	for _, fn := range m.listeners {
		fn(changes)
	}
}

// Updating reports whether a batch is open.
func (m *Model) Updating() bool { return m.updateLevel > 0 }

// InsertVertex adds a vertex under parent (the default layer if nil).
// An empty or already used id is replaced by a generated one.
func (m *Model) InsertVertex(parent *Cell, id, value string, x, y, width, height int, style string) *Cell {
	c := &Cell{
		ID:       id,
		Value:    value,
		Style:    style,
		Vertex:   true,
		Geometry: &Geometry{X: x, Y: y, Width: width, Height: height},
	}
	m.add(parent, c)
	return c
}

// InsertEdge adds an edge from src to dst under parent (the default layer
// if nil). Terminals may be nil for dangling edges.
func (m *Model) InsertEdge(parent *Cell, id, value string, src, dst *Cell, style string) *Cell {
	c := &Cell{
		ID:       id,
		Value:    value,
		Style:    style,
		Edge:     true,
		Source:   src,
		Target:   dst,
		Geometry: &Geometry{Relative: true},
	}
	m.BeginUpdate()
	defer m.EndUpdate()
	m.add(parent, c)
	if src != nil || dst != nil {
		m.record(Change{Kind: TerminalSet, Cell: c})
	}
	return c
}

func (m *Model) add(parent, c *Cell) {
	m.BeginUpdate()
	defer m.EndUpdate()

	if parent == nil {
		parent = m.defaultParent
	}
	for c.ID == "" || m.cells[c.ID] != nil {
		c.ID = m.createID()
	}
	c.Parent = parent
	parent.children = append(parent.children, c)
	m.cells[c.ID] = c
	m.record(Change{Kind: CellAdded, Cell: c})
}

func (m *Model) createID() string {
	id := strconv.Itoa(m.nextID)
	m.nextID++
	return id
}

func (m *Model) record(ch Change) {
	m.pending = append(m.pending, ch)
}
