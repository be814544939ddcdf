package model

import mapset "github.com/deckarep/golang-set/v2"

// OrderElements returns the elements reordered so that every element
// whose parent is present in the slice comes after that parent.
//
// Elements are grouped by parent id. Roots (no parent, or a parent that
// is not in the slice) are emitted in input order, each followed
// depth-first by its descendants, again in input order. This holds for
// any nesting depth. If the parent relation contains a cycle, the
// elements on it are unreachable from any root and are appended at the
// end in input order.
//
// When an id occurs more than once, children follow its first occurrence.
// The input slice is not modified.
func OrderElements(elems []Element) []Element {
	present := mapset.NewThreadUnsafeSetWithSize[string](len(elems))
	for _, e := range elems {
		present.Add(e.ID)
	}

	children := make(map[string][]int, len(elems))
	var roots []int
	for i, e := range elems {
		if e.ParentID == "" || e.ParentID == e.ID || !present.Contains(e.ParentID) {
			roots = append(roots, i)
			continue
		}
		children[e.ParentID] = append(children[e.ParentID], i)
	}

	out := make([]Element, 0, len(elems))
	visited := mapset.NewThreadUnsafeSetWithSize[int](len(elems))
	expanded := mapset.NewThreadUnsafeSet[string]()

	// Iterative pre-order walk; the stack holds indices still to emit.
	var stack []int
	emit := func(start int) {
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !visited.Add(i) {
				continue
			}
			out = append(out, elems[i])

			id := elems[i].ID
			if !expanded.Add(id) {
				continue
			}
			kids := children[id]
			for k := len(kids) - 1; k >= 0; k-- {
				stack = append(stack, kids[k])
			}
		}
	}

	for _, r := range roots {
		emit(r)
	}
	for i := range elems {
		if !visited.Contains(i) {
			visited.Add(i)
			out = append(out, elems[i])
		}
	}
	return out
}

// CompareElements is a pairwise comparator that orders a direct parent
// before its child and parentless elements before parented ones. All
// other pairs compare equal.
//
// Sorting with it (stably) only guarantees the order of pairs that are
// compared directly, so for containment deeper than two levels the result
// depends on the sort algorithm. Use [OrderElements] to build graphs.
func CompareElements(a, b Element) int {
	switch {
	case a.ID == b.ParentID:
		return -1
	case b.ID == a.ParentID:
		return 1
	case a.ParentID == "" && b.ParentID != "":
		return -1
	case b.ParentID == "" && a.ParentID != "":
		return 1
	default:
		return 0
	}
}
