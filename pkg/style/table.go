package style

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"strings"
)

// Table is an immutable mapping from type or stereotype to style string.
// Lookups try the exact key first, then a case-insensitive match.
// The zero Table is empty and usable.
type Table struct {
	entries map[string]string
	folded  map[string]string
}

// NewTable builds a table from entries. The map is copied.
func NewTable(entries map[string]string) Table {
	t := Table{
		entries: maps.Clone(entries),
		folded:  make(map[string]string, len(entries)),
	}
	if t.entries == nil {
		t.entries = map[string]string{}
	}
	// Iterate in key order so the folded winner is deterministic.
	for _, k := range slices.Sorted(maps.Keys(t.entries)) {
		f := strings.ToLower(k)
		if _, ok := t.folded[f]; !ok {
			t.folded[f] = t.entries[k]
		}
	}
	return t
}

// Lookup returns the style for typ and whether the table knows it.
func (t Table) Lookup(typ string) (string, bool) {
	if s, ok := t.entries[typ]; ok {
		return s, true
	}
	s, ok := t.folded[strings.ToLower(typ)]
	return s, ok
}

// With returns a new table with overrides applied on top of t.
func (t Table) With(overrides map[string]string) Table {
	merged := maps.Clone(t.entries)
	if merged == nil {
		merged = make(map[string]string, len(overrides))
	}
	maps.Copy(merged, overrides)
	return NewTable(merged)
}

// Len returns the number of entries.
func (t Table) Len() int { return len(t.entries) }

// Keys returns the entry keys in sorted order.
func (t Table) Keys() []string { return slices.Sorted(maps.Keys(t.entries)) }

// Entries returns a copy of the entries.
func (t Table) Entries() map[string]string { return maps.Clone(t.entries) }

// Hash returns a stable content hash, suitable as part of a cache key.
func (t Table) Hash() string {
	h := sha256.New()
	for _, k := range t.Keys() {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(t.entries[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
