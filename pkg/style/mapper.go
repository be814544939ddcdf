package style

import "github.com/matzehuels/xmigraph/pkg/diag"

// Mapper resolves styles from a Table and reports unknown types.
// A Mapper holds no mutable state and is safe for concurrent use when
// its sink is.
type Mapper struct {
	table Table
	sink  diag.Sink
}

// NewMapper returns a Mapper over t. A nil sink discards diagnostics.
func NewMapper(t Table, sink diag.Sink) *Mapper {
	return &Mapper{table: t, sink: diag.OrDiscard(sink)}
}

// StyleFor returns the style for typ. The empty type yields "" silently;
// an unknown type yields "" and exactly one UnknownStyle diagnostic.
func (m *Mapper) StyleFor(typ string) string {
	if typ == "" {
		return ""
	}
	s, ok := m.table.Lookup(typ)
	if !ok {
		m.sink.Report(diag.Diagnostic{
			Kind:    diag.UnknownStyle,
			Subject: typ,
			Detail:  "no style entry, using default style",
		})
		return ""
	}
	return s
}

// Known reports whether the table has an entry for typ, without emitting
// diagnostics.
func (m *Mapper) Known(typ string) bool {
	_, ok := m.table.Lookup(typ)
	return ok
}

// Table returns the underlying table.
func (m *Mapper) Table() Table { return m.table }

// WithSink returns a copy of m that reports to s.
func (m *Mapper) WithSink(s diag.Sink) *Mapper {
	return &Mapper{table: m.table, sink: diag.OrDiscard(s)}
}
