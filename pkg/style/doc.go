// Package style maps element and connector types to mxGraph style strings.
//
// A [Table] is an immutable type → style map. [Default] covers the
// ArchiMate stereotypes and plain UML types found in typical exports;
// [Table.With] layers overrides (for example from a TOML file, see
// [LoadOverrides]) over it without touching the original.
//
// A [Mapper] wraps a table with a diagnostics sink. Unknown types resolve
// to the empty style, meaning "render with defaults", and are reported as
// [diag.UnknownStyle]. The empty type resolves to the empty style silently.
//
// [diag.UnknownStyle]: github.com/matzehuels/xmigraph/pkg/diag.UnknownStyle
package style
