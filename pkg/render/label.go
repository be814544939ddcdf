package render

import (
	"strings"

	"github.com/matzehuels/xmigraph/pkg/model"
)

// metaLabel lists the diagram properties shown on text elements, in order.
var metaLabel = []struct{ key, title string }{
	{"name", "Name"},
	{"author", "Author"},
	{"version", "Version"},
	{"created", "Created"},
	{"modified", "Modified"},
}

// Label returns the vertex label of e within d.
//
// Text elements show the diagram's metadata, one "Key:\tvalue" line per
// property that is set. Every other element shows its name.
func Label(e model.Element, d model.Diagram) string {
	if !isText(e.Type) {
		return e.Name
	}
	var lines []string
	for _, m := range metaLabel {
		if v := d.Meta[m.key]; v != "" {
			lines = append(lines, m.title+":\t"+v)
		}
	}
	if len(lines) == 0 {
		return e.Name
	}
	return strings.Join(lines, "\n")
}

func isText(typ string) bool {
	return typ == "Text" || typ == "uml:Text"
}
