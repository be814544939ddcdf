package xmi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/matzehuels/xmigraph/pkg/errors"
)

// Parse reads an XML document from r and returns its root element.
//
// Tag and attribute names keep their literal prefixes; namespace
// declarations (xmlns, xmlns:*) are dropped from attribute maps. Parse
// returns an INVALID_DOCUMENT error for malformed XML, mismatched tags, or
// input without a root element.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = decodeCharset

	var (
		root  *Node
		stack []*Node
		text  []*strings.Builder
	)

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: qualify(t.Name), Attrs: attrMap(t.Attr)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New(errors.ErrCodeInvalidDocument, "multiple root elements: %s", n.Name)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "unexpected end element %s", qualify(t.Name))
			}
			top := stack[len(stack)-1]
			if name := qualify(t.Name); name != top.Name {
				return nil, errors.New(errors.ErrCodeInvalidDocument, "mismatched end element: got %s, want %s", name, top.Name)
			}
			top.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}

	if len(stack) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "unclosed element %s", stack[len(stack)-1].Name)
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document has no root element")
	}
	return root, nil
}

// ParseBytes is a convenience wrapper around [Parse] for in-memory data.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

func qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		m[qualify(a.Name)] = a.Value
	}
	return m
}

// decodeCharset resolves the declared encoding by its IANA name, which
// covers the single-byte code pages modeling tools declare (windows-1252,
// iso-8859-1). UTF-8 input never reaches this function.
func decodeCharset(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		if !strings.EqualFold(label, "us-ascii") {
			return nil, fmt.Errorf("unsupported charset: %s", label)
		}
		enc = charmap.Windows1252
	}
	return enc.NewDecoder().Reader(input), nil
}
