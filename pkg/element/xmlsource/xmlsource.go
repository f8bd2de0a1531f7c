// Package xmlsource turns XML documents into element trees.
package xmlsource

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ormasoftchile/wffcheck/pkg/element"
)

// ErrNoRoot is returned when the input holds no root element.
var ErrNoRoot = errors.New("xml document has no root element")

// ParseFile reads and parses an XML watch face document.
func ParseFile(path string) (*element.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseBytes parses an XML document held in memory.
func ParseBytes(data []byte) (*element.Element, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads an XML document from r.
// Namespace declarations are dropped from the attribute list, prefixed
// attributes keep their source prefix, and text content is kept untrimmed.
func Parse(r io.Reader) (*element.Element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true

	var (
		root     *element.Element
		stack    []*element.Element
		prefixes []map[string]string // namespace URL -> prefix, one frame per open element
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			frame := make(map[string]string)
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					frame[a.Value] = a.Name.Local
				}
			}
			prefixes = append(prefixes, frame)

			el := &element.Element{TagName: qualify(t.Name, prefixes)}
			for _, a := range t.Attr {
				if isNamespaceDecl(a.Name) {
					continue
				}
				name := qualify(a.Name, prefixes)
				if el.HasAttr(name) {
					line, _ := dec.InputPos()
					return nil, fmt.Errorf("parse xml: line %d: duplicate attribute %q on <%s>", line, name, el.TagName)
				}
				el.Attributes = append(el.Attributes, element.Attribute{Name: name, Value: a.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]
			prefixes = prefixes[:len(prefixes)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

func isNamespaceDecl(n xml.Name) bool {
	return n.Space == "xmlns" || (n.Space == "" && n.Local == "xmlns")
}

// qualify maps a resolved namespace URL back to the prefix used in the source.
// Names from undeclared namespaces keep whatever the decoder reported.
func qualify(n xml.Name, prefixes []map[string]string) string {
	if n.Space == "" {
		return n.Local
	}
	for i := len(prefixes) - 1; i >= 0; i-- {
		if p, ok := prefixes[i][n.Space]; ok {
			return p + ":" + n.Local
		}
	}
	return n.Local
}
