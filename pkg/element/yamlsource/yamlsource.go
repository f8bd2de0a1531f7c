// Package yamlsource builds element trees from a YAML authoring format.
//
// Each node is a mapping with a required "tag" key and optional
// "attributes" (mapping, order preserved), "children" (sequence of nodes)
// and "text" (string) keys:
//
//	tag: WatchFace
//	attributes:
//	  width: "450"
//	  height: "450"
//	children:
//	  - tag: Scene
package yamlsource

import (
	"fmt"
	"io"
	"os"

	"github.com/ormasoftchile/wffcheck/pkg/element"
	"gopkg.in/yaml.v3"
)

// LoadFile reads an element tree from a YAML file.
func LoadFile(path string) (*element.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads an element tree from r.
func Load(r io.Reader) (*element.Element, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("decode yaml: empty document")
	}
	return FromNode(doc.Content[0])
}

// FromNode converts an already decoded YAML mapping node into an element.
func FromNode(n *yaml.Node) (*element.Element, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: element must be a mapping", n.Line)
	}

	el := &element.Element{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "tag":
			el.TagName = val.Value
		case "text":
			el.Text = val.Value
		case "attributes":
			if val.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: attributes must be a mapping", val.Line)
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				name := val.Content[j].Value
				if el.HasAttr(name) {
					return nil, fmt.Errorf("line %d: duplicate attribute %q", val.Content[j].Line, name)
				}
				el.Attributes = append(el.Attributes, element.Attribute{Name: name, Value: val.Content[j+1].Value})
			}
		case "children":
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("line %d: children must be a sequence", val.Line)
			}
			for _, c := range val.Content {
				child, err := FromNode(c)
				if err != nil {
					return nil, err
				}
				el.Children = append(el.Children, child)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}
	if el.TagName == "" {
		return nil, fmt.Errorf("line %d: element requires 'tag'", n.Line)
	}
	return el, nil
}
