// Package element defines the document tree the validation engine walks.
// Trees are produced by adapters (see xmlsource and yamlsource) and are
// treated as read-only once built.
package element

import "strings"

// Attribute is a single name/value pair on an element.
type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Element is one node of a watch face document.
// Attributes keep declaration order and names are unique.
type Element struct {
	TagName    string      `json:"tag"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Children   []*Element  `json:"children,omitempty"`
	Text       string      `json:"text,omitempty"`
}

// New builds an element from attributes given as alternating name/value
// pairs. A trailing unpaired name is ignored.
func New(tag string, attrs ...string) *Element {
	e := &Element{TagName: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.Attributes = append(e.Attributes, Attribute{Name: attrs[i], Value: attrs[i+1]})
	}
	return e
}

// With returns e after appending children. Intended for building trees in
// adapters and tests, before the tree is handed to a validator.
func (e *Element) With(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// WithText sets the text content and returns e.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// ChildrenByTag returns the direct children with the given tag, in document order.
func (e *Element) ChildrenByTag(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.TagName == tag {
			out = append(out, c)
		}
	}
	return out
}

// HasContent reports whether the element carries non-whitespace text.
func (e *Element) HasContent() bool {
	return strings.TrimSpace(e.Text) != ""
}

// Walk visits e and its descendants depth-first in document order.
// Returning false from fn skips the subtree of that node.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}
