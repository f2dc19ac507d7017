// Package dom is a small in-process DOM over golang.org/x/net/html. It keeps
// the live value of form controls apart from their default ("value"
// attribute), the way a browser does, so a page can be edited, serialized
// and rendered without a browser.
//
// A Document is not safe for concurrent use; callers serialize access.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page plus the live values of its controls.
type Document struct {
	root   *html.Node
	values map[*html.Node]string
}

// Parse reads a full HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{root: root, values: make(map[*html.Node]string)}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// GetElementByID returns the first element in document order whose id
// attribute equals id, or nil.
func (d *Document) GetElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return found
}

// Value returns the live value of a control. Controls that were never set
// report their default value.
func (d *Document) Value(n *html.Node) string {
	if n == nil {
		return ""
	}
	if v, ok := d.values[n]; ok {
		return v
	}
	return DefaultValue(n)
}

// SetValue changes the live value of a control, leaving its default alone.
func (d *Document) SetValue(n *html.Node, value string) error {
	if !IsInput(n) {
		return fmt.Errorf("element %q is not a form control", ID(n))
	}
	d.values[n] = value
	return nil
}

// DefaultValue is the value a control has before any edit.
func DefaultValue(n *html.Node) string {
	switch n.DataAtom {
	case atom.Textarea:
		return TextContent(n)
	case atom.Select:
		var first, selected *html.Node
		for _, opt := range findAll(n, atom.Option) {
			if first == nil {
				first = opt
			}
			if selected == nil && HasAttr(opt, "selected") {
				selected = opt
			}
		}
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if HasAttr(selected, "value") {
			return Attr(selected, "value")
		}
		return strings.TrimSpace(TextContent(selected))
	default:
		return Attr(n, "value")
	}
}

// ClearChildren removes every child of n, forgetting the live values of
// controls that go with them.
func (d *Document) ClearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		d.forget(c)
		n.RemoveChild(c)
		c = next
	}
}

func (d *Document) forget(n *html.Node) {
	delete(d.values, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

// Render writes the page with live values reflected into the markup. The
// default values are restored afterwards.
func (d *Document) Render(w io.Writer) error {
	restore := d.applyLiveValues()
	defer restore()
	return html.Render(w, d.root)
}

func (d *Document) applyLiveValues() func() {
	var undo []func()
	for n, v := range d.values {
		n, v := n, v
		switch n.DataAtom {
		case atom.Textarea:
			saved := detachChildren(n)
			n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
			undo = append(undo, func() {
				detachChildren(n)
				for _, c := range saved {
					n.AppendChild(c)
				}
			})
		case atom.Input:
			old, had := Attr(n, "value"), HasAttr(n, "value")
			SetAttr(n, "value", v)
			undo = append(undo, func() {
				if had {
					SetAttr(n, "value", old)
				} else {
					RemoveAttr(n, "value")
				}
			})
		}
	}
	return func() {
		for _, u := range undo {
			u()
		}
	}
}

func detachChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out
}
