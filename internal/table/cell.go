// Package table reads and writes the string table of the calculator page:
// serializing it to rows of values and reconciling keyed row updates into it.
package table

import (
	"strings"

	"golang.org/x/net/html"

	"stringcalc/internal/dom"
)

// CellKind tags what a table cell holds.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellInput
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellInput:
		return "input"
	default:
		return "empty"
	}
}

// Cell is a classified table cell.
type Cell struct {
	Kind  CellKind
	Text  string
	Input *html.Node
}

// Classify resolves a td/th with fixed precedence:
//  1. non-blank text content wins, trimmed;
//  2. otherwise the first form control below the cell, in document order;
//  3. otherwise the cell is empty.
//
// Text inside textarea and select elements is not counted as cell text.
func Classify(cell *html.Node) Cell {
	if text := strings.TrimSpace(dom.TextContent(cell)); text != "" {
		return Cell{Kind: CellText, Text: text}
	}
	if in := dom.FirstInput(cell); in != nil {
		return Cell{Kind: CellInput, Input: in}
	}
	return Cell{Kind: CellEmpty}
}

// Value returns the serialized value: the text, or the control's live value.
func (c Cell) Value(doc *dom.Document) string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellInput:
		return doc.Value(c.Input)
	default:
		return ""
	}
}
