package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rows returns the rows of a table in the order of HTMLTableElement.rows:
// thead rows first, then body rows (tbody or bare tr) in tree order, then
// tfoot rows. Rows of nested tables are not included.
func Rows(table *html.Node) []*html.Node {
	var head, body, foot []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			body = append(body, c)
		case atom.Thead:
			head = append(head, childRows(c)...)
		case atom.Tbody:
			body = append(body, childRows(c)...)
		case atom.Tfoot:
			foot = append(foot, childRows(c)...)
		}
	}
	rows := make([]*html.Node, 0, len(head)+len(body)+len(foot))
	rows = append(rows, head...)
	rows = append(rows, body...)
	return append(rows, foot...)
}

func childRows(section *html.Node) []*html.Node {
	var rows []*html.Node
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, atom.Tr) {
			rows = append(rows, c)
		}
	}
	return rows
}

// Cells returns the td/th children of a row.
func Cells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, atom.Td) || IsElement(c, atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

// AppendRow attaches a detached row at the end of the table: after the last
// body row, or into a new tbody when the body is empty.
func AppendRow(table, row *html.Node) {
	bodyParent := lastBodyParent(table)
	if bodyParent == nil {
		bodyParent = CreateElement(atom.Tbody)
		insertBeforeFoot(table, bodyParent)
	}
	bodyParent.AppendChild(row)
}

// InsertRow creates an empty row and appends it, like insertRow(-1).
func InsertRow(table *html.Node) *html.Node {
	row := CreateElement(atom.Tr)
	AppendRow(table, row)
	return row
}

// InsertCell appends an empty td to the row, like insertCell(-1).
func InsertCell(row *html.Node) *html.Node {
	cell := CreateElement(atom.Td)
	row.AppendChild(cell)
	return cell
}

// lastBodyParent returns the node new body rows go into: the last tbody if
// there is one, the table itself if it holds bare rows, otherwise nil.
func lastBodyParent(table *html.Node) *html.Node {
	var parent *html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case IsElement(c, atom.Tbody):
			parent = c
		case IsElement(c, atom.Tr):
			parent = table
		}
	}
	return parent
}

func insertBeforeFoot(table, n *html.Node) {
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, atom.Tfoot) {
			table.InsertBefore(n, c)
			return
		}
	}
	table.AppendChild(n)
}
