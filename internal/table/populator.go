package table

import (
	"golang.org/x/net/html"

	"stringcalc/domain/instrument"
	"stringcalc/internal/dom"
	"stringcalc/internal/errors"
)

// PopulateRow appends the eight cells of a string row. Display fields
// become text nodes; material, length, diameter and count become text
// inputs named "{name}-{suffix}" and pre-filled with the row value. Values
// are written as given. A short row is reported as errors.MalformedRow and
// leaves row untouched.
func PopulateRow(row *html.Node, key instrument.RowKey, data instrument.RowData) error {
	if err := data.Validate(key); err != nil {
		return errors.MalformedRow(string(key), len(data))
	}
	name := data.Name()
	for pos := 0; pos < instrument.RowWidth; pos++ {
		cell := dom.InsertCell(row)
		if instrument.IsEditable(pos) {
			cell.AppendChild(dom.CreateInput(instrument.InputID(name, pos), data[pos]))
			continue
		}
		cell.AppendChild(dom.CreateTextNode(data[pos]))
	}
	return nil
}
