package table

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"stringcalc/domain/core"
	"stringcalc/domain/instrument"
	"stringcalc/internal/dom"
)

// Serialize returns the table's body as rows of cell values. Row 0 is the
// header and is skipped; its cell count fixes the width of every returned
// row, so short rows are padded with "" and extra cells are dropped.
func Serialize(doc *dom.Document, tableID string) (instrument.TableSnapshot, error) {
	table, err := lookupTable(doc, tableID)
	if err != nil {
		return nil, err
	}

	rows := dom.Rows(table)
	snapshot := make(instrument.TableSnapshot, 0, len(rows))
	if len(rows) == 0 {
		return snapshot, nil
	}

	width := len(dom.Cells(rows[0]))
	for _, row := range rows[1:] {
		cells := dom.Cells(row)
		values := make([]string, width)
		for i := 0; i < width && i < len(cells); i++ {
			values[i] = Classify(cells[i]).Value(doc)
		}
		snapshot = append(snapshot, values)
	}
	return snapshot, nil
}

func lookupTable(doc *dom.Document, tableID string) (*html.Node, error) {
	table := doc.GetElementByID(tableID)
	if table == nil {
		return nil, core.NewMissingElementError(tableID)
	}
	if !dom.IsElement(table, atom.Table) {
		return nil, fmt.Errorf("%w: %s is <%s>", core.ErrNotATable, tableID, table.Data)
	}
	return table, nil
}

// Headers returns the text of the table's header row, or the standard
// column headers when the table has no rows at all.
func Headers(doc *dom.Document, tableID string) ([]string, error) {
	table, err := lookupTable(doc, tableID)
	if err != nil {
		return nil, err
	}
	rows := dom.Rows(table)
	if len(rows) == 0 {
		return append([]string(nil), instrument.ColumnHeaders[:]...), nil
	}
	cells := dom.Cells(rows[0])
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = Classify(c).Value(doc)
	}
	return headers, nil
}
