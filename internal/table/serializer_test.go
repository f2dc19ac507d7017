package table

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stringcalc/domain/core"
	"stringcalc/domain/instrument"
	"stringcalc/internal/dom"
)

func parse(t *testing.T, s string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(s)
	require.NoError(t, err)
	return doc
}

// buildTable renders a table with an n-cell header and the given body rows.
func buildTable(n int, rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<table id="string_table"><tr>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<th>h%d</th>", i)
	}
	b.WriteString("</tr>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, c := range row {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func TestSerializeShape(t *testing.T) {
	tests := []struct {
		name  string
		width int
		rows  [][]string
	}{
		{"header only", 8, nil},
		{"full rows", 3, [][]string{{"a", "b", "c"}, {"d", "e", "f"}}},
		{"short row padded", 4, [][]string{{"a"}, {"b", "c", "d", "e"}}},
		{"long row truncated", 2, [][]string{{"a", "b", "c", "d"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, buildTable(tt.width, tt.rows))

			snapshot, err := Serialize(doc, instrument.StringTable)
			require.NoError(t, err)
			require.NotNil(t, snapshot)
			assert.Len(t, snapshot, len(tt.rows))
			for _, row := range snapshot {
				assert.Len(t, row, tt.width)
			}
		})
	}
}

func TestSerializeTextAndInputCells(t *testing.T) {
	doc := parse(t, `<table id="string_table">
		<tr><th>Note</th><th>Material</th><th>Blank</th></tr>
		<tr><td>A4</td><td><input id="String1-material" value="steel"></td><td></td></tr>
	</table>`)
	in := doc.GetElementByID("String1-material")
	require.NoError(t, doc.SetValue(in, "brass"))

	snapshot, err := Serialize(doc, "string_table")
	require.NoError(t, err)
	assert.Equal(t, instrument.TableSnapshot{{"A4", "brass", ""}}, snapshot)
}

func TestSerializeUnsetInputUsesDefault(t *testing.T) {
	doc := parse(t, `<table id="t"><tr><th>x</th></tr><tr><td><input value="650"></td></tr></table>`)

	snapshot, err := Serialize(doc, "t")
	require.NoError(t, err)
	assert.Equal(t, instrument.TableSnapshot{{"650"}}, snapshot)
}

func TestSerializeMissingTable(t *testing.T) {
	doc := parse(t, `<div id="string_table"></div>`)

	_, err := Serialize(doc, "nope")
	assert.True(t, core.IsMissingElementError(err))

	_, err = Serialize(doc, "string_table")
	assert.True(t, errors.Is(err, core.ErrNotATable))
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		cell string
		kind CellKind
		want string
	}{
		{"text only", `<td> A4 </td>`, CellText, "A4"},
		{"input only", `<td><input value="steel"></td>`, CellInput, "steel"},
		{"text beats input", `<td>label <input value="steel"></td>`, CellText, "label"},
		{"first of several inputs", `<td><input value="one"><input value="two"></td>`, CellInput, "one"},
		{"nested input", `<td><span><input value="deep"></span></td>`, CellInput, "deep"},
		{"whitespace around input", "<td>\n  <input value=\"x\">\n</td>", CellInput, "x"},
		{"textarea", `<td><textarea>notes</textarea></td>`, CellInput, "notes"},
		{"empty", `<td></td>`, CellEmpty, ""},
		{"blank", `<td>   </td>`, CellEmpty, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, `<table id="t"><tr id="r">`+tt.cell+`</tr></table>`)
			cells := dom.Cells(doc.GetElementByID("r"))
			require.Len(t, cells, 1)

			c := Classify(cells[0])
			assert.Equal(t, tt.kind, c.Kind, "kind %s", c.Kind)
			assert.Equal(t, tt.want, c.Value(doc))
		})
	}
}

func TestHeaders(t *testing.T) {
	doc := parse(t, buildTable(3, [][]string{{"a", "b", "c"}}))

	headers, err := Headers(doc, instrument.StringTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"h0", "h1", "h2"}, headers)

	empty := parse(t, `<table id="string_table"></table>`)
	headers, err = Headers(empty, instrument.StringTable)
	require.NoError(t, err)
	assert.Equal(t, instrument.ColumnHeaders[:], headers)
}
