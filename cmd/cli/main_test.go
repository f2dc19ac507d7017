package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stringcalc/adapters/excel"
	"stringcalc/domain/instrument"
)

const savedPage = `<html><body><table id="string_table">
<tr><th>Note</th><th>Name</th><th>Frequency</th><th>Material</th><th>Length</th><th>Diameter</th><th>Count</th><th>Force</th></tr>
<tr id="A4"><td>A4</td><td>String1</td><td>440</td><td><input id="String1-material" value="steel"></td><td><input id="String1-length" value="650"></td><td><input id="String1-diameter" value="0.5"></td><td><input id="String1-count" value="1"></td><td>80</td></tr>
</table></body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunSnapshot(t *testing.T) {
	page := writeFile(t, "page.html", savedPage)

	var out bytes.Buffer
	require.NoError(t, runSnapshot(&out, page, instrument.StringTable, false))
	assert.JSONEq(t, `[["A4","String1","440","steel","650","0.5","1","80"]]`, out.String())

	out.Reset()
	require.NoError(t, runSnapshot(&out, page, instrument.StringTable, true))
	assert.Contains(t, out.String(), `"total_force": 80`)
}

func TestRunExport(t *testing.T) {
	page := writeFile(t, "page.html", savedPage)
	dest := filepath.Join(t.TempDir(), "strings.csv")

	require.NoError(t, runExport(page, dest, instrument.StringTable))
	sheet, err := excel.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "Note", sheet.Headers[0])
	assert.Equal(t, instrument.TableSnapshot{{"A4", "String1", "440", "steel", "650", "0.5", "1", "80"}}, sheet.Snapshot)

	assert.Error(t, runExport(page, filepath.Join(t.TempDir(), "strings.txt"), instrument.StringTable))
}

func TestRunApply(t *testing.T) {
	page := writeFile(t, "page.html", savedPage)
	update := writeFile(t, "update.json",
		`{"A4": ["A4","String1","440","steel","660","0.5","1","82"], "B4": ["B4"], "E2": ["E2","String6","82.4","nickel","1000","1.2","1","90"]}`)

	var out, errOut bytes.Buffer
	require.NoError(t, runApply(&out, &errOut, page, update, instrument.StringTable))

	assert.Contains(t, errOut.String(), "skipped B4 [MALFORMED_ROW]")
	assert.Contains(t, errOut.String(), "1 created, 1 updated, 1 skipped")

	html := out.String()
	assert.Contains(t, html, `value="660"`)
	assert.Less(t, strings.Index(html, `id="A4"`), strings.Index(html, `id="E2"`))
	assert.NotContains(t, html, `id="B4"`)
}

func TestRunImportRoundTripsAnExport(t *testing.T) {
	source := writeFile(t, "source.html", savedPage)
	sheetPath := filepath.Join(t.TempDir(), "strings.xlsx")
	require.NoError(t, runExport(source, sheetPath, instrument.StringTable))

	empty := writeFile(t, "empty.html", `<html><body><table id="string_table">
<tr><th>Note</th><th>Name</th><th>Frequency</th><th>Material</th><th>Length</th><th>Diameter</th><th>Count</th><th>Force</th></tr>
</table></body></html>`)

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, empty, sheetPath, instrument.StringTable))
	assert.Contains(t, errOut.String(), "1 created, 0 updated, 0 skipped")

	html := out.String()
	assert.Contains(t, html, `<tr id="A4">`)
	assert.Contains(t, html, `id="String1-length"`)
	assert.Contains(t, html, `value="650"`)
}

func TestRunImportReportsShortRows(t *testing.T) {
	page := writeFile(t, "page.html", savedPage)
	sheetPath := writeFile(t, "strings.csv", "Note,Name\nC5,String3\n")

	var out, errOut bytes.Buffer
	require.NoError(t, runImport(&out, &errOut, page, sheetPath, instrument.StringTable))
	assert.Contains(t, errOut.String(), "skipped C5 [MALFORMED_ROW]")
	assert.NotContains(t, out.String(), `id="C5"`)
}
