package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"
)

const page = `<!DOCTYPE html><html><body>
<input id="pitch" value="440">
<textarea id="notes">default notes</textarea>
<select id="material"><option value="steel">Steel</option><option value="brass" selected>Brass</option></select>
<table id="string_table">
  <thead><tr><th>Note</th><th>Name</th></tr></thead>
  <tbody><tr id="A4"><td>A4</td><td>String1</td></tr></tbody>
  <tfoot><tr><td>total</td><td></td></tr></tfoot>
</table>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestGetElementByID(t *testing.T) {
	doc := mustParse(t, page)

	pitch := doc.GetElementByID("pitch")
	require.NotNil(t, pitch)
	assert.True(t, IsElement(pitch, atom.Input))

	assert.Nil(t, doc.GetElementByID("missing"))
	assert.Nil(t, doc.GetElementByID(""))
}

func TestValueKeepsDefaultSeparate(t *testing.T) {
	doc := mustParse(t, page)
	pitch := doc.GetElementByID("pitch")

	assert.Equal(t, "440", doc.Value(pitch))

	require.NoError(t, doc.SetValue(pitch, "442"))
	assert.Equal(t, "442", doc.Value(pitch))
	assert.Equal(t, "440", Attr(pitch, "value"))
}

func TestDefaultValueOfTextareaAndSelect(t *testing.T) {
	doc := mustParse(t, page)

	assert.Equal(t, "default notes", doc.Value(doc.GetElementByID("notes")))
	assert.Equal(t, "brass", doc.Value(doc.GetElementByID("material")))
}

func TestSetValueRejectsNonControls(t *testing.T) {
	doc := mustParse(t, page)
	err := doc.SetValue(doc.GetElementByID("A4"), "x")
	assert.Error(t, err)
}

func TestRenderReflectsLiveValuesAndRestoresDefaults(t *testing.T) {
	doc := mustParse(t, page)
	pitch := doc.GetElementByID("pitch")
	notes := doc.GetElementByID("notes")
	require.NoError(t, doc.SetValue(pitch, "415"))
	require.NoError(t, doc.SetValue(notes, "edited"))

	var b strings.Builder
	require.NoError(t, doc.Render(&b))
	out := b.String()
	assert.Contains(t, out, `value="415"`)
	assert.Contains(t, out, `>edited</textarea>`)

	assert.Equal(t, "440", Attr(pitch, "value"))
	assert.Equal(t, "default notes", TextContent(notes))
	assert.Equal(t, "415", doc.Value(pitch))
}

func TestClearChildrenForgetsLiveValues(t *testing.T) {
	doc := mustParse(t, `<div id="d"><input id="i" value="a"></div>`)
	in := doc.GetElementByID("i")
	require.NoError(t, doc.SetValue(in, "b"))

	doc.ClearChildren(doc.GetElementByID("d"))

	assert.Nil(t, doc.GetElementByID("i"))
	assert.Empty(t, doc.values)
}

func TestTextContentSkipsControls(t *testing.T) {
	doc := mustParse(t, `<div id="d">a<span>b</span><textarea>c</textarea><input value="d"></div>`)
	assert.Equal(t, "ab", TextContent(doc.GetElementByID("d")))
}

func TestFirstInput(t *testing.T) {
	doc := mustParse(t, `<div id="d"><span><input id="one"></span><input id="two"></div>`)
	assert.Equal(t, "one", ID(FirstInput(doc.GetElementByID("d"))))
	assert.Nil(t, FirstInput(CreateElement(atom.Td)))
}

func TestCreateInput(t *testing.T) {
	in := CreateInput("String1-material", "steel")
	assert.True(t, IsInput(in))
	assert.Equal(t, "text", Attr(in, "type"))
	assert.Equal(t, "String1-material", ID(in))
	assert.Equal(t, "steel", Attr(in, "value"))
}

func TestAttrHelpers(t *testing.T) {
	n := CreateElement(atom.Tr)
	SetAttr(n, "id", "A4")
	SetAttr(n, "id", "B4")
	assert.Equal(t, "B4", ID(n))
	assert.Len(t, n.Attr, 1)
	RemoveAttr(n, "id")
	assert.False(t, HasAttr(n, "id"))
}
