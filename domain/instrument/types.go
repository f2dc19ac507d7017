// Package instrument holds the string-table data exchanged with the
// calculator peer: instrument form fields going out, keyed string rows
// coming back.
package instrument

import (
	"fmt"

	"stringcalc/domain/core"
)

// Element ids the page must provide
const (
	LowestKeyID  = "lowest_key"
	HighestKeyID = "highest_key"
	PitchID      = "pitch"
	StringTable  = "string_table"
)

// Event names on the realtime channel. The inbound name keeps the peer's
// spelling.
const (
	EventInstrumentUpdate = "instrument_updater"
	EventTableResponse    = "responce"
)

// Field positions inside RowData
const (
	FieldStandardNote = iota
	FieldName
	FieldFrequency
	FieldMaterial
	FieldLength
	FieldDiameter
	FieldCount
	FieldForce

	RowWidth
)

// ColumnHeaders are the display headers for a string table
var ColumnHeaders = [RowWidth]string{
	"Note", "Name", "Frequency", "Material", "Length", "Diameter", "Count", "Force",
}

var editableSuffix = map[int]string{
	FieldMaterial: "material",
	FieldLength:   "length",
	FieldDiameter: "diameter",
	FieldCount:    "count",
}

// RowKey identifies a table row; it doubles as the row's DOM id.
type RowKey string

func (k RowKey) String() string { return string(k) }

// RowData is one string's fields in fixed positional order.
type RowData []string

// Validate reports ErrMalformedRow when fewer than RowWidth fields are present.
func (r RowData) Validate(key RowKey) error {
	if len(r) < RowWidth {
		return core.NewMalformedRowError(string(key), len(r), RowWidth)
	}
	return nil
}

// Name returns the string name used to derive input ids.
func (r RowData) Name() string {
	if len(r) <= FieldName {
		return ""
	}
	return r[FieldName]
}

// IsEditable reports whether the field at pos is rendered as an input.
func IsEditable(pos int) bool {
	_, ok := editableSuffix[pos]
	return ok
}

// InputID builds the id of the editable input for the given string name
// and position: "{name}-{suffix}".
func InputID(name string, pos int) string {
	suffix, ok := editableSuffix[pos]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s-%s", name, suffix)
}

// Entry is one keyed row of an inbound update.
type Entry struct {
	Key  RowKey
	Data RowData
}

// Update is the inbound keyed mapping in source order.
type Update []Entry

// Keys returns the row keys in update order.
func (u Update) Keys() []RowKey {
	keys := make([]RowKey, len(u))
	for i, e := range u {
		keys[i] = e.Key
	}
	return keys
}

// TableSnapshot is the table body as rows of cell values, header excluded.
type TableSnapshot [][]string

// InstrumentInfo is the instrument form as sent to the peer.
type InstrumentInfo struct {
	LowestKey  string `json:"lowest_key"`
	HighestKey string `json:"highest_key"`
	Pitch      string `json:"pitch"`
}

// InfoFieldIDs lists the form element ids read into InstrumentInfo.
func InfoFieldIDs() []string {
	return []string{LowestKeyID, HighestKeyID, PitchID}
}

// Set assigns the field matching an element id.
func (i *InstrumentInfo) Set(id, value string) bool {
	switch id {
	case LowestKeyID:
		i.LowestKey = value
	case HighestKeyID:
		i.HighestKey = value
	case PitchID:
		i.Pitch = value
	default:
		return false
	}
	return true
}
