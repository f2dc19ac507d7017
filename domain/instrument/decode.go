package instrument

import (
	"fmt"

	"github.com/tidwall/gjson"

	"stringcalc/domain/core"
)

// DecodeUpdate parses a `responce` payload, a JSON object of row key to
// field array, keeping the object's key order. Scalars that are not strings
// keep their JSON text ("440.0", "true"); null becomes "". A value that is
// not an array decodes to an entry with no data so the row is reported as
// malformed downstream instead of failing the whole payload. A repeated key
// keeps its first position and its last value.
func DecodeUpdate(raw []byte) (Update, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", core.ErrMalformedPayload)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", core.ErrMalformedPayload, doc.Type)
	}

	var update Update
	seen := make(map[RowKey]int)
	doc.ForEach(func(key, value gjson.Result) bool {
		k := RowKey(key.String())
		var data RowData
		if value.IsArray() {
			fields := value.Array()
			data = make(RowData, len(fields))
			for i, f := range fields {
				data[i] = scalarText(f)
			}
		}
		if pos, ok := seen[k]; ok {
			update[pos].Data = data
			return true
		}
		seen[k] = len(update)
		update = append(update, Entry{Key: k, Data: data})
		return true
	})
	return update, nil
}

func scalarText(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Null:
		return ""
	default:
		return r.Raw
	}
}
