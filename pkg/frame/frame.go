package frame

import "encoding/json"

// FieldType classifies the values of a field.
type FieldType string

const (
	FieldTypeTime    FieldType = "time"
	FieldTypeNumber  FieldType = "number"
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeOther   FieldType = "other"
)

// DisplayValue is the formatted rendering of a raw value.
type DisplayValue struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

// DisplayProcessor formats a raw value for presentation.
type DisplayProcessor func(v any) DisplayValue

// FieldConfig carries host-side display configuration for a field.
type FieldConfig struct {
	DisplayName string         `json:"displayName,omitempty"`
	Unit        string         `json:"unit,omitempty"`
	Decimals    *int           `json:"decimals,omitempty"`
	Custom      map[string]any `json:"custom,omitempty"`
}

// Field is one named column of values within a frame.
type Field struct {
	Name    string           `json:"name"`
	Type    FieldType        `json:"type"`
	Values  []any            `json:"values"`
	Config  FieldConfig      `json:"config"`
	Display DisplayProcessor `json:"-"`
}

// At returns the field value at the given row index, nil when out of range.
func (f *Field) At(index int) any {
	if index < 0 || index >= len(f.Values) {
		return nil
	}
	return f.Values[index]
}

// LastNonNil returns the last non-nil value of the field.
func (f *Field) LastNonNil() (any, bool) {
	for i := len(f.Values) - 1; i >= 0; i-- {
		if f.Values[i] != nil {
			return f.Values[i], true
		}
	}
	return nil, false
}

// Frame is one named, typed table of field arrays returned by a query.
// Frames are treated as immutable input and never modified.
type Frame struct {
	RefID  string  `json:"refId,omitempty"`
	Fields []Field `json:"fields"`
}

// Length returns the row count of the frame: the longest field wins so
// ragged input still yields a row per populated index.
func (f *Frame) Length() int {
	n := 0
	for i := range f.Fields {
		if l := len(f.Fields[i].Values); l > n {
			n = l
		}
	}
	return n
}

// FieldByName returns the first field with the given name.
func (f *Frame) FieldByName(name string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// Row is one grid row keyed by column id.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MarshalJSON keeps rows serializable despite the nil map convention.
func (r Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(r))
}
