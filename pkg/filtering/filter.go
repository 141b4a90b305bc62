package filtering

import (
	"encoding/json"
	"fmt"
)

// Type discriminates the filter value union.
type Type string

const (
	TypeNone      Type = "none"
	TypeSearch    Type = "search"
	TypeNumber    Type = "number"
	TypeFaceted   Type = "faceted"
	TypeTimestamp Type = "timestamp"
)

// NumberOperator selects the comparison applied by a number filter.
type NumberOperator string

const (
	OpGreater        NumberOperator = ">"
	OpGreaterOrEqual NumberOperator = ">="
	OpLess           NumberOperator = "<"
	OpLessOrEqual    NumberOperator = "<="
	OpEqual          NumberOperator = "="
	OpNotEqual       NumberOperator = "!="
	OpBetween        NumberOperator = "between"
)

type Search struct {
	Value         string `json:"value"`
	CaseSensitive bool   `json:"caseSensitive"`
}

type Number struct {
	Value    [2]float64     `json:"value"`
	Operator NumberOperator `json:"operator"`
}

type Faceted struct {
	Value []string `json:"value"`
}

// TimeRange holds the configured boundaries of a timestamp filter.
// Boundaries may be relative expressions ("now-6h"), RFC3339 strings
// or epoch milliseconds.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ResolvedRange is the epoch-millisecond resolution of a TimeRange.
type ResolvedRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type Timestamp struct {
	Value TimeRange `json:"value"`
	// Resolved caches the fixed boundaries for one filter pass and must
	// be recomputed via Resolve before each pass.
	Resolved *ResolvedRange `json:"valueToFilter,omitempty"`
}

// Value is the tagged union of all filter variants. Exactly the variant
// matching Type is non-nil.
type Value struct {
	Type      Type
	Search    *Search
	Number    *Number
	Faceted   *Faceted
	Timestamp *Timestamp
}

// New returns the empty default value for a filter type. Deterministic:
// switching a column's filter type in the editor always starts from the
// same state.
func New(t Type) Value {
	switch t {
	case TypeSearch:
		return Value{Type: TypeSearch, Search: &Search{}}
	case TypeNumber:
		return Value{Type: TypeNumber, Number: &Number{Operator: OpGreater}}
	case TypeFaceted:
		return Value{Type: TypeFaceted, Faceted: &Faceted{Value: []string{}}}
	case TypeTimestamp:
		return Value{Type: TypeTimestamp, Timestamp: &Timestamp{}}
	default:
		return Value{Type: TypeNone}
	}
}

// NewSearch builds an active search filter.
func NewSearch(text string, caseSensitive bool) Value {
	return Value{Type: TypeSearch, Search: &Search{Value: text, CaseSensitive: caseSensitive}}
}

// NewFaceted builds an active faceted filter over the given selection.
func NewFaceted(selected []string) Value {
	return Value{Type: TypeFaceted, Faceted: &Faceted{Value: selected}}
}

// Active reports whether the value constrains rows at all.
func (v Value) Active() bool {
	switch v.Type {
	case TypeSearch:
		return v.Search != nil && v.Search.Value != ""
	case TypeNumber:
		return v.Number != nil
	case TypeFaceted:
		return v.Faceted != nil && len(v.Faceted.Value) > 0
	case TypeTimestamp:
		return v.Timestamp != nil
	default:
		return false
	}
}

// ColumnFilter pairs a column id with its current filter value. A nil
// Value marks an explicit "no filter" entry used by merge to clear a
// previously derived filter for that column.
type ColumnFilter struct {
	ID    string `json:"id"`
	Value *Value `json:"value,omitempty"`
}

// ToggleAll implements the faceted "select all" control: if every option
// is already selected the selection is cleared, otherwise the full option
// set becomes selected.
func ToggleAll(selected, options []string) []string {
	if len(options) == 0 {
		return []string{}
	}
	have := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		have[s] = struct{}{}
	}
	all := true
	for _, o := range options {
		if _, ok := have[o]; !ok {
			all = false
			break
		}
	}
	if all {
		return []string{}
	}
	out := make([]string, len(options))
	copy(out, options)
	return out
}

type valueJSON struct {
	Type     Type            `json:"type"`
	Value    json.RawMessage `json:"value,omitempty"`
	Case     *bool           `json:"caseSensitive,omitempty"`
	Operator NumberOperator  `json:"operator,omitempty"`
	Resolved *ResolvedRange  `json:"valueToFilter,omitempty"`
}

// MarshalJSON flattens the union into the persisted shape, keyed by the
// "type" discriminator.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Type: v.Type}
	var err error
	switch v.Type {
	case TypeSearch:
		if v.Search != nil {
			out.Value, err = json.Marshal(v.Search.Value)
			out.Case = &v.Search.CaseSensitive
		}
	case TypeNumber:
		if v.Number != nil {
			out.Value, err = json.Marshal(v.Number.Value)
			out.Operator = v.Number.Operator
		}
	case TypeFaceted:
		if v.Faceted != nil {
			out.Value, err = json.Marshal(v.Faceted.Value)
		}
	case TypeTimestamp:
		if v.Timestamp != nil {
			out.Value, err = json.Marshal(v.Timestamp.Value)
			out.Resolved = v.Timestamp.Resolved
		}
	case TypeNone, "":
		out.Type = TypeNone
	default:
		return nil, fmt.Errorf("unknown filter type %q", v.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in valueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*v = Value{Type: in.Type}
	switch in.Type {
	case TypeSearch:
		s := &Search{}
		if in.Value != nil {
			if err := json.Unmarshal(in.Value, &s.Value); err != nil {
				return err
			}
		}
		if in.Case != nil {
			s.CaseSensitive = *in.Case
		}
		v.Search = s
	case TypeNumber:
		n := &Number{Operator: in.Operator}
		if n.Operator == "" {
			n.Operator = OpGreater
		}
		if in.Value != nil {
			if err := json.Unmarshal(in.Value, &n.Value); err != nil {
				return err
			}
		}
		v.Number = n
	case TypeFaceted:
		f := &Faceted{Value: []string{}}
		if in.Value != nil {
			if err := json.Unmarshal(in.Value, &f.Value); err != nil {
				return err
			}
		}
		v.Faceted = f
	case TypeTimestamp:
		t := &Timestamp{Resolved: in.Resolved}
		if in.Value != nil {
			if err := json.Unmarshal(in.Value, &t.Value); err != nil {
				return err
			}
		}
		v.Timestamp = t
	case TypeNone, "":
		v.Type = TypeNone
	default:
		return fmt.Errorf("unknown filter type %q", in.Type)
	}
	return nil
}
