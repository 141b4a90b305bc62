package filtering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gridworks/datagrid-panel/pkg/timeutil"
)

// Evaluate reports whether the row passes the filter for the given column.
// An inactive filter always passes.
func Evaluate(row map[string]any, columnID string, v Value) bool {
	switch v.Type {
	case TypeSearch:
		return evaluateSearch(row[columnID], v.Search)
	case TypeNumber:
		return evaluateNumber(row[columnID], v.Number)
	case TypeFaceted:
		return evaluateFaceted(row[columnID], v.Faceted)
	case TypeTimestamp:
		return evaluateTimestamp(row[columnID], v.Timestamp)
	default:
		return true
	}
}

func evaluateSearch(cell any, f *Search) bool {
	if f == nil || f.Value == "" {
		return true
	}
	text := CoerceString(cell)
	if f.CaseSensitive {
		return strings.Contains(text, f.Value)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(f.Value))
}

func evaluateNumber(cell any, f *Number) bool {
	if f == nil {
		return true
	}
	n, ok := CoerceFloat(cell)
	if !ok {
		return false
	}
	switch f.Operator {
	case OpBetween:
		// Operand order is irrelevant for between.
		lo, hi := f.Value[0], f.Value[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return n >= lo && n <= hi
	case OpGreater:
		return n > f.Value[0]
	case OpGreaterOrEqual:
		return n >= f.Value[0]
	case OpLess:
		return n < f.Value[0]
	case OpLessOrEqual:
		return n <= f.Value[0]
	case OpEqual:
		return n == f.Value[0]
	case OpNotEqual:
		return n != f.Value[0]
	default:
		return true
	}
}

func evaluateFaceted(cell any, f *Faceted) bool {
	if f == nil || len(f.Value) == 0 {
		return true
	}
	text := CoerceString(cell)
	for _, candidate := range f.Value {
		if candidate == text {
			return true
		}
	}
	return false
}

// evaluateTimestamp compares against the pre-resolved range. Cell values
// that cannot be interpreted as a point in time pass the filter so that
// malformed data stays visible.
func evaluateTimestamp(cell any, f *Timestamp) bool {
	if f == nil || f.Resolved == nil {
		return true
	}
	ms, ok := timeutil.ParseTimestampValue(cell)
	if !ok {
		return true
	}
	return ms >= f.Resolved.From && ms <= f.Resolved.To
}

// Resolve recomputes the cached timestamp boundaries against the given
// wall-clock instant. Call it once before a filter pass, never per row:
// relative expressions must stay fixed while the pass runs. Boundaries
// that fail to parse clear the resolved range, disabling the constraint.
func Resolve(v Value, now time.Time) Value {
	if v.Type != TypeTimestamp || v.Timestamp == nil {
		return v
	}
	resolved := &Timestamp{Value: v.Timestamp.Value}
	from, errFrom := timeutil.ResolveBoundary(v.Timestamp.Value.From, now)
	to, errTo := timeutil.ResolveBoundary(v.Timestamp.Value.To, now)
	if errFrom == nil && errTo == nil {
		resolved.Resolved = &ResolvedRange{From: from, To: to}
	}
	return Value{Type: TypeTimestamp, Timestamp: resolved}
}

// CoerceString converts a cell value to its string form for matching.
func CoerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// CoerceFloat converts a cell value to a float64 when possible.
func CoerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
