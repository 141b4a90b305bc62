package datasource

import (
	"encoding/json"
	"reflect"
)

const unknownError = "Unknown Error"

// NormalizeError turns an arbitrary failure value into a human-readable
// message: errors use their message, slices use their first element, and
// anything else is JSON-stringified. Shapes that survive none of that come
// back as "Unknown Error" so the UI never shows a blank notification.
func NormalizeError(failure any) string {
	switch e := failure.(type) {
	case nil:
		return unknownError
	case error:
		return e.Error()
	case string:
		if e == "" {
			return unknownError
		}
		return e
	}

	rv := reflect.ValueOf(failure)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return unknownError
		}
		return NormalizeError(rv.Index(0).Interface())
	}

	b, err := json.Marshal(failure)
	if err != nil || string(b) == "null" {
		return unknownError
	}
	return string(b)
}
