package types

import (
	"encoding/json"
	"strconv"
)

// Text renders a cell as display text. Strings are returned unchanged,
// numbers as their literal, booleans as true/false, and null as empty text.
// Nested lists and objects render as compact JSON.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		b, err := marshalJSON(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Equal reports whether two values of the table model are deeply equal.
// Objects compare by key order as well as content.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.keys {
			if y.keys[i] != k || !Equal(x.vals[k], y.vals[k]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
