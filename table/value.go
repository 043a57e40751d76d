package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Stringify renders a cell value as text.
//
// Strings are returned unchanged, integers in base 10, floats in the shortest
// decimal form that round-trips, booleans as "true"/"false", lists and objects
// as compact JSON with object keys sorted, and nil as "null". The conversion
// is deterministic but not reversible to the original type.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case []any, map[string]any:
		bs, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(bs)
	default:
		return fmt.Sprint(x)
	}
}

// identity returns a comparison key under which two cells are equal only when
// they have the same type and the same rendering.
func identity(v any) string {
	return fmt.Sprintf("%T|%s", v, Stringify(v))
}

// ParseJSONValue decodes one JSON value into a cell, with the number handling
// of ReadJSONLines.
func ParseJSONValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return fromJSON(raw)
}

// fromJSON converts a value decoded with json.Decoder.UseNumber into a cell:
// integral numbers become int64, other numbers float64.
func fromJSON(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", x, err)
		}
		return f, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			c, err := fromJSON(item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			c, err := fromJSON(item)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	default:
		return x, nil
	}
}

// toFloat returns the numeric value of an int64 or float64 cell.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
