package rekodo

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/rekodo/i18n"
)

// Value equality and ordering helpers shared by the comparison and smart-match
// combinators. Numbers compare across representations (int, float64,
// json.Number) so that a validator bound works regardless of how the JSON
// layer decoded the value.

func equalValues(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok2 := asFloat(b); ok2 {
			return fa == fb
		}
		return false
	}
	return a == b
}

// compareValues returns -1, 0 or +1. Mixed numeric representations compare
// numerically; strings compare lexically. Anything else is a type error.
func compareValues(a, b any) (int, error) {
	if fa, ok := asFloat(a); ok {
		fb, ok2 := asFloat(b)
		if !ok2 {
			return 0, incomparableIssue(a, b)
		}
		switch {
		case fa < fb:
			return -1, nil
		case fa > fb:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if sa, ok := a.(string); ok {
		sb, ok2 := b.(string)
		if !ok2 {
			return 0, incomparableIssue(a, b)
		}
		return strings.Compare(sa, sb), nil
	}
	return 0, incomparableIssue(a, b)
}

func incomparableIssue(a, b any) Issues {
	return Issues{{
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, nil),
		Params:  map[string]string{"expected": fmt.Sprintf("value comparable to %T", b), "got": fmt.Sprintf("%T", a)},
	}}
}

// asFloat widens any numeric representation to float64 without accepting
// strings.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// asInt accepts integral values only: integer kinds, floats with no fractional
// part, and strings/json.Number that parse as integers.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		if float32(int64(n)) == n {
			return int64(n), true
		}
	case float64:
		if float64(int64(n)) == n {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// coerceFloat is asFloat plus numeric string parsing, for the ToFloat/Float
// coercions.
func coerceFloat(v any) (float64, bool) {
	if f, ok := asFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// coerceInt truncates floats toward zero, matching ToInt semantics.
func coerceInt(v any) (int64, bool) {
	if i, ok := asInt(v); ok {
		return i, true
	}
	if f, ok := asFloat(v); ok {
		return int64(f), true
	}
	return 0, false
}

func coerceComplex(v any) (complex128, bool) {
	switch n := v.(type) {
	case complex64:
		return complex128(n), true
	case complex128:
		return n, true
	case string:
		if c, err := strconv.ParseComplex(strings.TrimSpace(n), 128); err == nil {
			return c, true
		}
		return 0, false
	}
	if f, ok := asFloat(v); ok {
		return complex(f, 0), true
	}
	return 0, false
}
