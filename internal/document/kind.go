// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package document

import (
	"strings"
)

// Number is the interface satisfied by the json.Number types of
// encoding/json and goccy/go-json.
type Number interface {
	Float64() (float64, error)
	String() string
}

// KindOf returns the JSON Schema type name of a decoded value: null,
// boolean, object, array, number, integer or string.
func KindOf(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case Number:
		if IsInteger(v) {
			return "integer"
		}
		return "number"
	case float64:
		if v == float64(int64(v)) {
			return "integer"
		}
		return "number"
	case int, int64:
		return "integer"
	}
	return "unknown"
}

// IsInteger reports whether n has no fractional part. 1.0 is an integer.
func IsInteger(n Number) bool {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		return true
	}
	f, err := n.Float64()
	if err != nil {
		return false
	}
	return f == float64(int64(f))
}

// Float returns the numeric value of v, or false if v is not a number.
func Float(v any) (float64, bool) {
	switch v := v.(type) {
	case Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
