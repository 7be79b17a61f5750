// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package structural

import (
	"maps"
	"net/mail"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/goccy/go-json"
)

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// equal compares two decoded JSON values. Numbers compare by value, so 1
// and 1.0 are equal.
func equal(a, b any) bool {
	if x, ok := document.Float(a); ok {
		y, ok := document.Float(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// render formats a value as compact JSON for messages.
func render(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(b)
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// checkFormat validates the formats reported by the native engine. known is
// false for formats it does not check.
func checkFormat(format, s string) (ok, known bool) {
	switch format {
	case "uri":
		u, err := url.Parse(s)
		return err == nil && u.IsAbs(), true
	case "uri-reference":
		_, err := url.Parse(s)
		return err == nil, true
	case "date-time":
		_, err := time.Parse(time.RFC3339, s)
		return err == nil, true
	case "date":
		_, err := time.Parse(time.DateOnly, s)
		return err == nil, true
	case "email":
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s, true
	}
	return true, false
}
