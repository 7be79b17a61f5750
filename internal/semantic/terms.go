// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package semantic

import (
	"maps"
	"slices"

	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/violation"
)

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

// checkTerms reports object keys and @type values that do not expand to an
// IRI. Keywords are skipped.
func (c *Checker) checkTerms(root map[string]any, mapping *jsonld.ContextMapping) []violation.Violation {
	var out []violation.Violation
	walk(root, violation.Root, mapping, func(obj map[string]any, key, path string) bool {
		if key == jsonld.KeywordType {
			for i, t := range typeValues(obj[key]) {
				if t == "" {
					continue
				}
				p := path
				if _, isList := obj[key].([]any); isList {
					p = violation.Index(path, i)
				}
				if _, ok := mapping.Resolve(t); !ok {
					out = append(out, c.report(c.termSeverity, p, violation.RuleUnresolvedTerm,
						"type %q does not resolve to an IRI", t))
				}
			}
			return false
		}
		if jsonld.IsKeyword(key) {
			return true
		}
		if _, ok := mapping.Resolve(key); !ok {
			out = append(out, c.report(c.termSeverity, path, violation.RuleUnresolvedTerm,
				"term %q is not defined by the context", key))
		}
		return true
	})
	return out
}

func typeValues(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		out := make([]string, len(x))
		for i, item := range x {
			s, _ := item.(string)
			out[i] = s
		}
		return out
	}
	return nil
}
