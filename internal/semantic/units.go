// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package semantic

import (
	"regexp"

	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/violation"
)

var (
	unitIRI         = regexp.MustCompile(`^https?://qudt\.org/vocab/unit/[A-Za-z0-9_\-.]+$`)
	quantityKindIRI = regexp.MustCompile(`^https?://qudt\.org/vocab/quantitykind/[A-Za-z0-9_\-.]+$`)
)

const (
	unitKey         = "unit"
	quantityKindKey = "quantityKind"
	unitURIKey      = "uri"
)

// IsQUDTUnit reports whether s is a QUDT unit IRI.
func IsQUDTUnit(s string) bool {
	return unitIRI.MatchString(s)
}

// IsQUDTQuantityKind reports whether s is a QUDT quantity kind IRI.
func IsQUDTQuantityKind(s string) bool {
	return quantityKindIRI.MatchString(s)
}

// checkUnits reports unit fields that are not QUDT IRIs. A unit is either
// an IRI string or a Unit object whose optional uri (or @id) must be one.
func (c *Checker) checkUnits(root map[string]any, mapping *jsonld.ContextMapping) []violation.Violation {
	var out []violation.Violation
	walk(root, violation.Root, mapping, func(obj map[string]any, key, path string) bool {
		switch key {
		case unitKey:
			switch u := obj[key].(type) {
			case string:
				if !IsQUDTUnit(u) {
					out = append(out, c.report(c.unitSeverity, path, violation.RuleNonQUDTUnit,
						"unit %q is not a QUDT unit IRI", u))
				}
			case map[string]any:
				for _, k := range []string{unitURIKey, jsonld.KeywordID} {
					if s, ok := u[k].(string); ok && !IsQUDTUnit(s) {
						out = append(out, c.report(c.unitSeverity, violation.Join(path, k), violation.RuleNonQUDTUnit,
							"unit %q is not a QUDT unit IRI", s))
					}
				}
			}
		case quantityKindKey:
			if s, ok := obj[key].(string); ok && !IsQUDTQuantityKind(s) {
				out = append(out, c.report(c.unitSeverity, path, violation.RuleNonQUDTUnit,
					"quantity kind %q is not a QUDT quantity kind IRI", s))
			}
		}
		return true
	})
	return out
}
