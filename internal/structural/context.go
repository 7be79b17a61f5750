// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package structural

import (
	"strings"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/violation"
)

const contextKey = "@context"

// checkContext reports @context entries of the document root that are
// neither strings nor objects (errors) and string entries that neither the
// schema nor the caller recognize (warnings).
func checkContext(doc *document.Document, schema *jschema.SchemaDocument, known []string) []violation.Violation {
	raw, ok := doc.Root[contextKey]
	if !ok {
		return nil
	}
	accepted := acceptedContexts(schema)
	for _, k := range known {
		accepted[normalizeContextURI(k)] = struct{}{}
	}

	var out []violation.Violation
	check := func(v any, path string) {
		switch v := v.(type) {
		case string:
			if _, ok := accepted[normalizeContextURI(v)]; !ok {
				out = append(out, violation.New(violation.Structural, violation.Warning, path,
					violation.RuleUnknownContextEntry, "context %q is not recognized by the schema", v))
			}
		case map[string]any:
		default:
			out = append(out, violation.New(violation.Structural, violation.Error, path,
				violation.RuleInvalidContext, "context entry must be a string or an object, got %s", document.KindOf(v)))
		}
	}

	base := violation.Join(violation.Root, contextKey)
	if list, ok := raw.([]any); ok {
		for i, item := range list {
			check(item, violation.Index(base, i))
		}
		return out
	}
	check(raw, base)
	return out
}

// acceptedContexts collects the string values the schema enumerates for the
// root @context property (const and enum, through refs and combinators).
func acceptedContexts(schema *jschema.SchemaDocument) map[string]struct{} {
	accepted := make(map[string]struct{})
	if schema == nil || schema.Root == nil {
		return accepted
	}
	prop, ok := schema.Root.Properties[contextKey]
	if !ok {
		return accepted
	}
	for s := range jschema.Traverse(prop, schema.Resolve) {
		if s.Const != nil {
			if str, ok := (*s.Const).(string); ok {
				accepted[normalizeContextURI(str)] = struct{}{}
			}
		}
		for _, e := range s.Enum {
			if str, ok := e.(string); ok {
				accepted[normalizeContextURI(str)] = struct{}{}
			}
		}
	}
	return accepted
}

func normalizeContextURI(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "#"), "/")
}
