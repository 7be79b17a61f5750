// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package semantic checks the meaning of a structurally valid document:
// terms must resolve through the JSON-LD context, units must be QUDT units
// and the provenance steps must form an acyclic chain.
package semantic

import (
	"log/slog"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/violation"
)

// Option configures a Checker.
type Option func(*Checker)

// WithTermSeverity sets the severity of unresolved-term findings.
func WithTermSeverity(sev violation.Severity) Option {
	return func(c *Checker) { c.termSeverity = sev }
}

// WithUnitSeverity sets the severity of non-qudt-unit findings.
func WithUnitSeverity(sev violation.Severity) Option {
	return func(c *Checker) { c.unitSeverity = sev }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Checker runs the semantic checks. It holds no per-document state and is
// safe for concurrent use.
type Checker struct {
	termSeverity violation.Severity
	unitSeverity violation.Severity
	logger       *slog.Logger
}

// NewChecker returns a Checker reporting unresolved terms as errors and
// non-QUDT units as warnings unless configured otherwise.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		termSeverity: violation.Error,
		unitSeverity: violation.Warning,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns the semantic violations of doc, sorted. A nil mapping
// skips the term check; units, provenance and collisions are still
// checked.
func (c *Checker) Check(doc *document.Document, mapping *jsonld.ContextMapping) []violation.Violation {
	var out []violation.Violation
	if mapping != nil {
		out = append(out, c.checkTerms(doc.Root, mapping)...)
		out = append(out, collisions(mapping)...)
	}
	out = append(out, c.checkUnits(doc.Root, mapping)...)
	out = append(out, checkProvenance(doc.Root)...)

	out = violation.Sorted(out)
	c.logger.Debug("semantic checks done", "document", doc.Name, "violations", len(out))
	return out
}

func collisions(m *jsonld.ContextMapping) []violation.Violation {
	out := make([]violation.Violation, 0, len(m.Collisions))
	for _, col := range m.Collisions {
		out = append(out, violation.New(violation.Semantic, violation.Warning,
			violation.Join(violation.Root, jsonld.KeywordContext), violation.RuleContextCollision,
			"term %q maps to %s in %s and is redefined to %s in %s",
			col.Term, col.Previous, col.PreviousSource, col.IRI, col.Source))
	}
	return out
}

func (c *Checker) report(sev violation.Severity, path string, rule violation.Rule, format string, args ...any) violation.Violation {
	return violation.New(violation.Semantic, sev, path, rule, format, args...)
}

// walk visits every object of v in key order. visit returns false to skip
// the children of key. Subtrees of @json terms and inline @context values
// are never visited.
func walk(v any, path string, mapping *jsonld.ContextMapping, visit func(obj map[string]any, key, path string) bool) {
	switch x := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(x) {
			child := violation.Join(path, k)
			if !visit(x, k, child) {
				continue
			}
			if k == jsonld.KeywordContext || mapping.IsJSONLiteral(k) {
				continue
			}
			walk(x[k], child, mapping, visit)
		}
	case []any:
		for i, item := range x {
			walk(item, violation.Index(path, i), mapping, visit)
		}
	}
}
