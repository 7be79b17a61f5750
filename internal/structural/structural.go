// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package structural validates candidate documents against a JSON Schema
// (draft 2020-12).
package structural

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/violation"
)

// Engine selects the validation implementation.
type Engine string

const (
	// Native walks the schema tree and reports one violation per failing rule.
	Native Engine = "native"
	// Compiled validates with the compiled draft 2020-12 schema.
	Compiled Engine = "compiled"
)

// Engines lists the supported engines.
var Engines = []Engine{Native, Compiled}

var (
	// ErrUnknownEngine is returned for an engine name that is not supported.
	ErrUnknownEngine = errors.New("unknown validation engine")

	// ErrNotCompiled is returned by the compiled engine when the schema was
	// loaded without meta-validation.
	ErrNotCompiled = errors.New("schema has no compiled form")
)

// ParseEngine parses an engine name. The empty string selects Native.
func ParseEngine(s string) (Engine, error) {
	if s == "" {
		return Native, nil
	}
	e := Engine(s)
	if !slices.Contains(Engines, e) {
		return "", fmt.Errorf("%w: %q (want native or compiled)", ErrUnknownEngine, s)
	}
	return e, nil
}

// Options configure Validate.
type Options struct {
	Engine Engine
	// KnownContexts are context URIs accepted in the root @context in
	// addition to those the schema enumerates.
	KnownContexts []string
	Logger        *slog.Logger
}

// Validate checks doc against schema and returns the violations, sorted.
// The document is never modified.
func Validate(doc *document.Document, schema *jschema.SchemaDocument, opts Options) ([]violation.Violation, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	engine, err := ParseEngine(string(opts.Engine))
	if err != nil {
		return nil, err
	}

	out := checkContext(doc, schema, opts.KnownContexts)
	switch engine {
	case Compiled:
		vs, err := validateCompiled(doc, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	default:
		e := newEvaluator(schema)
		out = append(out, e.root(doc.Root)...)
	}

	out = dedupe(out)
	logger.Debug("structural validation done",
		"document", doc.Name,
		"schema", schema.ID,
		"engine", string(engine),
		"violations", len(out))
	return out, nil
}

// dedupe sorts vs and drops identical findings reported through more than
// one schema path (for example a property required by both a schema and
// the schema it extends).
func dedupe(vs []violation.Violation) []violation.Violation {
	vs = violation.Sorted(vs)
	return slices.CompactFunc(vs, func(a, b violation.Violation) bool {
		return violation.Compare(a, b) == 0
	})
}
