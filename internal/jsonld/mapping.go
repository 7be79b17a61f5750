// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package jsonld resolves JSON-LD @context chains into a term mapping.
package jsonld

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// JSON-LD keywords used by the validator.
const (
	KeywordContext   = "@context"
	KeywordID        = "@id"
	KeywordType      = "@type"
	KeywordVocab     = "@vocab"
	KeywordBase      = "@base"
	KeywordImport    = "@import"
	KeywordContainer = "@container"
	KeywordReverse   = "@reverse"
	KeywordJSON      = "@json"
)

var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*$`)

// IsKeyword reports whether s has the form of a JSON-LD keyword.
func IsKeyword(s string) bool {
	return len(s) > 1 && s[0] == '@'
}

// Term is one term definition.
type Term struct {
	// IRI is the expanded IRI; empty when the term is explicitly unmapped.
	IRI string `json:"iri"`
	// Type is the @type of the definition (for example "@id" or "@json").
	Type string `json:"type,omitempty"`
	// Container is the @container of the definition.
	Container string `json:"container,omitempty"`
	// Source is the context that defined the term.
	Source string `json:"source,omitempty"`
}

// Collision records a term redefined to a different IRI by a later context.
type Collision struct {
	Term           string `json:"term"`
	Previous       string `json:"previous"`
	PreviousSource string `json:"previousSource,omitempty"`
	IRI            string `json:"iri"`
	Source         string `json:"source,omitempty"`
}

// ContextMapping is the merged result of a context chain. It must not be
// modified once returned by a Resolver or Merge.
type ContextMapping struct {
	Terms      map[string]Term `json:"terms"`
	Vocab      string          `json:"vocab,omitempty"`
	Base       string          `json:"base,omitempty"`
	Collisions []Collision     `json:"collisions,omitempty"`
	// Sources lists the contexts that contributed, in processing order.
	Sources []string `json:"sources,omitempty"`
}

// NewContextMapping returns an empty mapping.
func NewContextMapping() *ContextMapping {
	return &ContextMapping{Terms: make(map[string]Term)}
}

func (m *ContextMapping) clone() *ContextMapping {
	if m == nil {
		return NewContextMapping()
	}
	return &ContextMapping{
		Terms:      maps.Clone(m.Terms),
		Vocab:      m.Vocab,
		Base:       m.Base,
		Collisions: slices.Clone(m.Collisions),
		Sources:    slices.Clone(m.Sources),
	}
}

// Get returns the definition of term.
func (m *ContextMapping) Get(term string) (Term, bool) {
	if m == nil {
		return Term{}, false
	}
	t, ok := m.Terms[term]
	return t, ok
}

// TermNames returns the defined terms, sorted.
func (m *ContextMapping) TermNames() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.Terms))
}

// IsJSONLiteral reports whether term is defined with "@type": "@json".
func (m *ContextMapping) IsJSONLiteral(term string) bool {
	t, ok := m.Get(term)
	return ok && t.Type == KeywordJSON
}

// Resolve expands a term used in a document to an IRI. Plain terms use
// their definition, compact IRIs expand through their prefix, absolute IRIs
// resolve to themselves and anything else falls back to @vocab.
func (m *ContextMapping) Resolve(term string) (string, bool) {
	if term == "" {
		return "", false
	}
	if IsKeyword(term) {
		return term, true
	}
	if t, ok := m.Get(term); ok {
		return t.IRI, t.IRI != ""
	}
	if prefix, suffix, ok := strings.Cut(term, ":"); ok {
		if prefix == "_" {
			return term, true
		}
		if t, ok := m.Get(prefix); ok && t.IRI != "" && !strings.HasPrefix(suffix, "//") {
			return t.IRI + suffix, true
		}
		if schemeRe.MatchString(prefix) {
			return term, true
		}
	}
	if m != nil && m.Vocab != "" {
		return m.Vocab + term, true
	}
	return "", false
}

// Merge folds next into base in order. For each term an identical IRI is a
// no-op, a different IRI is recorded as a Collision and the later definition
// wins. Merging [A, B, C] equals merging [A, B] and then C.
func Merge(base *ContextMapping, next ...*ContextMapping) *ContextMapping {
	out := base.clone()
	for _, n := range next {
		if n == nil {
			continue
		}
		out.Collisions = append(out.Collisions, n.Collisions...)
		for _, name := range n.TermNames() {
			t := n.Terms[name]
			if prev, ok := out.Terms[name]; ok && collides(prev, t) {
				out.Collisions = append(out.Collisions, Collision{
					Term:           name,
					Previous:       prev.IRI,
					PreviousSource: prev.Source,
					IRI:            t.IRI,
					Source:         t.Source,
				})
			}
			out.Terms[name] = t
		}
		if n.Vocab != "" {
			out.Vocab = n.Vocab
		}
		if n.Base != "" {
			out.Base = n.Base
		}
		out.Sources = append(out.Sources, n.Sources...)
	}
	return out
}

func collides(prev, next Term) bool {
	return prev.IRI != "" && next.IRI != "" && prev.IRI != next.IRI
}
