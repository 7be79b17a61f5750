// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jsonld

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// processor turns one context source into a mapping. Terms of prior are
// visible as prefixes; redefinitions inside the source are collisions.
type processor struct {
	r     *Resolver
	ctx   context.Context
	prior *ContextMapping
	out   *ContextMapping
	// reset is set once a null entry cleared the active context, which
	// drops the terms of prior as well.
	reset bool
}

// value processes a @context value: a URI, an object, an array or null.
// base is the URI of the document holding the value, stack the chain of
// context URIs being processed.
func (p *processor) value(v any, base, label string, stack []string) error {
	switch v := v.(type) {
	case nil:
		collisions := p.out.Collisions
		p.out = NewContextMapping()
		p.out.Collisions = collisions
		p.prior = nil
		p.reset = true
		return nil
	case string:
		uri, err := resolveURI(base, v)
		if err != nil {
			return &ContextLoadError{URI: v, Err: err}
		}
		doc, err := p.enter(uri, stack)
		if err != nil {
			return err
		}
		return p.value(doc, uri, uri, append(slices.Clip(stack), uri))
	case []any:
		for _, item := range v {
			if err := p.value(item, base, label, stack); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return p.object(v, base, label, stack)
	default:
		return &ContextLoadError{URI: label, Err: fmt.Errorf("invalid @context entry of type %T", v)}
	}
}

// enter loads uri after checking it is not already being processed.
func (p *processor) enter(uri string, stack []string) (any, error) {
	if slices.Contains(stack, uri) {
		chain := append(slices.Clone(stack), uri)
		return nil, &ContextCycleError{URI: uri, Chain: chain}
	}
	return p.r.Load(p.ctx, uri)
}

func (p *processor) object(obj map[string]any, base, label string, stack []string) error {
	if imp, ok := obj[KeywordImport]; ok {
		ref, ok := imp.(string)
		if !ok {
			return &ContextLoadError{URI: label, Err: fmt.Errorf("@import must be a string, got %T", imp)}
		}
		uri, err := resolveURI(base, ref)
		if err != nil {
			return &ContextLoadError{URI: ref, Err: err}
		}
		doc, err := p.enter(uri, stack)
		if err != nil {
			return err
		}
		imported, ok := doc.(map[string]any)
		if !ok {
			return &ContextLoadError{URI: uri, Err: fmt.Errorf("imported context must be an object, got %T", doc)}
		}
		if _, nested := imported[KeywordImport]; nested {
			return &ContextLoadError{URI: uri, Err: fmt.Errorf("imported context must not contain @import")}
		}
		merged := maps.Clone(imported)
		for k, v := range obj {
			if k != KeywordImport {
				merged[k] = v
			}
		}
		obj = merged
	}

	if v, ok := obj[KeywordBase]; ok {
		if s, ok := v.(string); ok {
			p.out.Base = s
		}
	}
	defining := make(map[string]bool)
	if v, ok := obj[KeywordVocab]; ok {
		switch s := v.(type) {
		case string:
			iri, err := p.expand(s, obj, label, defining)
			if err != nil {
				return err
			}
			p.out.Vocab = iri
		case nil:
			p.out.Vocab = ""
		}
	}

	for _, term := range slices.Sorted(maps.Keys(obj)) {
		if IsKeyword(term) {
			continue
		}
		if err := p.define(term, obj, label, defining); err != nil {
			return err
		}
	}
	return nil
}

// define creates the definition of term from the local context object,
// defining any local prefixes it depends on first. A term whose definition
// refers back to itself falls through to prior definitions and @vocab.
func (p *processor) define(term string, local map[string]any, label string, defining map[string]bool) error {
	if _, seen := defining[term]; seen {
		return nil
	}
	defining[term] = true

	var t Term
	t.Source = label
	switch v := local[term].(type) {
	case nil:
	case string:
		iri, err := p.expand(v, local, label, defining)
		if err != nil {
			return err
		}
		t.IRI = iri
	case map[string]any:
		idValue, hasID := v[KeywordID]
		if rev, ok := v[KeywordReverse].(string); ok && !hasID {
			idValue, hasID = rev, true
		}
		switch id := idValue.(type) {
		case string:
			iri, err := p.expand(id, local, label, defining)
			if err != nil {
				return err
			}
			t.IRI = iri
		case nil:
			if !hasID {
				iri, err := p.implicitIRI(term, local, label, defining)
				if err != nil {
					return err
				}
				t.IRI = iri
			}
		default:
			return &ContextLoadError{URI: label, Err: fmt.Errorf("term %q: @id must be a string", term)}
		}
		if typ, ok := v[KeywordType].(string); ok {
			if IsKeyword(typ) {
				t.Type = typ
			} else {
				iri, err := p.expand(typ, local, label, defining)
				if err != nil {
					return err
				}
				t.Type = iri
			}
		}
		switch c := v[KeywordContainer].(type) {
		case string:
			t.Container = c
		case []any:
			parts := make([]string, 0, len(c))
			for _, x := range c {
				if s, ok := x.(string); ok {
					parts = append(parts, s)
				}
			}
			t.Container = strings.Join(parts, " ")
		}
	default:
		return &ContextLoadError{URI: label, Err: fmt.Errorf("term %q: invalid definition of type %T", term, v)}
	}

	if prev, ok := p.out.Terms[term]; ok && collides(prev, t) {
		p.out.Collisions = append(p.out.Collisions, Collision{
			Term:           term,
			Previous:       prev.IRI,
			PreviousSource: prev.Source,
			IRI:            t.IRI,
			Source:         t.Source,
		})
	}
	p.out.Terms[term] = t
	return nil
}

// implicitIRI derives the IRI of a definition without @id.
func (p *processor) implicitIRI(term string, local map[string]any, label string, defining map[string]bool) (string, error) {
	if strings.Contains(term, ":") {
		return p.expand(term, local, label, defining)
	}
	if vocab := p.vocab(); vocab != "" {
		return vocab + term, nil
	}
	return "", &ContextLoadError{URI: label, Err: fmt.Errorf("term %q has no IRI mapping", term)}
}

// expand turns a term, compact IRI or IRI into an absolute IRI using the
// definitions known so far.
func (p *processor) expand(v string, local map[string]any, label string, defining map[string]bool) (string, error) {
	if IsKeyword(v) {
		return v, nil
	}
	if prefix, suffix, ok := strings.Cut(v, ":"); ok {
		if prefix == "_" || strings.HasPrefix(suffix, "//") {
			return v, nil
		}
		iri, err := p.lookup(prefix, local, label, defining)
		if err != nil {
			return "", err
		}
		if iri != "" {
			return iri + suffix, nil
		}
		return v, nil
	}
	iri, err := p.lookup(v, local, label, defining)
	if err != nil {
		return "", err
	}
	if iri != "" {
		return iri, nil
	}
	if vocab := p.vocab(); vocab != "" {
		return vocab + v, nil
	}
	return v, nil
}

// lookup returns the IRI of a term defined locally, earlier in this source
// or by a prior source.
func (p *processor) lookup(term string, local map[string]any, label string, defining map[string]bool) (string, error) {
	if _, ok := local[term]; ok {
		if err := p.define(term, local, label, defining); err != nil {
			return "", err
		}
	}
	if t, ok := p.out.Terms[term]; ok {
		return t.IRI, nil
	}
	if t, ok := p.prior.Get(term); ok {
		return t.IRI, nil
	}
	return "", nil
}

func (p *processor) vocab() string {
	if p.out.Vocab != "" {
		return p.out.Vocab
	}
	if p.prior != nil {
		return p.prior.Vocab
	}
	return ""
}
