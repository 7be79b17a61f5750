// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import (
	sjs "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaDocument is a loaded root schema with every $ref in it, and in the
// documents it references, resolved. It is immutable once returned by the
// Loader and safe for concurrent use.
type SchemaDocument struct {
	// ID is the canonical URI: $id when absolute, else the load location.
	ID string
	// Source is where the document was read from (fs path or URL).
	Source string
	// Draft is the $schema value, defaulted to Draft2020.
	Draft string
	// Root is the root validation schema.
	Root *Schema
	// Defs holds the named sub-schemas ($defs, then legacy definitions).
	Defs map[string]*Schema

	refs     map[*Schema]*Schema
	deps     []string
	compiled *sjs.Schema
}

// Resolve returns the schema referenced by s.Ref, or nil when s has no ref.
// Every ref reachable from Root is resolved at load time.
func (d *SchemaDocument) Resolve(s *Schema) *Schema {
	if s == nil || s.Ref == "" {
		return nil
	}
	return d.refs[s]
}

// Dependencies returns the URIs of other documents this schema references,
// sorted.
func (d *SchemaDocument) Dependencies() []string {
	out := make([]string, len(d.deps))
	copy(out, d.deps)
	return out
}

// Compiled returns the draft 2020-12 compiled form used for meta-validation
// and the compiled validation engine. It is nil when meta-validation was
// disabled on the Loader.
func (d *SchemaDocument) Compiled() *sjs.Schema {
	return d.compiled
}

// PropertyNames returns every property name declared anywhere in the schema
// set, following refs.
func (d *SchemaDocument) PropertyNames() map[string]struct{} {
	names := make(map[string]struct{})
	for s := range Traverse(d.Root, d.Resolve) {
		for name := range s.Properties {
			names[name] = struct{}{}
		}
		for _, name := range s.Required {
			names[name] = struct{}{}
		}
	}
	return names
}
