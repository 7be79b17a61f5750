// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import "iter"

// RefResolver resolves a schema holding a $ref to the referenced schema.
// Return nil if the ref cannot be resolved.
type RefResolver func(s *Schema) *Schema

// Traverse returns an iterator over all schemas in the tree.
// It handles cycles by tracking visited schemas.
// If resolver is provided, it follows $ref links to their targets.
func Traverse(schema *Schema, resolver RefResolver) iter.Seq[*Schema] {
	return func(yield func(*Schema) bool) {
		visited := make(map[*Schema]struct{})
		traverseWithVisited(schema, resolver, yield, visited)
	}
}

func traverseWithVisited(schema *Schema, resolver RefResolver, yield func(*Schema) bool, visited map[*Schema]struct{}) bool {
	if schema == nil {
		return true
	}
	if _, ok := visited[schema]; ok {
		return true
	}
	visited[schema] = struct{}{}

	if !yield(schema) {
		return false
	}

	if schema.Ref != "" && resolver != nil {
		if resolved := resolver(schema); resolved != nil {
			if !traverseWithVisited(resolved, resolver, yield, visited) {
				return false
			}
		}
	}

	for _, s := range children(schema) {
		if !traverseWithVisited(s, resolver, yield, visited) {
			return false
		}
	}
	return true
}

// children lists the direct sub-schemas of s in a stable order.
func children(s *Schema) []*Schema {
	var out []*Schema
	add := func(c ...*Schema) {
		for _, x := range c {
			if x != nil {
				out = append(out, x)
			}
		}
	}

	// Objects
	for _, k := range sortedKeys(s.Properties) {
		add(s.Properties[k])
	}
	for _, k := range sortedKeys(s.PatternProperties) {
		add(s.PatternProperties[k])
	}
	add(s.AdditionalProperties, s.PropertyNames, s.UnevaluatedProperties)

	// Arrays
	add(s.Items)
	add(s.PrefixItems...)
	add(s.AdditionalItems, s.Contains, s.UnevaluatedItems)

	// Logic
	add(s.AllOf...)
	add(s.AnyOf...)
	add(s.OneOf...)
	add(s.Not)

	// Conditional
	add(s.If, s.Then, s.Else)
	for _, k := range sortedKeys(s.DependentSchemas) {
		add(s.DependentSchemas[k])
	}

	// Other
	add(s.ContentSchema)
	for _, k := range sortedKeys(s.Defs) {
		add(s.Defs[k])
	}
	for _, k := range sortedKeys(s.Definitions) {
		add(s.Definitions[k])
	}
	return out
}
