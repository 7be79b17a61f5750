// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// lookupPointer walks a JSON pointer fragment (without the leading '#')
// through the keywords of a schema tree.
func lookupPointer(root *Schema, ptr string) (*Schema, error) {
	if ptr == "" || ptr == "/" {
		return root, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("invalid JSON pointer %q", ptr)
	}
	toks := strings.Split(ptr[1:], "/")
	for i := range toks {
		toks[i] = strings.ReplaceAll(strings.ReplaceAll(toks[i], "~1", "/"), "~0", "~")
	}

	cur := root
	for i := 0; i < len(toks); i++ {
		if cur == nil {
			return nil, fmt.Errorf("pointer %q walks through a missing schema", ptr)
		}
		kw := toks[i]

		named := func(m map[string]*Schema) (*Schema, error) {
			if i+1 >= len(toks) {
				return nil, fmt.Errorf("pointer %q: %s needs a name", ptr, kw)
			}
			i++
			s, ok := m[toks[i]]
			if !ok {
				return nil, fmt.Errorf("pointer %q: %s/%s not found", ptr, kw, toks[i])
			}
			return s, nil
		}
		indexed := func(list []*Schema) (*Schema, error) {
			if i+1 >= len(toks) {
				return nil, fmt.Errorf("pointer %q: %s needs an index", ptr, kw)
			}
			i++
			n, err := strconv.Atoi(toks[i])
			if err != nil || n < 0 || n >= len(list) {
				return nil, fmt.Errorf("pointer %q: %s/%s out of range", ptr, kw, toks[i])
			}
			return list[n], nil
		}

		var next *Schema
		var err error
		switch kw {
		case "$defs":
			next, err = named(cur.Defs)
		case "definitions":
			next, err = named(cur.Definitions)
		case "properties":
			next, err = named(cur.Properties)
		case "patternProperties":
			next, err = named(cur.PatternProperties)
		case "dependentSchemas":
			next, err = named(cur.DependentSchemas)
		case "prefixItems":
			next, err = indexed(cur.PrefixItems)
		case "allOf":
			next, err = indexed(cur.AllOf)
		case "anyOf":
			next, err = indexed(cur.AnyOf)
		case "oneOf":
			next, err = indexed(cur.OneOf)
		case "items":
			next = cur.Items
		case "additionalProperties":
			next = cur.AdditionalProperties
		case "propertyNames":
			next = cur.PropertyNames
		case "unevaluatedProperties":
			next = cur.UnevaluatedProperties
		case "unevaluatedItems":
			next = cur.UnevaluatedItems
		case "additionalItems":
			next = cur.AdditionalItems
		case "contains":
			next = cur.Contains
		case "not":
			next = cur.Not
		case "if":
			next = cur.If
		case "then":
			next = cur.Then
		case "else":
			next = cur.Else
		case "contentSchema":
			next = cur.ContentSchema
		default:
			return nil, fmt.Errorf("pointer %q: keyword %q does not hold a schema", ptr, kw)
		}
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("pointer %q: %s not present", ptr, kw)
		}
		cur = next
	}
	return cur, nil
}

// lookupAnchor finds the sub-schema declaring $anchor (or $dynamicAnchor) name.
func lookupAnchor(root *Schema, name string) *Schema {
	for s := range Traverse(root, nil) {
		if s.Anchor == name || s.DynamicAnchor == name {
			return s
		}
	}
	return nil
}
