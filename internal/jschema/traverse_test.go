// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadJSON(t *testing.T, data string) *Schema {
	t.Helper()
	s, err := parseSchema([]byte(data))
	require.NoError(t, err)
	return s
}

func parseFile(t *testing.T, name string) *Schema {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	js, err := toJSON(data, FormatFromPath(name))
	require.NoError(t, err)
	s, err := parseSchema(js)
	require.NoError(t, err)
	return s
}

func TestTraverse_SimpleSchema(t *testing.T) {
	schema := parseFile(t, "simple.yaml")

	var types []string
	for s := range Traverse(schema, nil) {
		types = append(types, s.Type)
	}

	// Root + 2 properties in key order (age, name)
	assert.Equal(t, []string{"object", "integer", "string"}, types)
}

func TestTraverse_Keywords(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   int
	}{
		{"items", `{"type":"array","items":{"type":"object","properties":{"item":{"type":"string"}}}}`, 3},
		{"prefixItems", `{"prefixItems":[{"type":"string"},{"type":"number"}]}`, 3},
		{"contains", `{"contains":{"type":"string"}}`, 2},
		{"oneOf", `{"oneOf":[{"type":"string"},{"type":"number"},{"type":"null"}]}`, 4},
		{"not", `{"not":{"type":"null"}}`, 2},
		{"conditional", `{"if":{"required":["a"]},"then":{"required":["b"]},"else":{"required":["c"]}}`, 4},
		{"patternProperties", `{"patternProperties":{"^x-":{"type":"string"}}}`, 2},
		{"additionalProperties", `{"additionalProperties":{"type":"string"}}`, 2},
		{"propertyNames", `{"propertyNames":{"pattern":"^[a-z]+$"}}`, 2},
		{"dependentSchemas", `{"dependentSchemas":{"a":{"required":["b"]}}}`, 2},
		{"unevaluated", `{"unevaluatedProperties":{"type":"string"},"unevaluatedItems":{"type":"number"}}`, 3},
		{"definitions", `{"definitions":{"a":{"type":"string"}},"$defs":{"b":{"type":"string"}}}`, 3},
		{"contentSchema", `{"contentSchema":{"type":"object"}}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := loadJSON(t, tt.schema)
			var count int
			for range Traverse(schema, nil) {
				count++
			}
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestTraverse_Complex(t *testing.T) {
	schema := parseFile(t, "complex.json")

	var count int
	for range Traverse(schema, nil) {
		count++
	}

	// Root + items + 2 allOf + their 2 properties + 2 anyOf + if + then
	assert.Equal(t, 10, count)
}

func TestTraverse_WithDefs(t *testing.T) {
	schema := parseFile(t, "with-defs.json")

	var count int
	for range Traverse(schema, nil) {
		count++
	}

	// Root + address property (ref) + $defs/address + its 2 properties
	assert.Equal(t, 5, count)
}

func TestTraverse_CircularRefs(t *testing.T) {
	node := &Schema{Type: "object"}
	ref := &Schema{Ref: "#"}
	node.Properties = map[string]*Schema{"self": ref}

	resolver := func(s *Schema) *Schema {
		if s == ref {
			return node
		}
		return nil
	}

	var count int
	for range Traverse(node, resolver) {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestTraverse_WithResolver(t *testing.T) {
	target := &Schema{Type: "object", Properties: map[string]*Schema{"id": {Type: "string"}}}
	ref := &Schema{Ref: "other.json"}
	root := &Schema{Properties: map[string]*Schema{"data": ref}}

	var withResolver, without int
	for range Traverse(root, func(s *Schema) *Schema { return target }) {
		withResolver++
	}
	for range Traverse(root, nil) {
		without++
	}

	assert.Equal(t, 2, without)
	assert.Equal(t, 4, withResolver)
}

func TestTraverse_EarlyTermination(t *testing.T) {
	schema := loadJSON(t, `{"properties":{"a":{},"b":{},"c":{}},"allOf":[{},{}]}`)

	for _, stopAt := range []int{1, 2, 4} {
		var count int
		for range Traverse(schema, nil) {
			count++
			if count == stopAt {
				break
			}
		}
		assert.Equal(t, stopAt, count)
	}
}

func TestLookupPointer(t *testing.T) {
	schema := loadJSON(t, `{
		"properties": {"a/b": {"type": "string"}, "list": {"items": {"type": "integer"}}},
		"$defs": {"unit": {"anyOf": [{"const": "s"}, {"const": "ms"}]}}
	}`)

	tests := []struct {
		name     string
		ptr      string
		wantType string
		wantErr  bool
	}{
		{"root", "", "", false},
		{"escaped property", "/properties/a~1b", "string", false},
		{"items", "/properties/list/items", "integer", false},
		{"indexed", "/$defs/unit/anyOf/1", "", false},
		{"missing def", "/$defs/nope", "", true},
		{"out of range", "/$defs/unit/anyOf/5", "", true},
		{"not a schema keyword", "/type", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookupPointer(schema, tt.ptr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestLookupAnchor(t *testing.T) {
	schema := loadJSON(t, `{"$defs":{"label":{"$anchor":"label","type":"string"}}}`)
	assert.NotNil(t, lookupAnchor(schema, "label"))
	assert.Nil(t, lookupAnchor(schema, "other"))
}
