// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package structural

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/violation"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type finding struct {
	Path     string
	Rule     violation.Rule
	Severity violation.Severity
}

func findings(vs []violation.Violation) []finding {
	out := make([]finding, 0, len(vs))
	for _, v := range vs {
		out = append(out, finding{v.Path, v.Rule, v.Severity})
	}
	return out
}

func loadStudySchema(t *testing.T) *jschema.SchemaDocument {
	t.Helper()
	loader := jschema.NewLoader(os.DirFS("testdata"))
	doc, err := loader.Load(context.Background(), "study.json", jschema.LoadOptions{})
	require.NoError(t, err)
	return doc
}

func inlineSchema(t *testing.T, schema string) *jschema.SchemaDocument {
	t.Helper()
	fsys := fstest.MapFS{"s.json": &fstest.MapFile{Data: []byte(schema)}}
	doc, err := jschema.NewLoader(fsys).Load(context.Background(), "s.json", jschema.LoadOptions{})
	require.NoError(t, err)
	return doc
}

// studyDoc returns valid.jsonld with edit applied.
func studyDoc(t *testing.T, edit func(m map[string]any)) *document.Document {
	t.Helper()
	data, err := os.ReadFile("testdata/valid.jsonld")
	require.NoError(t, err)
	if edit != nil {
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		edit(m)
		data, err = json.Marshal(m)
		require.NoError(t, err)
	}
	doc, err := document.Parse("study.jsonld", data)
	require.NoError(t, err)
	return doc
}

func participant(m map[string]any) map[string]any {
	return m["participant"].(map[string]any)
}

func TestValidate_Native(t *testing.T) {
	schema := loadStudySchema(t)

	tests := []struct {
		name string
		edit func(m map[string]any)
		want []finding
	}{
		{"valid", nil, []finding{}},
		{
			"wrong type at participant.age",
			func(m map[string]any) { participant(m)["age"] = "34" },
			[]finding{{"participant.age", violation.RuleType, violation.Error}},
		},
		{
			"missing nested required property",
			func(m map[string]any) { delete(participant(m), "id") },
			[]finding{{"participant.id", violation.RuleRequired, violation.Error}},
		},
		{
			"missing top-level required property",
			func(m map[string]any) { delete(m, "title") },
			[]finding{{"title", violation.RuleRequired, violation.Error}},
		},
		{
			"type failure suppresses other rules",
			func(m map[string]any) { m["participant"] = "p-1" },
			[]finding{{"participant", violation.RuleType, violation.Error}},
		},
		{
			"additional property",
			func(m map[string]any) { m["color"] = "red" },
			[]finding{{"color", violation.RuleAdditionalProperties, violation.Error}},
		},
		{
			"property needing brackets",
			func(m map[string]any) { m["two words"] = 1 },
			[]finding{{`$["two words"]`, violation.RuleAdditionalProperties, violation.Error}},
		},
		{
			"duplicate items",
			func(m map[string]any) { m["tags"] = []any{"a", "a"} },
			[]finding{{"tags", violation.RuleUniqueItems, violation.Error}},
		},
		{
			"too many items",
			func(m map[string]any) { m["tags"] = []any{"a", "b", "c", "d"} },
			[]finding{{"tags", violation.RuleMaxItems, violation.Error}},
		},
		{
			"item type",
			func(m map[string]any) { m["tags"] = []any{"a", 1} },
			[]finding{{"tags[1]", violation.RuleType, violation.Error}},
		},
		{
			"maximum",
			func(m map[string]any) { m["score"] = 101 },
			[]finding{{"score", violation.RuleMaximum, violation.Error}},
		},
		{
			"minimum",
			func(m map[string]any) { m["score"] = -1 },
			[]finding{{"score", violation.RuleMinimum, violation.Error}},
		},
		{
			"multipleOf",
			func(m map[string]any) { m["score"] = 87.3 },
			[]finding{{"score", violation.RuleMultipleOf, violation.Error}},
		},
		{
			"format is a warning",
			func(m map[string]any) { m["homepage"] = "not a uri" },
			[]finding{{"homepage", violation.RuleFormat, violation.Warning}},
		},
		{
			"pattern",
			func(m map[string]any) { m["code"] = "abc" },
			[]finding{{"code", violation.RulePattern, violation.Error}},
		},
		{
			"minLength",
			func(m map[string]any) { m["title"] = "ab" },
			[]finding{{"title", violation.RuleMinLength, violation.Error}},
		},
		{
			"enum",
			func(m map[string]any) { m["status"] = "other" },
			[]finding{{"status", violation.RuleEnum, violation.Error}},
		},
		{
			"anyOf reports the first branch on ties",
			func(m map[string]any) { m["unit"] = map[string]any{"label": "second"} },
			[]finding{{"unit", violation.RuleType, violation.Error}},
		},
		{
			"anyOf match drops branch warnings",
			func(m map[string]any) { m["unit"] = "seconds" },
			[]finding{},
		},
		{
			"oneOf reports the closest branch",
			func(m map[string]any) { m["sample"] = map[string]any{"kind": "blood"} },
			[]finding{{"sample.volume", violation.RuleRequired, violation.Error}},
		},
		{
			"dependentRequired",
			func(m map[string]any) { m["window"] = map[string]any{"start": 1} },
			[]finding{{"window.end", violation.RuleDependentRequired, violation.Error}},
		},
		{
			"if/else",
			func(m map[string]any) { m["flag"] = false },
			[]finding{{"flag", violation.RuleType, violation.Error}},
		},
		{
			"prefixItems",
			func(m map[string]any) { m["pair"] = []any{1, 1} },
			[]finding{{"pair[0]", violation.RuleType, violation.Error}},
		},
		{
			"items false",
			func(m map[string]any) { m["pair"] = []any{"a", 1, 2} },
			[]finding{{"pair[2]", violation.RuleItems, violation.Error}},
		},
		{
			"several findings are sorted by path",
			func(m map[string]any) {
				m["status"] = "other"
				m["code"] = "abc"
				delete(participant(m), "id")
			},
			[]finding{
				{"code", violation.RulePattern, violation.Error},
				{"participant.id", violation.RuleRequired, violation.Error},
				{"status", violation.RuleEnum, violation.Error},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs, err := Validate(studyDoc(t, tt.edit), schema, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, findings(vs))
		})
	}
}

func TestValidate_Context(t *testing.T) {
	schema := loadStudySchema(t)

	tests := []struct {
		name  string
		value any
		known []string
		want  []finding
	}{
		{"accepted by schema", "https://example.org/context", nil, []finding{}},
		{"unknown entry", "https://other.example/ctx", nil, []finding{{"@context", violation.RuleUnknownContextEntry, violation.Warning}}},
		{"known by caller", "https://other.example/ctx", []string{"https://other.example/ctx"}, []finding{}},
		{"invalid entry", 5, nil, []finding{{"@context", violation.RuleInvalidContext, violation.Error}}},
		{
			"array",
			[]any{"https://example.org/context", map[string]any{"x": "http://example.org/x"}, true},
			nil,
			[]finding{{"@context[2]", violation.RuleInvalidContext, violation.Error}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := studyDoc(t, func(m map[string]any) { m["@context"] = tt.value })
			for _, engine := range Engines {
				vs, err := Validate(doc, schema, Options{Engine: engine, KnownContexts: tt.known})
				require.NoError(t, err)
				assert.Equal(t, tt.want, findings(vs), "engine %s", engine)
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		doc := studyDoc(t, func(m map[string]any) { delete(m, "@context") })
		vs, err := Validate(doc, schema, Options{})
		require.NoError(t, err)
		assert.Equal(t, []finding{{"@context", violation.RuleRequired, violation.Error}}, findings(vs))
	})
}

func TestValidate_Compiled(t *testing.T) {
	schema := loadStudySchema(t)

	tests := []struct {
		name string
		edit func(m map[string]any)
		want []finding
	}{
		{"valid", nil, []finding{}},
		{
			"wrong type at participant.age",
			func(m map[string]any) { participant(m)["age"] = "34" },
			[]finding{{"participant.age", violation.RuleType, violation.Error}},
		},
		{
			"missing required property",
			func(m map[string]any) { delete(participant(m), "id") },
			[]finding{{"participant.id", violation.RuleRequired, violation.Error}},
		},
		{
			"additional property",
			func(m map[string]any) { m["color"] = "red" },
			[]finding{{"color", violation.RuleAdditionalProperties, violation.Error}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs, err := Validate(studyDoc(t, tt.edit), schema, Options{Engine: Compiled})
			require.NoError(t, err)
			assert.Equal(t, tt.want, findings(vs))
		})
	}
}

func TestValidate_CompiledNeedsMetaValidation(t *testing.T) {
	loader := jschema.NewLoader(os.DirFS("testdata"), jschema.WithMetaValidation(false))
	schema, err := loader.Load(context.Background(), "study.json", jschema.LoadOptions{})
	require.NoError(t, err)

	_, err = Validate(studyDoc(t, nil), schema, Options{Engine: Compiled})
	assert.ErrorIs(t, err, ErrNotCompiled)
}

func TestValidate_Keywords(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		doc    string
		want   []finding
	}{
		{
			"duplicate findings collapse",
			`{"allOf": [{"required": ["a"]}], "required": ["a"]}`,
			`{}`,
			[]finding{{"a", violation.RuleRequired, violation.Error}},
		},
		{
			"oneOf with several matches",
			`{"properties": {"n": {"oneOf": [{"type": "number"}, {"minimum": 0}]}}}`,
			`{"n": 5}`,
			[]finding{{"n", violation.RuleOneOf, violation.Error}},
		},
		{
			"contains",
			`{"properties": {"l": {"contains": {"const": "x"}}}}`,
			`{"l": ["a"]}`,
			[]finding{{"l", violation.RuleContains, violation.Error}},
		},
		{
			"minContains",
			`{"properties": {"l": {"contains": {"const": "x"}, "minContains": 2}}}`,
			`{"l": ["x", "a"]}`,
			[]finding{{"l", violation.RuleMinContains, violation.Error}},
		},
		{
			"maxContains",
			`{"properties": {"l": {"contains": {"const": "x"}, "maxContains": 1}}}`,
			`{"l": ["x", "x"]}`,
			[]finding{{"l", violation.RuleMaxContains, violation.Error}},
		},
		{
			"not",
			`{"properties": {"s": {"not": {"type": "string"}}}}`,
			`{"s": "x"}`,
			[]finding{{"s", violation.RuleNot, violation.Error}},
		},
		{
			"const with numbers",
			`{"properties": {"v": {"const": 1}}}`,
			`{"v": 1.0}`,
			[]finding{},
		},
		{
			"integer type accepts 2.0",
			`{"properties": {"v": {"type": "integer"}, "w": {"type": "integer"}}}`,
			`{"v": 2.0, "w": 2.5}`,
			[]finding{{"w", violation.RuleType, violation.Error}},
		},
		{
			"exclusive bounds",
			`{"properties": {"v": {"exclusiveMinimum": 0, "exclusiveMaximum": 1}}}`,
			`{"v": 1}`,
			[]finding{{"v", violation.RuleExclusiveMaximum, violation.Error}},
		},
		{
			"min and max properties",
			`{"properties": {"o": {"minProperties": 2}, "p": {"maxProperties": 0}}}`,
			`{"o": {"a": 1}, "p": {"a": 1}}`,
			[]finding{
				{"o", violation.RuleMinProperties, violation.Error},
				{"p", violation.RuleMaxProperties, violation.Error},
			},
		},
		{
			"propertyNames",
			`{"propertyNames": {"pattern": "^[a-z]+$"}}`,
			`{"ok": 1, "Bad": 2}`,
			[]finding{{"Bad", violation.RulePropertyNames, violation.Error}},
		},
		{
			"patternProperties and additionalProperties schema",
			`{"patternProperties": {"^x-": {"type": "string"}}, "additionalProperties": {"type": "number"}}`,
			`{"x-a": 1, "b": "s"}`,
			[]finding{
				{"b", violation.RuleType, violation.Error},
				{"x-a", violation.RuleType, violation.Error},
			},
		},
		{
			"dependentSchemas",
			`{"dependentSchemas": {"a": {"required": ["b"]}}}`,
			`{"a": 1}`,
			[]finding{{"b", violation.RuleRequired, violation.Error}},
		},
		{
			"false schema",
			`{"properties": {"never": false}}`,
			`{"never": 1}`,
			[]finding{{"never", violation.RuleFalseSchema, violation.Error}},
		},
		{
			"unevaluatedProperties sees allOf and properties",
			`{"allOf": [{"properties": {"a": {"type": "string"}}}], "properties": {"b": true}, "unevaluatedProperties": false}`,
			`{"a": "x", "b": 1, "extra": 1}`,
			[]finding{{"extra", violation.RuleUnevaluatedProperties, violation.Error}},
		},
		{
			"unevaluatedProperties ignores failing branches",
			`{"anyOf": [{"properties": {"a": {"type": "string"}}, "required": ["a"]}, {"properties": {"b": true}}], "unevaluatedProperties": false}`,
			`{"a": 1, "b": 1}`,
			[]finding{{"a", violation.RuleUnevaluatedProperties, violation.Error}},
		},
		{
			"unevaluatedProperties schema",
			`{"properties": {"a": true}, "unevaluatedProperties": {"type": "number"}}`,
			`{"a": "x", "b": "y"}`,
			[]finding{{"b", violation.RuleType, violation.Error}},
		},
		{
			"unevaluatedProperties through ref and if",
			`{"$defs": {"base": {"properties": {"a": true}}}, "$ref": "#/$defs/base", "if": {"required": ["k"]}, "then": {"properties": {"k": true, "t": true}}, "unevaluatedProperties": false}`,
			`{"a": 1, "k": 1, "t": 1, "u": 1}`,
			[]finding{{"u", violation.RuleUnevaluatedProperties, violation.Error}},
		},
		{
			"unevaluatedItems after prefixItems",
			`{"properties": {"list": {"prefixItems": [{"type": "string"}], "unevaluatedItems": false}}}`,
			`{"list": ["s", 2]}`,
			[]finding{{"list[1]", violation.RuleUnevaluatedItems, violation.Error}},
		},
		{
			"unevaluatedItems counts contains matches",
			`{"properties": {"list": {"contains": {"type": "string"}, "unevaluatedItems": {"type": "boolean"}}}}`,
			`{"list": ["s", true, 3]}`,
			[]finding{{"list[2]", violation.RuleType, violation.Error}},
		},
		{
			"dynamicRef is reported",
			`{"$defs": {"n": {"$dynamicAnchor": "n", "type": "string"}}, "properties": {"v": {"$dynamicRef": "#n"}}}`,
			`{"v": 1}`,
			[]finding{{"v", violation.RuleUnsupportedKeyword, violation.Error}},
		},
		{
			"recursive ref",
			`{"$defs": {"node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/node"}, "v": {"type": "integer"}}}}, "$ref": "#/$defs/node"}`,
			`{"next": {"next": {"v": "x"}}}`,
			[]finding{{"next.next.v", violation.RuleType, violation.Error}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := inlineSchema(t, tt.schema)
			doc, err := document.Parse("doc.json", []byte(tt.doc))
			require.NoError(t, err)
			vs, err := Validate(doc, schema, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, findings(vs))
		})
	}
}

func TestValidate_UnevaluatedEnginesAgree(t *testing.T) {
	schema := inlineSchema(t, `{
		"allOf": [{"properties": {"a": {"type": "string"}}}],
		"properties": {"list": {"prefixItems": [{"type": "string"}], "unevaluatedItems": false}},
		"unevaluatedProperties": false
	}`)
	doc, err := document.Parse("doc.json", []byte(`{"a": "x", "extra": 1, "list": ["s", 2]}`))
	require.NoError(t, err)

	want := []finding{
		{"extra", violation.RuleUnevaluatedProperties, violation.Error},
		{"list[1]", violation.RuleUnevaluatedItems, violation.Error},
	}
	for _, engine := range Engines {
		t.Run(string(engine), func(t *testing.T) {
			vs, err := Validate(doc, schema, Options{Engine: engine})
			require.NoError(t, err)
			assert.Equal(t, want, findings(vs))
		})
	}
}

func TestValidate_DoesNotMutateDocument(t *testing.T) {
	schema := loadStudySchema(t)
	doc := studyDoc(t, func(m map[string]any) { participant(m)["age"] = "34" })
	before, err := json.Marshal(doc.Root)
	require.NoError(t, err)

	for _, engine := range Engines {
		_, err := Validate(doc, schema, Options{Engine: engine})
		require.NoError(t, err)
	}

	after, err := json.Marshal(doc.Root)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{"", Native, false},
		{"native", Native, false},
		{"compiled", Compiled, false},
		{"fast", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEngine(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownEngine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
