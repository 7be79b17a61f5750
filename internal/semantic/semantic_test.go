// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package semantic_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/rap"
	"github.com/evidencepub/rapval/internal/semantic"
	"github.com/evidencepub/rapval/internal/violation"
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

func parse(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.Parse("doc.jsonld", []byte(data))
	require.NoError(t, err)
	return doc
}

func testMapping() *jsonld.ContextMapping {
	m := jsonld.NewContextMapping()
	m.Terms = map[string]jsonld.Term{
		"schema":   {IRI: "http://schema.org/"},
		"Thing":    {IRI: "http://schema.org/Thing"},
		"name":     {IRI: "http://schema.org/name"},
		"quantity": {IRI: "https://example.org/quantity"},
		"unit":     {IRI: "http://qudt.org/schema/qudt/unit", Type: "@id"},
		"value":    {IRI: "http://schema.org/value"},
		"metadata": {IRI: "https://example.org/metadata", Type: "@json"},
		"hidden":   {},
	}
	return m
}

func TestCheck_Terms(t *testing.T) {
	doc := parse(t, `{
		"@context": {"inline": "https://example.org/inline"},
		"@type": "Thing",
		"name": "x",
		"unknown": 1,
		"hidden": 2,
		"schema:description": "compact",
		"https://example.org/p": "absolute",
		"metadata": {"anything": {"goes": true}},
		"quantity": [{"@type": ["Thing", "Other"], "value": 1}]
	}`)

	vs := semantic.NewChecker().Check(doc, testMapping())
	assert.Equal(t, []finding{
		{"hidden", violation.RuleUnresolvedTerm, violation.Error},
		{"quantity[0].@type[1]", violation.RuleUnresolvedTerm, violation.Error},
		{"unknown", violation.RuleUnresolvedTerm, violation.Error},
	}, findings(vs))
	for _, v := range vs {
		assert.Equal(t, violation.Semantic, v.Source)
	}
}

func TestCheck_TermsVocabFallback(t *testing.T) {
	m := testMapping()
	m.Vocab = "https://example.org/vocab#"
	doc := parse(t, `{"unknown": 1, "@type": "Other"}`)

	assert.Empty(t, semantic.NewChecker().Check(doc, m))
}

func TestCheck_TermSeverity(t *testing.T) {
	doc := parse(t, `{"unknown": 1}`)
	vs := semantic.NewChecker(semantic.WithTermSeverity(violation.Warning)).Check(doc, testMapping())
	assert.Equal(t, []finding{{"unknown", violation.RuleUnresolvedTerm, violation.Warning}}, findings(vs))
}

func TestCheck_NilMappingSkipsTerms(t *testing.T) {
	doc := parse(t, `{"unknown": {"unit": "seconds"}}`)
	vs := semantic.NewChecker().Check(doc, nil)
	assert.Equal(t, []finding{{"unknown.unit", violation.RuleNonQUDTUnit, violation.Warning}}, findings(vs))
}

func TestCheck_Units(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []finding
	}{
		{
			"QUDT unit IRI",
			`{"quantity": {"value": 1, "unit": "http://qudt.org/vocab/unit/SEC"}}`,
			[]finding{},
		},
		{
			"https QUDT unit IRI",
			`{"quantity": {"value": 1, "unit": "https://qudt.org/vocab/unit/MilliSEC"}}`,
			[]finding{},
		},
		{
			"plain unit name",
			`{"quantity": {"value": 1, "unit": "seconds"}}`,
			[]finding{{"quantity.unit", violation.RuleNonQUDTUnit, violation.Warning}},
		},
		{
			"other vocabulary",
			`{"quantity": {"value": 1, "unit": "http://example.org/unit/SEC"}}`,
			[]finding{{"quantity.unit", violation.RuleNonQUDTUnit, violation.Warning}},
		},
		{
			"unit object with QUDT uri",
			`{"unit": {"symbol": "s", "uri": "http://qudt.org/vocab/unit/SEC"}}`,
			[]finding{},
		},
		{
			"unit object with other uri",
			`{"unit": {"symbol": "s", "uri": "urn:unit:second"}}`,
			[]finding{{"unit.uri", violation.RuleNonQUDTUnit, violation.Warning}},
		},
		{
			"unit object with other @id",
			`{"unit": {"@id": "urn:unit:second"}}`,
			[]finding{{"unit.@id", violation.RuleNonQUDTUnit, violation.Warning}},
		},
		{
			"unit object without uri",
			`{"unit": {"symbol": "s"}}`,
			[]finding{},
		},
		{
			"quantity kind",
			`{"quantityKind": "http://qudt.org/vocab/quantitykind/Time"}`,
			[]finding{},
		},
		{
			"unit IRI used as quantity kind",
			`{"quantityKind": "http://qudt.org/vocab/unit/SEC"}`,
			[]finding{{"quantityKind", violation.RuleNonQUDTUnit, violation.Warning}},
		},
		{
			"inside a JSON literal",
			`{"metadata": {"age": {"value": 3, "unit": "year"}}}`,
			[]finding{},
		},
		{
			"in arrays",
			`{"quantity": [{"unit": "http://qudt.org/vocab/unit/SEC"}, {"unit": "ms"}]}`,
			[]finding{{"quantity[1].unit", violation.RuleNonQUDTUnit, violation.Warning}},
		},
	}

	m := testMapping()
	m.Vocab = "https://example.org/vocab#"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := semantic.NewChecker().Check(parse(t, tt.doc), m)
			assert.Equal(t, tt.want, findings(vs))
		})
	}
}

func TestCheck_UnitSeverity(t *testing.T) {
	doc := parse(t, `{"unit": "seconds"}`)
	vs := semantic.NewChecker(semantic.WithUnitSeverity(violation.Error)).Check(doc, nil)
	assert.Equal(t, []finding{{"unit", violation.RuleNonQUDTUnit, violation.Error}}, findings(vs))
}

func TestIsQUDTUnit(t *testing.T) {
	assert.True(t, semantic.IsQUDTUnit("http://qudt.org/vocab/unit/DEG_C"))
	assert.True(t, semantic.IsQUDTUnit("http://qudt.org/vocab/unit/M-PER-SEC"))
	assert.False(t, semantic.IsQUDTUnit("http://qudt.org/vocab/unit/"))
	assert.False(t, semantic.IsQUDTUnit("http://qudt.org/vocab/unit/SEC/extra"))
	assert.True(t, semantic.IsQUDTQuantityKind("https://qudt.org/vocab/quantitykind/Frequency"))
	assert.False(t, semantic.IsQUDTQuantityKind("Frequency"))
}

const stepsPath = "provenance.processingSteps"

func TestCheck_Provenance(t *testing.T) {
	tests := []struct {
		name  string
		steps string
		want  []finding
	}{
		{
			"valid chain",
			`[{"@id": "a", "stepOrder": 1}, {"@id": "b", "stepOrder": 2, "wasInformedBy": "a"}, {"stepOrder": 3, "wasInformedBy": [1, "b"]}]`,
			[]finding{},
		},
		{
			"two step cycle",
			`[{"@id": "a", "stepOrder": 1, "wasInformedBy": "b"}, {"@id": "b", "stepOrder": 2, "wasInformedBy": "a"}]`,
			[]finding{{stepsPath + "[0]", violation.RuleProvenanceCycle, violation.Error}},
		},
		{
			"cycle by step order",
			`[{"stepOrder": 1, "wasInformedBy": 2}, {"stepOrder": 2, "wasInformedBy": [1]}]`,
			[]finding{{stepsPath + "[0]", violation.RuleProvenanceCycle, violation.Error}},
		},
		{
			"self reference",
			`[{"@id": "a", "stepOrder": 1}, {"@id": "b", "stepOrder": 2, "wasInformedBy": "b"}]`,
			[]finding{{stepsPath + "[1]", violation.RuleProvenanceCycle, violation.Error}},
		},
		{
			"two separate cycles",
			`[{"@id": "a", "wasInformedBy": "b"}, {"@id": "b", "wasInformedBy": "a"}, {"@id": "c", "wasInformedBy": "d"}, {"@id": "d", "wasInformedBy": "c"}]`,
			[]finding{
				{stepsPath + "[0]", violation.RuleProvenanceCycle, violation.Error},
				{stepsPath + "[2]", violation.RuleProvenanceCycle, violation.Error},
			},
		},
		{
			"cycle reached twice is reported once",
			`[{"@id": "a", "wasInformedBy": "b"}, {"@id": "b", "wasInformedBy": "a"}, {"@id": "c", "wasInformedBy": ["a", "b"]}]`,
			[]finding{{stepsPath + "[0]", violation.RuleProvenanceCycle, violation.Error}},
		},
		{
			"dangling @id",
			`[{"@id": "a", "stepOrder": 1}, {"@id": "b", "stepOrder": 2, "wasInformedBy": "missing"}]`,
			[]finding{{stepsPath + "[1].wasInformedBy", violation.RuleProvenanceDangling, violation.Error}},
		},
		{
			"dangling step order in array",
			`[{"stepOrder": 1}, {"stepOrder": 2, "wasInformedBy": [1, 7]}]`,
			[]finding{{stepsPath + "[1].wasInformedBy[1]", violation.RuleProvenanceDangling, violation.Error}},
		},
		{
			"duplicate identifiers",
			`[{"@id": "a", "stepOrder": 1}, {"@id": "a", "stepOrder": 1}]`,
			[]finding{
				{stepsPath + "[1].@id", violation.RuleProvenanceDuplicateStep, violation.Error},
				{stepsPath + "[1].stepOrder", violation.RuleProvenanceDuplicateStep, violation.Error},
			},
		},
		{
			"reference to a later step",
			`[{"@id": "a", "stepOrder": 1, "wasInformedBy": "b"}, {"@id": "b", "stepOrder": 2}]`,
			[]finding{{stepsPath + "[0].wasInformedBy", violation.RuleProvenanceOrder, violation.Warning}},
		},
		{
			"not a list",
			`{"@id": "a"}`,
			[]finding{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, `{"provenance": {"processingSteps": `+tt.steps+`}}`)
			vs := semantic.NewChecker().Check(doc, nil)
			assert.Equal(t, tt.want, findings(vs))
		})
	}
}

func TestCheck_ProvenanceCycleMessage(t *testing.T) {
	doc := parse(t, `{"provenance": {"processingSteps": [
		{"@id": "a", "wasInformedBy": "b"},
		{"@id": "b", "wasInformedBy": "a"}
	]}}`)
	vs := semantic.NewChecker().Check(doc, nil)
	require.Len(t, vs, 1)
	assert.Equal(t, "provenance steps form a cycle: a -> b -> a", vs[0].Message)
}

func TestCheck_Collisions(t *testing.T) {
	m := testMapping()
	m.Collisions = []jsonld.Collision{{
		Term:           "name",
		Previous:       "http://schema.org/name",
		PreviousSource: "https://example.org/a",
		IRI:            "https://example.org/name",
		Source:         "https://example.org/b",
	}}

	vs := semantic.NewChecker().Check(parse(t, `{"name": "x"}`), m)
	require.Len(t, vs, 1)
	assert.Equal(t, finding{"@context", violation.RuleContextCollision, violation.Warning}, findings(vs)[0])
	assert.Contains(t, vs[0].Message, `"name"`)
}

func TestCheck_Examples(t *testing.T) {
	resolver := jsonld.NewResolver(rap.Overlay(nil), jsonld.WithAliases(rap.ContextAliases()))
	files, err := filepath.Glob("../../examples/*/*.jsonld")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			data, err := os.ReadFile(f)
			require.NoError(t, err)
			doc, err := document.Parse(f, data)
			require.NoError(t, err)

			var sources []jsonld.Source
			for _, c := range doc.Contexts {
				sources = append(sources, jsonld.URISource(c.URI))
			}
			if uri, ok := rap.MeasurementContexts()[doc.MeasurementType]; ok {
				sources = append(sources, jsonld.URISource(uri))
			}
			m, err := resolver.Resolve(context.Background(), sources)
			require.NoError(t, err)

			assert.Empty(t, semantic.NewChecker().Check(doc, m))
		})
	}
}
