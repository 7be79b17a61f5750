// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package rap embeds the RAP v1 schemas and JSON-LD contexts.
package rap

import (
	"embed"
	"io/fs"
	"maps"
	"slices"
)

//go:embed bundle
var bundle embed.FS

const (
	// Base is the root of every canonical RAP v1 URI.
	Base = "https://rap-spec.evidencepub.io/v1/"

	// SchemaURI is the $id of the research product schema.
	SchemaURI = Base + "schemas/research-product.json"

	ParticipantSchemaURI   = Base + "schemas/participant.json"
	CollectionSchemaURI    = Base + "schemas/collection.json"
	AggregateSchemaURI     = Base + "schemas/aggregate.json"
	APIDescriptorSchemaURI = Base + "schemas/api-descriptor.json"

	// ContextURI is the main RAP context.
	ContextURI = Base + "context"

	// MeasurementContextBase prefixes the measurement-specific contexts.
	MeasurementContextBase = Base + "context/measurements/"
)

// Measurement types with a bundled schema and context.
const (
	RelaxometryMRI = "relaxometry_mri"
	Timeseries     = "timeseries"
)

// FS returns the embedded bundle rooted at its v1 directory parent, so paths
// look like "v1/research-product.json".
func FS() fs.FS {
	sub, err := fs.Sub(bundle, "bundle")
	if err != nil {
		panic(err)
	}
	return sub
}

// TypeSchemas maps each root @type with a bundled schema to that schema's
// $id.
func TypeSchemas() map[string]string {
	return map[string]string{
		"ResearchProduct":           SchemaURI,
		"Participant":               ParticipantSchemaURI,
		"ResearchProductCollection": CollectionSchemaURI,
		"AggregateStatistics":       AggregateSchemaURI,
		"ResearchAPIDescriptor":     APIDescriptorSchemaURI,
	}
}

// MeasurementContexts maps each bundled measurement type to its context URI.
func MeasurementContexts() map[string]string {
	return map[string]string{
		RelaxometryMRI: MeasurementContextBase + "relaxometry-mri",
		Timeseries:     MeasurementContextBase + "timeseries",
	}
}

// KnownContexts returns the canonical RAP context URIs, sorted.
func KnownContexts() []string {
	return slices.Sorted(maps.Keys(ContextAliases()))
}

// ContextAliases maps the canonical context URIs to their files inside the
// filesystem returned by Overlay.
func ContextAliases() map[string]string {
	mainCtx := Mount + "/v1/context.jsonld"
	aliases := map[string]string{
		ContextURI:              mainCtx,
		ContextURI + "/":        mainCtx,
		Base + "context.jsonld": mainCtx,
	}
	files := map[string]string{
		RelaxometryMRI: "relaxometry-mri.jsonld",
		Timeseries:     "timeseries.jsonld",
	}
	for kind, uri := range MeasurementContexts() {
		aliases[uri] = Mount + "/v1/measurements/" + files[kind]
	}
	return aliases
}

// MergeAliases returns ContextAliases overlaid with extra.
func MergeAliases(extra map[string]string) map[string]string {
	out := ContextAliases()
	maps.Copy(out, extra)
	return out
}
