// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package document parses candidate JSON-LD research product documents.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ErrInvalidDocument is returned when a candidate is not a JSON object.
var ErrInvalidDocument = errors.New("invalid document")

// ContextRef is one entry of a document's @context.
type ContextRef struct {
	// URI is set for string entries.
	URI string
	// Inline holds object entries.
	Inline map[string]any
}

// IsInline reports whether the entry is an inline context object.
func (r ContextRef) IsInline() bool { return r.Inline != nil }

// Document is a parsed candidate document. It is never modified after Parse.
type Document struct {
	// Name identifies the document in reports (usually its path).
	Name string
	// Raw is the document as read.
	Raw []byte
	// Root is the decoded top-level object. Numbers are json.Number.
	Root map[string]any

	// Contexts lists the @context entries in order.
	Contexts []ContextRef
	// Types lists the @type values of the root object.
	Types []string
	// ID is the root @id.
	ID string
	// MeasurementType is measurement.measurementType when present.
	MeasurementType string
}

// Type returns the first declared @type, or "".
func (d *Document) Type() string {
	if len(d.Types) == 0 {
		return ""
	}
	return d.Types[0]
}

// Parse decodes data into a Document named name.
func Parse(name string, data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, name, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: trailing data after top-level value", ErrInvalidDocument, name)
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: top-level value must be an object, got %s", ErrInvalidDocument, name, KindOf(v))
	}

	doc := &Document{
		Name:     name,
		Raw:      data,
		Root:     root,
		Contexts: contextRefs(root["@context"]),
		Types:    stringsOf(root["@type"]),
	}
	if id, ok := root["@id"].(string); ok {
		doc.ID = id
	}
	if m, ok := root["measurement"].(map[string]any); ok {
		if mt, ok := m["measurementType"].(string); ok {
			doc.MeasurementType = mt
		}
	}
	return doc, nil
}

// Dir returns the directory of the document name. Relative context
// references in the document resolve against it.
func (d *Document) Dir() string {
	return filepath.Dir(d.Name)
}

func contextRefs(v any) []ContextRef {
	switch v := v.(type) {
	case string:
		return []ContextRef{{URI: v}}
	case map[string]any:
		return []ContextRef{{Inline: v}}
	case []any:
		var out []ContextRef
		for _, item := range v {
			out = append(out, contextRefs(item)...)
		}
		return out
	}
	return nil
}

func stringsOf(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
