// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package jschema provides JSON Schema loading, reference resolution, caching,
// and traversal utilities.
package jschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// Schema is a single JSON Schema node.
type Schema = jsonschema.Schema

// Draft2020 is the only supported $schema value.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// Format is the serialization format of a schema file.
type Format int

const (
	// JSON is the default format.
	JSON Format = iota
	// YAML is used for .yaml and .yml files.
	YAML
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(p string) Format {
	if strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml") {
		return YAML
	}
	return JSON
}

// SupportedDraft reports whether a $schema value is draft 2020-12.
// An empty value defaults to 2020-12.
func SupportedDraft(s string) bool {
	return s == "" || strings.TrimSuffix(s, "#") == Draft2020
}

// toJSON normalizes raw schema bytes to JSON.
func toJSON(data []byte, format Format) ([]byte, error) {
	var v any
	if format == JSON {
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return data, nil
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	v, err := normalizeYAML(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// normalizeYAML converts map[any]any nodes, which encoding/json rejects,
// into map[string]any.
func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			m[ks] = n
		}
		return m, nil
	case []any:
		for i, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return v, nil
	}
}

// parseSchema decodes JSON bytes into a schema tree.
func parseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// IsTrue reports whether s accepts every instance (the boolean schema true
// or an empty object).
func IsTrue(s *Schema) bool {
	if s == nil {
		return true
	}
	c := *s
	if len(c.Extra) == 0 {
		c.Extra = nil
	}
	return reflect.DeepEqual(c, Schema{})
}

// IsFalse reports whether s rejects every instance (the boolean schema false,
// decoded as {"not": {}}).
func IsFalse(s *Schema) bool {
	if s == nil || s.Not == nil {
		return false
	}
	c := *s
	c.Not = nil
	return IsTrue(&c) && IsTrue(s.Not)
}
