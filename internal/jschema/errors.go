// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaLoad matches every SchemaLoadError.
	ErrSchemaLoad = errors.New("schema load failed")

	// ErrSchemaRef matches every SchemaRefError.
	ErrSchemaRef = errors.New("schema reference unresolved")

	// ErrUnsupportedDraft indicates a $schema other than draft 2020-12.
	ErrUnsupportedDraft = errors.New("unsupported JSON Schema draft")
)

// SchemaLoadError reports a schema that could not be read, parsed, or
// accepted (missing file, malformed document, unsupported draft, timeout).
type SchemaLoadError struct {
	URI string
	Err error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("load schema %s: %v", e.URI, e.Err)
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSchemaLoad) true for any SchemaLoadError.
func (e *SchemaLoadError) Is(target error) bool { return target == ErrSchemaLoad }

// SchemaRefError reports a $ref that does not resolve within the loaded
// schema set.
type SchemaRefError struct {
	// URI is the document holding the reference.
	URI string
	// Ref is the reference as written.
	Ref string
	Err error
}

func (e *SchemaRefError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schema %s: unresolved $ref %q", e.URI, e.Ref)
	}
	return fmt.Sprintf("schema %s: unresolved $ref %q: %v", e.URI, e.Ref, e.Err)
}

func (e *SchemaRefError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSchemaRef) true for any SchemaRefError.
func (e *SchemaRefError) Is(target error) bool { return target == ErrSchemaRef }
