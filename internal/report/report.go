// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package report aggregates violations into a pass/fail validation report
// and renders it as text or JSON.
package report

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/evidencepub/rapval/internal/violation"
)

// Report is the result of validating one document. It is built once by
// Build and never modified.
type Report struct {
	Document   string                `json:"document"`
	Schema     string                `json:"schema"`
	Pass       bool                  `json:"pass"`
	Strict     bool                  `json:"strict"`
	Errors     int                   `json:"errors"`
	Warnings   int                   `json:"warnings"`
	Violations []violation.Violation `json:"violations"`
}

// Options configure Build.
type Options struct {
	// Strict fails the report on warnings too.
	Strict bool
}

// Build sorts vs by path, severity, rule and message and computes the
// verdict: a report passes when it has no errors, or no violations at all
// in strict mode.
func Build(document, schema string, vs []violation.Violation, opts Options) *Report {
	sorted := violation.Sorted(vs)
	if sorted == nil {
		sorted = []violation.Violation{}
	}
	r := &Report{
		Document:   document,
		Schema:     schema,
		Strict:     opts.Strict,
		Errors:     violation.Count(sorted, violation.Error),
		Warnings:   violation.Count(sorted, violation.Warning),
		Violations: sorted,
	}
	r.Pass = r.Errors == 0 && (!opts.Strict || r.Warnings == 0)
	return r
}

// Format selects a renderer.
type Format string

const (
	// Text renders one styled line per violation plus a summary.
	Text Format = "text"
	// JSON renders the report as indented JSON.
	JSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{Text, JSON}

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parses a format name. The empty string selects Text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Text, nil
	}
	f := Format(s)
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("%w: %q (want text or json)", ErrUnknownFormat, s)
	}
	return f, nil
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case JSON:
		return WriteJSON(w, r)
	case Text, "":
		return WriteText(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
