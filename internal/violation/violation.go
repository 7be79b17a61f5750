// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package violation defines the validation findings shared by the structural
// validator, the semantic checker and the report formatter.
package violation

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity classifies a violation. Errors fail validation, warnings do not
// (unless strict mode is enabled).
type Severity int

const (
	// Error marks a violation that fails validation.
	Error Severity = iota
	// Warning marks a non-fatal finding.
	Warning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses "error" or "warning" (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return Error, nil
	case "warning", "warn":
		return Warning, nil
	default:
		return Error, fmt.Errorf("unknown severity %q (want error or warning)", s)
	}
}

// Source names the component that produced a violation.
type Source string

const (
	// Structural violations come from schema validation.
	Structural Source = "structural"
	// Semantic violations come from context, unit and provenance checks.
	Semantic Source = "semantic"
)

// Violation is one validation failure. Values are never mutated after creation.
type Violation struct {
	Path     string   `json:"path"`
	Severity Severity `json:"severity"`
	Rule     Rule     `json:"rule"`
	Message  string   `json:"message"`
	Source   Source   `json:"source"`
}

// String formats the violation on a single line.
func (v Violation) String() string {
	return fmt.Sprintf("%s %s [%s] %s", v.Severity, v.Path, v.Rule, v.Message)
}

// New creates a violation with a formatted message.
func New(src Source, sev Severity, path string, rule Rule, format string, args ...any) Violation {
	return Violation{
		Path:     path,
		Severity: sev,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
		Source:   src,
	}
}

// Compare orders violations by path (see ComparePaths), then severity
// (errors first), then rule, then message.
func Compare(a, b Violation) int {
	if c := ComparePaths(a.Path, b.Path); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Severity, b.Severity); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rule, b.Rule); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Message, b.Message); c != 0 {
		return c
	}
	return cmp.Compare(a.Source, b.Source)
}

// Sorted returns a sorted copy of vs.
func Sorted(vs []Violation) []Violation {
	out := slices.Clone(vs)
	slices.SortStableFunc(out, Compare)
	return out
}

// Count returns the number of violations with the given severity.
func Count(vs []Violation, sev Severity) int {
	n := 0
	for _, v := range vs {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any violation has error severity.
func HasErrors(vs []Violation) bool {
	return Count(vs, Error) > 0
}
