// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package structural

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/violation"
)

type frame struct {
	schema *jschema.Schema
	path   string
}

// evaluator applies draft 2020-12 rules by walking the schema tree.
type evaluator struct {
	doc      *jschema.SchemaDocument
	patterns map[string]*regexp.Regexp
	active   map[frame]struct{}
}

func newEvaluator(doc *jschema.SchemaDocument) *evaluator {
	return &evaluator{
		doc:      doc,
		patterns: make(map[string]*regexp.Regexp),
		active:   make(map[frame]struct{}),
	}
}

// root validates the document root. The root @context is left to
// checkContext.
func (e *evaluator) root(v map[string]any) []violation.Violation {
	rest := make(map[string]any, len(v))
	for k, x := range v {
		if k != contextKey {
			rest[k] = x
		}
	}
	out := e.validate(e.doc.Root, rest, violation.Root)
	if _, ok := v[contextKey]; !ok {
		return out
	}
	// the key exists, so required and additionalProperties must not flag it
	return slices.DeleteFunc(out, func(x violation.Violation) bool {
		return x.Path == violation.Join(violation.Root, contextKey) &&
			(x.Rule == violation.RuleRequired || x.Rule == violation.RuleAdditionalProperties ||
				x.Rule == violation.RuleUnevaluatedProperties)
	})
}

func fail(path string, rule violation.Rule, format string, args ...any) violation.Violation {
	return violation.New(violation.Structural, violation.Error, path, rule, format, args...)
}

func warn(path string, rule violation.Rule, format string, args ...any) violation.Violation {
	return violation.New(violation.Structural, violation.Warning, path, rule, format, args...)
}

// evaluated holds the object properties and array items that applicators
// looked at. unevaluatedProperties and unevaluatedItems apply to the rest.
type evaluated struct {
	props map[string]struct{}
	items map[int]struct{}
}

func (a *evaluated) prop(k string) {
	if a.props == nil {
		a.props = make(map[string]struct{})
	}
	a.props[k] = struct{}{}
}

func (a *evaluated) item(i int) {
	if a.items == nil {
		a.items = make(map[int]struct{})
	}
	a.items[i] = struct{}{}
}

func (a *evaluated) merge(b evaluated) {
	for k := range b.props {
		a.prop(k)
	}
	for i := range b.items {
		a.item(i)
	}
}

func (e *evaluator) validate(s *jschema.Schema, v any, path string) []violation.Violation {
	vs, _ := e.eval(s, v, path)
	return vs
}

// eval validates v against s and returns what s evaluated. Annotations of
// in-place subschemas only count when the subschema passed.
func (e *evaluator) eval(s *jschema.Schema, v any, path string) ([]violation.Violation, evaluated) {
	var ann evaluated
	if s == nil || jschema.IsTrue(s) {
		return nil, ann
	}
	if jschema.IsFalse(s) {
		return []violation.Violation{fail(path, violation.RuleFalseSchema, "no value is allowed here")}, ann
	}

	f := frame{s, path}
	if _, ok := e.active[f]; ok {
		return nil, ann
	}
	e.active[f] = struct{}{}
	defer delete(e.active, f)

	if vs := e.checkType(s, v, path); len(vs) > 0 {
		return vs, ann
	}

	var out []violation.Violation
	if s.Ref != "" {
		if target := e.doc.Resolve(s); target != nil {
			vs, a := e.eval(target, v, path)
			out = append(out, vs...)
			if !violation.HasErrors(vs) {
				ann.merge(a)
			}
		}
	}
	if s.DynamicRef != "" {
		out = append(out, fail(path, violation.RuleUnsupportedKeyword,
			"$dynamicRef %q is not supported by the native engine, use the compiled engine", s.DynamicRef))
	}
	out = append(out, e.checkValue(s, v, path)...)

	switch x := v.(type) {
	case map[string]any:
		out = append(out, e.checkObject(s, x, path, &ann)...)
	case []any:
		out = append(out, e.checkArray(s, x, path, &ann)...)
	case string:
		out = append(out, e.checkString(s, x, path)...)
	default:
		if n, ok := document.Float(v); ok {
			out = append(out, checkNumber(s, n, path)...)
		}
	}

	out = append(out, e.checkLogic(s, v, path, &ann)...)

	switch x := v.(type) {
	case map[string]any:
		out = append(out, e.checkUnevaluatedProperties(s, x, path, &ann)...)
	case []any:
		out = append(out, e.checkUnevaluatedItems(s, x, path, &ann)...)
	}
	return out, ann
}

func (e *evaluator) checkType(s *jschema.Schema, v any, path string) []violation.Violation {
	types := s.Types
	if s.Type != "" {
		types = []string{s.Type}
	}
	if len(types) == 0 {
		return nil
	}
	kind := document.KindOf(v)
	for _, t := range types {
		if t == kind || (t == "number" && kind == "integer") {
			return nil
		}
	}
	return []violation.Violation{fail(path, violation.RuleType, "expected %s, got %s", strings.Join(types, " or "), kind)}
}

func (e *evaluator) checkValue(s *jschema.Schema, v any, path string) []violation.Violation {
	var out []violation.Violation
	if s.Enum != nil && !slices.ContainsFunc(s.Enum, func(x any) bool { return equal(x, v) }) {
		out = append(out, fail(path, violation.RuleEnum, "value %s is not one of %s", render(v), render(s.Enum)))
	}
	if s.Const != nil && !equal(*s.Const, v) {
		out = append(out, fail(path, violation.RuleConst, "value %s must equal %s", render(v), render(*s.Const)))
	}
	return out
}

func (e *evaluator) checkObject(s *jschema.Schema, obj map[string]any, path string, ann *evaluated) []violation.Violation {
	var out []violation.Violation
	keys := sortedKeys(obj)

	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			out = append(out, fail(violation.Join(path, name), violation.RuleRequired, "missing required property %q", name))
		}
	}

	for _, k := range keys {
		child := violation.Join(path, k)
		matched := false
		if ps, ok := s.Properties[k]; ok {
			matched = true
			ann.prop(k)
			out = append(out, e.validate(ps, obj[k], child)...)
		}
		for _, pattern := range sortedKeys(s.PatternProperties) {
			re := e.regexp(pattern)
			if re == nil || !re.MatchString(k) {
				continue
			}
			matched = true
			ann.prop(k)
			out = append(out, e.validate(s.PatternProperties[pattern], obj[k], child)...)
		}
		if !matched && s.AdditionalProperties != nil {
			ann.prop(k)
			if jschema.IsFalse(s.AdditionalProperties) {
				out = append(out, fail(child, violation.RuleAdditionalProperties, "property %q is not allowed", k))
			} else {
				out = append(out, e.validate(s.AdditionalProperties, obj[k], child)...)
			}
		}
		if s.PropertyNames != nil {
			if vs := e.validate(s.PropertyNames, k, child); violation.HasErrors(vs) {
				out = append(out, fail(child, violation.RulePropertyNames, "property name %q is not allowed: %s", k, firstError(vs)))
			}
		}
	}

	if s.MinProperties != nil && len(obj) < *s.MinProperties {
		out = append(out, fail(path, violation.RuleMinProperties, "object has %d properties, want at least %d", len(obj), *s.MinProperties))
	}
	if s.MaxProperties != nil && len(obj) > *s.MaxProperties {
		out = append(out, fail(path, violation.RuleMaxProperties, "object has %d properties, want at most %d", len(obj), *s.MaxProperties))
	}

	for _, k := range sortedKeys(s.DependentRequired) {
		if _, ok := obj[k]; !ok {
			continue
		}
		for _, dep := range s.DependentRequired[k] {
			if _, ok := obj[dep]; !ok {
				out = append(out, fail(violation.Join(path, dep), violation.RuleDependentRequired, "property %q is required when %q is present", dep, k))
			}
		}
	}
	for _, k := range sortedKeys(s.DependentSchemas) {
		if _, ok := obj[k]; ok {
			vs, a := e.eval(s.DependentSchemas[k], obj, path)
			out = append(out, vs...)
			if !violation.HasErrors(vs) {
				ann.merge(a)
			}
		}
	}
	return out
}

func (e *evaluator) checkArray(s *jschema.Schema, arr []any, path string, ann *evaluated) []violation.Violation {
	var out []violation.Violation
	for i, item := range arr {
		child := violation.Index(path, i)
		switch {
		case i < len(s.PrefixItems):
			ann.item(i)
			out = append(out, e.validate(s.PrefixItems[i], item, child)...)
		case s.Items != nil:
			ann.item(i)
			if jschema.IsFalse(s.Items) {
				out = append(out, fail(child, violation.RuleItems, "array allows at most %d items", len(s.PrefixItems)))
				continue
			}
			out = append(out, e.validate(s.Items, item, child)...)
		}
	}

	if s.MinItems != nil && len(arr) < *s.MinItems {
		out = append(out, fail(path, violation.RuleMinItems, "array has %d items, want at least %d", len(arr), *s.MinItems))
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		out = append(out, fail(path, violation.RuleMaxItems, "array has %d items, want at most %d", len(arr), *s.MaxItems))
	}
	if s.UniqueItems {
	dup:
		for i := range arr {
			for j := i + 1; j < len(arr); j++ {
				if equal(arr[i], arr[j]) {
					out = append(out, fail(path, violation.RuleUniqueItems, "items %d and %d are equal", i, j))
					break dup
				}
			}
		}
	}

	if s.Contains != nil {
		matches := 0
		for i, item := range arr {
			if !violation.HasErrors(e.validate(s.Contains, item, violation.Index(path, i))) {
				matches++
				ann.item(i)
			}
		}
		minContains := 1
		if s.MinContains != nil {
			minContains = *s.MinContains
		}
		switch {
		case matches == 0 && minContains > 0 && s.MinContains == nil:
			out = append(out, fail(path, violation.RuleContains, "no item matches the contains schema"))
		case matches < minContains:
			out = append(out, fail(path, violation.RuleMinContains, "%d items match the contains schema, want at least %d", matches, minContains))
		}
		if s.MaxContains != nil && matches > *s.MaxContains {
			out = append(out, fail(path, violation.RuleMaxContains, "%d items match the contains schema, want at most %d", matches, *s.MaxContains))
		}
	}
	return out
}

func (e *evaluator) checkString(s *jschema.Schema, str, path string) []violation.Violation {
	var out []violation.Violation
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		out = append(out, fail(path, violation.RuleMinLength, "string has %d characters, want at least %d", n, *s.MinLength))
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		out = append(out, fail(path, violation.RuleMaxLength, "string has %d characters, want at most %d", n, *s.MaxLength))
	}
	if s.Pattern != "" {
		if re := e.regexp(s.Pattern); re != nil && !re.MatchString(str) {
			out = append(out, fail(path, violation.RulePattern, "%q does not match pattern %q", str, s.Pattern))
		}
	}
	if s.Format != "" {
		if ok, known := checkFormat(s.Format, str); known && !ok {
			out = append(out, warn(path, violation.RuleFormat, "%q is not a valid %s", str, s.Format))
		}
	}
	return out
}

func checkNumber(s *jschema.Schema, n float64, path string) []violation.Violation {
	var out []violation.Violation
	if s.Minimum != nil && n < *s.Minimum {
		out = append(out, fail(path, violation.RuleMinimum, "%s is less than the minimum %s", fmtNum(n), fmtNum(*s.Minimum)))
	}
	if s.Maximum != nil && n > *s.Maximum {
		out = append(out, fail(path, violation.RuleMaximum, "%s is greater than the maximum %s", fmtNum(n), fmtNum(*s.Maximum)))
	}
	if s.ExclusiveMinimum != nil && n <= *s.ExclusiveMinimum {
		out = append(out, fail(path, violation.RuleExclusiveMinimum, "%s must be greater than %s", fmtNum(n), fmtNum(*s.ExclusiveMinimum)))
	}
	if s.ExclusiveMaximum != nil && n >= *s.ExclusiveMaximum {
		out = append(out, fail(path, violation.RuleExclusiveMaximum, "%s must be less than %s", fmtNum(n), fmtNum(*s.ExclusiveMaximum)))
	}
	if s.MultipleOf != nil && *s.MultipleOf > 0 {
		q := n / *s.MultipleOf
		if math.Abs(q-math.Round(q)) > 1e-9 {
			out = append(out, fail(path, violation.RuleMultipleOf, "%s is not a multiple of %s", fmtNum(n), fmtNum(*s.MultipleOf)))
		}
	}
	return out
}

// checkLogic applies allOf, anyOf, oneOf, not and if/then/else.
func (e *evaluator) checkLogic(s *jschema.Schema, v any, path string, ann *evaluated) []violation.Violation {
	var out []violation.Violation
	for _, sub := range s.AllOf {
		vs, a := e.eval(sub, v, path)
		out = append(out, vs...)
		if !violation.HasErrors(vs) {
			ann.merge(a)
		}
	}

	if len(s.AnyOf) > 0 {
		results, anns := e.branches(s.AnyOf, v, path)
		if matching(results) == 0 {
			out = append(out, closest(results)...)
		}
		mergePassing(ann, results, anns)
	}

	if len(s.OneOf) > 0 {
		results, anns := e.branches(s.OneOf, v, path)
		switch n := matching(results); {
		case n == 0:
			out = append(out, closest(results)...)
		case n > 1:
			var idx []string
			for i, r := range results {
				if !violation.HasErrors(r) {
					idx = append(idx, fmt.Sprint(i))
				}
			}
			out = append(out, fail(path, violation.RuleOneOf, "value matches %d oneOf branches (%s), want exactly one", n, strings.Join(idx, ", ")))
		}
		mergePassing(ann, results, anns)
	}

	if s.Not != nil && !violation.HasErrors(e.validate(s.Not, v, path)) {
		out = append(out, fail(path, violation.RuleNot, "value must not match the not schema"))
	}

	if s.If != nil {
		branch := s.Then
		ifv, ifa := e.eval(s.If, v, path)
		if violation.HasErrors(ifv) {
			branch = s.Else
		} else {
			ann.merge(ifa)
		}
		vs, a := e.eval(branch, v, path)
		out = append(out, vs...)
		if !violation.HasErrors(vs) {
			ann.merge(a)
		}
	}
	return out
}

// checkUnevaluatedProperties applies unevaluatedProperties to the
// properties no other keyword evaluated.
func (e *evaluator) checkUnevaluatedProperties(s *jschema.Schema, obj map[string]any, path string, ann *evaluated) []violation.Violation {
	if s.UnevaluatedProperties == nil {
		return nil
	}
	var out []violation.Violation
	for _, k := range sortedKeys(obj) {
		if _, ok := ann.props[k]; ok {
			continue
		}
		child := violation.Join(path, k)
		if jschema.IsFalse(s.UnevaluatedProperties) {
			out = append(out, fail(child, violation.RuleUnevaluatedProperties, "property %q is not allowed", k))
		} else {
			out = append(out, e.validate(s.UnevaluatedProperties, obj[k], child)...)
		}
		ann.prop(k)
	}
	return out
}

// checkUnevaluatedItems applies unevaluatedItems to the items no other
// keyword evaluated.
func (e *evaluator) checkUnevaluatedItems(s *jschema.Schema, arr []any, path string, ann *evaluated) []violation.Violation {
	if s.UnevaluatedItems == nil {
		return nil
	}
	var out []violation.Violation
	for i, item := range arr {
		if _, ok := ann.items[i]; ok {
			continue
		}
		child := violation.Index(path, i)
		if jschema.IsFalse(s.UnevaluatedItems) {
			out = append(out, fail(child, violation.RuleUnevaluatedItems, "item %d is not allowed", i))
		} else {
			out = append(out, e.validate(s.UnevaluatedItems, item, child)...)
		}
		ann.item(i)
	}
	return out
}

func (e *evaluator) branches(subs []*jschema.Schema, v any, path string) ([][]violation.Violation, []evaluated) {
	results := make([][]violation.Violation, len(subs))
	anns := make([]evaluated, len(subs))
	for i, sub := range subs {
		results[i], anns[i] = e.eval(sub, v, path)
	}
	return results, anns
}

func mergePassing(ann *evaluated, results [][]violation.Violation, anns []evaluated) {
	for i, r := range results {
		if !violation.HasErrors(r) {
			ann.merge(anns[i])
		}
	}
}

func matching(results [][]violation.Violation) int {
	n := 0
	for _, r := range results {
		if !violation.HasErrors(r) {
			n++
		}
	}
	return n
}

// closest returns the violations of the branch with the fewest errors,
// the first one on ties.
func closest(results [][]violation.Violation) []violation.Violation {
	best := -1
	bestErrors := 0
	for i, r := range results {
		n := violation.Count(r, violation.Error)
		if best < 0 || n < bestErrors {
			best, bestErrors = i, n
		}
	}
	if best < 0 {
		return nil
	}
	return results[best]
}

func (e *evaluator) regexp(pattern string) *regexp.Regexp {
	if re, ok := e.patterns[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	e.patterns[pattern] = re
	return re
}

func firstError(vs []violation.Violation) string {
	for _, v := range vs {
		if v.Severity == violation.Error {
			return v.Message
		}
	}
	return ""
}
