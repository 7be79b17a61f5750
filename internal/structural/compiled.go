// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package structural

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/violation"
	sjs "github.com/santhosh-tekuri/jsonschema/v5"
)

var quotedName = regexp.MustCompile(`['"]([^'"]*)['"]`)

// validateCompiled runs the compiled schema and maps each leaf error to one
// violation.
func validateCompiled(doc *document.Document, schema *jschema.SchemaDocument) ([]violation.Violation, error) {
	compiled := schema.Compiled()
	if compiled == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCompiled, schema.ID)
	}

	// the compiled validator understands encoding/json numbers only
	dec := json.NewDecoder(bytes.NewReader(doc.Raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", document.ErrInvalidDocument, doc.Name, err)
	}
	if obj, ok := instance.(map[string]any); ok {
		if _, has := obj[contextKey]; has {
			rest := make(map[string]any, len(obj))
			for k, v := range obj {
				if k != contextKey {
					rest[k] = v
				}
			}
			instance = rest
		}
	}

	err := compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var verr *sjs.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	_, hasContext := doc.Root[contextKey]
	var out []violation.Violation
	for _, leaf := range leaves(verr) {
		for _, v := range toViolations(leaf) {
			if hasContext && v.Path == contextKey &&
				(v.Rule == violation.RuleRequired || v.Rule == violation.RuleAdditionalProperties) {
				continue
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func leaves(e *sjs.ValidationError) []*sjs.ValidationError {
	if len(e.Causes) == 0 {
		return []*sjs.ValidationError{e}
	}
	var out []*sjs.ValidationError
	for _, c := range e.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

// toViolations maps one leaf error. The rule is the last keyword of the
// keyword location; required and additionalProperties errors are reported
// once per named property.
func toViolations(e *sjs.ValidationError) []violation.Violation {
	path := violation.FromPointer(e.InstanceLocation)
	rule := lastKeyword(e.KeywordLocation)

	switch rule {
	case violation.RuleRequired, violation.RuleAdditionalProperties:
		names := quotedName.FindAllStringSubmatch(e.Message, -1)
		if len(names) == 0 {
			break
		}
		out := make([]violation.Violation, 0, len(names))
		for _, m := range names {
			msg := fmt.Sprintf("missing required property %q", m[1])
			if rule == violation.RuleAdditionalProperties {
				msg = fmt.Sprintf("property %q is not allowed", m[1])
			}
			out = append(out, fail(violation.Join(path, m[1]), rule, "%s", msg))
		}
		return out
	case violation.RuleFormat:
		return []violation.Violation{warn(path, rule, "%s", e.Message)}
	}
	return []violation.Violation{fail(path, rule, "%s", e.Message)}
}

func lastKeyword(loc string) violation.Rule {
	loc = strings.TrimSuffix(loc, "/")
	i := strings.LastIndex(loc, "/")
	kw := loc[i+1:]
	if kw == "" {
		return violation.RuleFalseSchema
	}
	return violation.Rule(kw)
}
