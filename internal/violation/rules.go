// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package violation

// Rule identifies the check that produced a violation. Structural rules are
// named after the JSON Schema keyword that failed.
type Rule string

// Structural rules.
const (
	RuleType                  Rule = "type"
	RuleEnum                  Rule = "enum"
	RuleConst                 Rule = "const"
	RuleRequired              Rule = "required"
	RuleAdditionalProperties  Rule = "additionalProperties"
	RulePropertyNames         Rule = "propertyNames"
	RuleMinProperties         Rule = "minProperties"
	RuleMaxProperties         Rule = "maxProperties"
	RuleDependentRequired     Rule = "dependentRequired"
	RuleMinItems              Rule = "minItems"
	RuleMaxItems              Rule = "maxItems"
	RuleUniqueItems           Rule = "uniqueItems"
	RuleItems                 Rule = "items"
	RuleContains              Rule = "contains"
	RuleMinContains           Rule = "minContains"
	RuleMaxContains           Rule = "maxContains"
	RuleMinimum               Rule = "minimum"
	RuleMaximum               Rule = "maximum"
	RuleExclusiveMinimum      Rule = "exclusiveMinimum"
	RuleExclusiveMaximum      Rule = "exclusiveMaximum"
	RuleMultipleOf            Rule = "multipleOf"
	RuleMinLength             Rule = "minLength"
	RuleMaxLength             Rule = "maxLength"
	RulePattern               Rule = "pattern"
	RuleFormat                Rule = "format"
	RuleOneOf                 Rule = "oneOf"
	RuleAnyOf                 Rule = "anyOf"
	RuleNot                   Rule = "not"
	RuleFalseSchema           Rule = "false"
	RuleUnevaluatedProperties Rule = "unevaluatedProperties"
	RuleUnevaluatedItems      Rule = "unevaluatedItems"
	RuleUnsupportedKeyword    Rule = "unsupported-keyword"
	RuleUnknownContextEntry   Rule = "unknown-context-entry"
	RuleInvalidContext        Rule = "invalid-context"
)

// Semantic rules.
const (
	RuleUnresolvedTerm          Rule = "unresolved-term"
	RuleNonQUDTUnit             Rule = "non-qudt-unit"
	RuleContextCollision        Rule = "context-collision"
	RuleProvenanceDangling      Rule = "provenance-dangling"
	RuleProvenanceCycle         Rule = "provenance-cycle"
	RuleProvenanceDuplicateStep Rule = "provenance-duplicate-step"
	RuleProvenanceOrder         Rule = "provenance-order"
)
