// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package prompts

import (
	"github.com/charmbracelet/huh"
)

// RunValidateForm asks for the document to validate and, optionally, a
// schema overriding the configured one. Known documents are offered as a
// filterable list; without any the path is typed in.
func RunValidateForm(document, schema *string, documents []string) error {
	var docField huh.Field
	if len(documents) > 0 {
		options := make([]huh.Option[string], 0, len(documents))
		for _, d := range documents {
			options = append(options, huh.NewOption(d, d))
		}
		docField = huh.NewSelect[string]().
			Title("Document to validate").
			Options(options...).
			Filtering(true).
			Height(10).
			Value(document)
	} else {
		docField = huh.NewInput().
			Title("Document to validate").
			Placeholder("examples/timeseries/eeg-alpha.jsonld").
			Validate(requiredValidator("document")).
			Value(document)
	}

	return huh.NewForm(
		huh.NewGroup(docField),
		huh.NewGroup(
			huh.NewInput().
				Title("Schema (empty for the configured schema)").
				Prompt(": ").
				Inline(true).
				Value(schema),
		),
	).WithTheme(Theme()).Run()
}
