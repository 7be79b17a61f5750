// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package prompts

import (
	"github.com/charmbracelet/huh"
)

// RunInitForm runs the interactive form for the init command.
// It fills the provided pointers with user input.
func RunInitForm(schemas, schema, mainContext, engine *string, strict, remote *bool) error {
	useBundle := *schemas == "" && *schema == ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Title("Schema source").
				Options(
					huh.NewOption("Bundled RAP schema", true),
					huh.NewOption("Local schema directory", false),
				).
				Value(&useBundle),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Schema directory").
				Placeholder("schemas").
				Validate(requiredValidator("schema directory")).
				Value(schemas),
			huh.NewInput().
				Title("Root schema (relative to the schema directory)").
				Placeholder("v1/research-product.json").
				Validate(requiredValidator("root schema")).
				Value(schema),
			huh.NewInput().
				Title("Main context (URI or path, optional)").
				Placeholder("https://rap-spec.evidencepub.io/v1/context").
				Value(mainContext),
		).WithHideFunc(func() bool { return useBundle }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Validation engine").
				Options(
					huh.NewOption("Native (recommended)", "native"),
					huh.NewOption("Compiled", "compiled"),
				).
				Value(engine),
			huh.NewConfirm().
				Title("Fail on warnings?").
				Affirmative("Yes").
				Negative("No").
				Value(strict),
			huh.NewConfirm().
				Title("Allow loading schemas and contexts over http(s)?").
				Affirmative("Yes").
				Negative("No").
				Value(remote),
		),
	).WithTheme(Theme()).Run()
}
