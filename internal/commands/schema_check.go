// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"strconv"

	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/prompts"
	"github.com/evidencepub/rapval/internal/session"
	"github.com/spf13/cobra"
)

type schemaCheckOptions struct {
	refresh bool
}

func newSchemaCheckCmd() *cobra.Command {
	opts := &schemaCheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [SCHEMA]",
		Short: "Load and meta-validate a schema",
		Long: `Load a root schema with every document it references, resolve all
$ref values and validate the set against the draft 2020-12 metaschema.
Without an argument the configured schema is checked.`,
		Example: `  # Check the configured schema
  rapval schema check

  # Check a local schema
  rapval schema check schemas/v1/research-product.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			ref, err := schemaArg(s, args)
			if err != nil {
				return err
			}
			return runSchemaCheck(cmd, s, ref, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Reload instead of using a cached copy")

	return cmd
}

// schemaArg returns the loader reference for the optional schema argument.
func schemaArg(s *session.Session, args []string) (string, error) {
	if len(args) == 0 {
		return s.Defaults.Schema, nil
	}
	return s.SchemaRef(args[0])
}

func runSchemaCheck(cmd *cobra.Command, s *session.Session, ref string, opts *schemaCheckOptions) error {
	doc, err := s.Loader.Load(cmd.Context(), ref, jschema.LoadOptions{
		Refresh: opts.refresh,
		Timeout: s.Defaults.Timeout,
	})
	if err != nil {
		return err
	}

	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "ID", Value: doc.ID},
		{Label: "Source", Value: doc.Source},
		{Label: "Draft", Value: doc.Draft},
		{Label: "Definitions", Value: prompts.List(sortedKeys(doc.Defs))},
		{Label: "Properties", Value: strconv.Itoa(len(doc.PropertyNames()))},
		{Label: "Dependencies", Value: prompts.List(doc.Dependencies())},
	}, "Schema is valid")
	return nil
}
