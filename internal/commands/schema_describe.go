// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/session"
	"github.com/spf13/cobra"
)

type schemaDescribeOptions struct {
	def    string // definition to show instead of the root
	output string // output format: text, json, yaml
}

func newSchemaDescribeCmd() *cobra.Command {
	opts := &schemaDescribeOptions{}

	cmd := &cobra.Command{
		Use:   "describe [SCHEMA]",
		Short: "Show the structure of a schema",
		Long:  `Display the properties, types and definitions of a schema, or of one of its definitions. Without an argument the configured schema is described.`,
		Example: `  # Describe the configured schema
  rapval schema describe

  # Show a single definition
  rapval schema describe --def ParticipantReference

  # Show a definition as YAML
  rapval schema describe schemas/v1/research-product.json --def DemographicData -o yaml`,
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
			return runSchemaDescribe(cmd, s, ref, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.def, "def", "d", "", "Definition to describe")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}

func runSchemaDescribe(cmd *cobra.Command, s *session.Session, ref string, opts *schemaDescribeOptions) error {
	if err := checkOutput(opts.output); err != nil {
		return err
	}
	doc, err := s.Loader.Load(cmd.Context(), ref, jschema.LoadOptions{Timeout: s.Defaults.Timeout})
	if err != nil {
		return err
	}

	schema := doc.Root
	name := doc.ID
	if opts.def != "" {
		def, ok := doc.Defs[opts.def]
		if !ok {
			return fmt.Errorf("definition %q not found in %s", opts.def, doc.ID)
		}
		schema, name = def, opts.def
	}

	w := cmd.OutOrStdout()
	if opts.output != outputText {
		return writeStructured(w, schema, opts.output)
	}

	fmt.Fprintf(w, "Name:        %s\n", name)
	if schema.Title != "" {
		fmt.Fprintf(w, "Title:       %s\n", schema.Title)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Schema:")
	printSchemaText(w, schema, "  ")
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

func schemaType(s *jschema.Schema) string {
	switch {
	case s.Ref != "":
		return s.Ref
	case s.Type != "":
		return s.Type
	case len(s.Types) > 0:
		return strings.Join(s.Types, " | ")
	case len(s.OneOf) > 0:
		return "oneOf"
	case len(s.AnyOf) > 0:
		return "anyOf"
	}
	return "any"
}

func enumText(values []any) string {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = fmt.Sprintf("%v", v)
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

func printSchemaText(w io.Writer, schema *jschema.Schema, indent string) {
	if schema.Ref != "" {
		fmt.Fprintf(w, "%sRef: %s\n", indent, schema.Ref)
		return
	}

	if t := schemaType(schema); t != "any" {
		fmt.Fprintf(w, "%sType: %s\n", indent, t)
	}

	if schema.Description != "" {
		fmt.Fprintf(w, "%sDescription: %s\n", indent, schema.Description)
	}

	if schema.Format != "" {
		fmt.Fprintf(w, "%sFormat: %s\n", indent, schema.Format)
	}

	if schema.Pattern != "" {
		fmt.Fprintf(w, "%sPattern: %s\n", indent, schema.Pattern)
	}

	if len(schema.Enum) > 0 {
		fmt.Fprintf(w, "%sEnum: %s\n", indent, enumText(schema.Enum))
	}

	if schema.Minimum != nil {
		fmt.Fprintf(w, "%sMinimum: %v\n", indent, *schema.Minimum)
	}

	if schema.Maximum != nil {
		fmt.Fprintf(w, "%sMaximum: %v\n", indent, *schema.Maximum)
	}

	// Object properties
	if len(schema.Properties) > 0 {
		fmt.Fprintf(w, "%sProperties:\n", indent)

		requiredSet := make(map[string]bool)
		for _, r := range schema.Required {
			requiredSet[r] = true
		}

		for _, propName := range sortedKeys(schema.Properties) {
			propSchema := schema.Properties[propName]
			required := ""
			if requiredSet[propName] {
				required = " (required)"
			}

			extra := ""
			if propSchema.Format != "" {
				extra = fmt.Sprintf(", format: %s", propSchema.Format)
			}
			if len(propSchema.Enum) > 0 {
				extra = fmt.Sprintf(", enum: %s", enumText(propSchema.Enum))
			}

			fmt.Fprintf(w, "%s  - %s (%s%s)%s\n", indent, propName, schemaType(propSchema), extra, required)
		}
	}

	// Alternatives
	for _, group := range []struct {
		label string
		alts  []*jschema.Schema
	}{{"OneOf", schema.OneOf}, {"AnyOf", schema.AnyOf}} {
		if len(group.alts) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s%s:\n", indent, group.label)
		for i, alt := range group.alts {
			fmt.Fprintf(w, "%s  [%d]\n", indent, i)
			printSchemaText(w, alt, indent+"    ")
		}
	}

	// Array items
	if schema.Items != nil {
		fmt.Fprintf(w, "%sItems:\n", indent)
		printSchemaText(w, schema.Items, indent+"  ")
	}

	// $defs
	if len(schema.Defs) > 0 {
		fmt.Fprintf(w, "%s$defs:\n", indent)
		for _, defName := range sortedKeys(schema.Defs) {
			fmt.Fprintf(w, "%s  %s:\n", indent, defName)
			printSchemaText(w, schema.Defs[defName], indent+"    ")
		}
	}
}
