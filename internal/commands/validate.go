// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evidencepub/rapval/internal/pipeline"
	"github.com/evidencepub/rapval/internal/prompts"
	"github.com/evidencepub/rapval/internal/report"
	"github.com/evidencepub/rapval/internal/session"
	"github.com/evidencepub/rapval/internal/structural"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	schema         string
	contexts       []string
	strict         bool
	engine         string
	format         string
	timeout        time.Duration
	nonInteractive bool
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [DOCUMENT] [SCHEMA]",
		Short: "Validate a research product document",
		Long: `Validate a JSON-LD research product document. The document is checked
against the JSON Schema first; when that produces no errors its terms,
units and provenance chain are checked against the resolved contexts.

Exit status is 0 when the document passes, 1 when it does not and 2 when
the schema, a context or the document itself could not be loaded. If no
document is given, an interactive prompt is shown.`,
		Example: `  # Validate against the configured schema
  rapval validate examples/timeseries/eeg-alpha.jsonld

  # Validate against a specific schema, failing on warnings
  rapval validate product.jsonld schemas/v1/research-product.json --strict

  # Use an explicit context chain and print JSON
  rapval validate product.jsonld --context ctx/base.jsonld --context ctx/extra.jsonld -o json`,
		Args:    cobra.MaximumNArgs(2),
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}

			var document string
			if len(args) > 0 {
				document = args[0]
			}
			if len(args) > 1 {
				if opts.schema != "" {
					return errors.New("schema given both as argument and --schema")
				}
				opts.schema = args[1]
			}

			if document == "" {
				if opts.nonInteractive {
					return errors.New("document argument is required in non-interactive mode")
				}
				documents, err := pipeline.FindDocuments(".")
				if err != nil {
					return err
				}
				if err := prompts.RunValidateForm(&document, &opts.schema, documents); err != nil {
					return err
				}
			}
			return runValidate(cmd, s, document, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "Root schema (path or URI), overrides the configured schema")
	cmd.Flags().StringArrayVarP(&opts.contexts, "context", "c", nil, "Context (path or URI) replacing the document's @context; repeatable")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "", "Validation engine (native or compiled), overrides the config")
	cmd.Flags().StringVarP(&opts.format, "format", "o", string(report.Text), "Output format (text, json)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Bound schema and context loading, overrides the config")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	return cmd
}

// request builds the validation request shared by validate and examples.
func request(s *session.Session, schema string, contexts []string, engine string, strict bool) (pipeline.Request, error) {
	req := pipeline.Request{
		Engine: s.Engine(),
		Strict: strict || s.Config.Strict,
	}
	if engine != "" {
		e, err := structural.ParseEngine(engine)
		if err != nil {
			return req, err
		}
		req.Engine = e
	}
	if schema != "" {
		ref, err := s.SchemaRef(schema)
		if err != nil {
			return req, err
		}
		req.Schema = ref
	}
	for _, c := range contexts {
		if strings.TrimSpace(c) == "" {
			continue
		}
		req.Contexts = append(req.Contexts, s.ContextRef(c))
	}
	return req, nil
}

func runValidate(cmd *cobra.Command, s *session.Session, document string, opts *validateOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	req, err := request(s, opts.schema, opts.contexts, opts.engine, opts.strict)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	r, err := s.Validator.ValidateFile(ctx, document, req)
	if err != nil {
		return fmt.Errorf("validating %s: %w", document, err)
	}
	if err := report.Write(cmd.OutOrStdout(), r, format); err != nil {
		return err
	}
	if !r.Pass {
		return ErrValidationFailed
	}
	return nil
}
