// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/evidencepub/rapval/internal/pipeline"
	"github.com/evidencepub/rapval/internal/session"
	"github.com/evidencepub/rapval/internal/violation"
	"github.com/spf13/cobra"
)

// DefaultExamplesDir is the directory validated when none is given.
const DefaultExamplesDir = "examples"

type examplesOptions struct {
	schema string
	engine string
	strict bool
	jobs   int
}

func newExamplesCmd() *cobra.Command {
	opts := &examplesOptions{}

	cmd := &cobra.Command{
		Use:   "examples [DIR]",
		Short: "Validate every document in a directory",
		Long: `Validate every *.jsonld document under DIR (default "examples") in
parallel and print one result per document followed by a summary.
Exits non-zero when any document is invalid or none is found.`,
		Example: `  # Validate the bundled examples
  rapval examples

  # Validate another directory with four workers
  rapval examples testdata/products --jobs 4`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}

			dir := DefaultExamplesDir
			if len(args) > 0 {
				dir = args[0]
			}
			return runExamples(cmd, s, dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "Root schema (path or URI), overrides the configured schema")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", "", "Validation engine (native or compiled), overrides the config")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "Concurrent validations (default GOMAXPROCS)")

	return cmd
}

func runExamples(cmd *cobra.Command, s *session.Session, dir string, opts *examplesOptions) error {
	paths, err := pipeline.FindDocuments(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no *.jsonld files in %s", ErrNoDocuments, dir)
	}

	req, err := request(s, opts.schema, nil, opts.engine, opts.strict)
	if err != nil {
		return err
	}
	results, err := s.Validator.ValidateAll(cmd.Context(), paths, req, opts.jobs)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	valid := 0
	for _, res := range results {
		if res.Valid() {
			valid++
		}
		printExampleResult(w, res)
	}
	invalid := len(results) - valid
	fmt.Fprintf(w, "\nResults: %d valid, %d invalid\n", valid, invalid)

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d documents", ErrValidationFailed, invalid, len(results))
	}
	return nil
}

func printExampleResult(w io.Writer, res pipeline.Result) {
	r := lipgloss.NewRenderer(w)
	success := r.NewStyle().Foreground(lipgloss.Color("#27ca3f"))
	failure := r.NewStyle().Foreground(lipgloss.Color("#ff5f56"))
	muted := r.NewStyle().Foreground(lipgloss.Color("#bababa"))

	switch {
	case res.Err != nil:
		fmt.Fprintf(w, "%s %s\n", failure.Render("✗"), res.Path)
		fmt.Fprintf(w, "    %s\n", muted.Render("error: "+res.Err.Error()))
		return
	case res.Valid():
		fmt.Fprintf(w, "%s %s\n", success.Render("✓"), res.Path)
	default:
		fmt.Fprintf(w, "%s %s\n", failure.Render("✗"), res.Path)
	}

	for _, v := range res.Report.Violations {
		line := fmt.Sprintf("    %s: %s: %s", v.Severity, v.Path, v.Message)
		if v.Severity == violation.Warning {
			line = muted.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}
