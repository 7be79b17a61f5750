// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/evidencepub/rapval/internal/config"
	"github.com/evidencepub/rapval/internal/prompts"
	"github.com/evidencepub/rapval/internal/structural"
	"github.com/spf13/cobra"
)

type initOptions struct {
	schemas        string
	schema         string
	mainContext    string
	engine         string
	strict         bool
	remote         bool
	nonInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a rapval.yaml configuration",
		Long: `Create a rapval.yaml configuration file in the current directory.
Without a schema directory the bundled RAP schema and contexts are used.`,
		Example: `  # Interactive mode
  rapval init

  # Non-interactive, bundled RAP schema, warnings fail validation
  rapval init --strict --non-interactive

  # Non-interactive, local schema directory
  rapval init --schemas schemas --schema v1/research-product.json --non-interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.schemas, "schemas", "", "Schema directory")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "Root schema, relative to the schema directory")
	cmd.Flags().StringVar(&opts.mainContext, "main-context", "", "Context used for documents without @context")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", string(structural.Native), "Validation engine (native or compiled)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Treat warnings as failures")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Allow loading schemas and contexts over http(s)")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	return cmd
}

func runInit(w io.Writer, opts *initOptions) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfgPath := filepath.Join(cwd, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return errors.New(config.FileName + " already exists; project already initialized")
	}

	if !opts.nonInteractive {
		if err := prompts.RunInitForm(
			&opts.schemas,
			&opts.schema,
			&opts.mainContext,
			&opts.engine,
			&opts.strict,
			&opts.remote,
		); err != nil {
			return err
		}
	}

	if opts.schema != "" && opts.schemas != "" {
		if _, err := os.Stat(filepath.Join(cwd, opts.schemas, opts.schema)); err != nil {
			return fmt.Errorf("schema not found: %s", filepath.Join(opts.schemas, opts.schema))
		}
	}

	cfg := config.Config{
		Version: config.CurrentConfigVersion,
		Schemas: opts.schemas,
		Schema:  opts.schema,
		Contexts: config.Contexts{
			Main: opts.mainContext,
		},
		Strict: opts.strict,
		Remote: opts.remote,
	}
	if opts.engine != string(structural.Native) {
		cfg.Engine = opts.engine
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	schema := opts.schema
	if schema == "" {
		schema = "bundled RAP schema"
	}
	prompts.PrintResult(w, []prompts.ResultField{
		{Label: "Config", Value: config.FileName},
		{Label: "Schema", Value: schema},
		{Label: "Engine", Value: opts.engine},
		{Label: "Strict", Value: strconv.FormatBool(opts.strict)},
	}, "Initialization completed")
	return nil
}
