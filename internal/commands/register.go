// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package commands contains all CLI command definitions.
package commands

import (
	"github.com/evidencepub/rapval/internal/logging"
	"github.com/evidencepub/rapval/internal/session"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rapval",
		Short: "Validate RAP research product documents",
		Long: `Validate JSON-LD research product documents against the RAP JSON Schema
and the RAP JSON-LD contexts. Structural problems, unresolved terms,
non-QUDT units and broken provenance chains are reported together.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(session.LogLevelFlag, logging.DefaultLevel, "Log level (debug, info, warn, error)")

	registerInitCmd(rootCmd)
	registerValidateCmd(rootCmd)
	registerExamplesCmd(rootCmd)
	registerContextCmd(rootCmd)
	registerSchemaCmd(rootCmd)
	registerVersionCmd(rootCmd)

	return rootCmd
}

func registerInitCmd(parent *cobra.Command) {
	parent.AddCommand(newInitCmd())
}

func registerValidateCmd(parent *cobra.Command) {
	parent.AddCommand(newValidateCmd())
}

func registerExamplesCmd(parent *cobra.Command) {
	parent.AddCommand(newExamplesCmd())
}

func registerContextCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "context",
		Short:             "Inspect JSON-LD contexts",
		PersistentPreRunE: session.PreRunLoad,
	}

	cmd.AddCommand(newContextResolveCmd())

	parent.AddCommand(cmd)
}

func registerSchemaCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "schema",
		Short:             "Inspect JSON Schemas",
		PersistentPreRunE: session.PreRunLoad,
	}

	cmd.AddCommand(newSchemaCheckCmd())
	cmd.AddCommand(newSchemaDescribeCmd())

	parent.AddCommand(cmd)
}

func registerVersionCmd(parent *cobra.Command) {
	parent.AddCommand(newVersionCmd())
}
