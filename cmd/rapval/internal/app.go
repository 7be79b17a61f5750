// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"

	"github.com/evidencepub/rapval/internal/commands"
	"github.com/evidencepub/rapval/internal/session"
)

// LogLevelEnv sets the default of the --log-level flag.
const LogLevelEnv = "RAPVAL_LOG_LEVEL"

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters (context, arguments, env lookup).
func Run(ctx context.Context, args []string, getenv func(string) string) error {
	rootCmd := commands.NewRootCmd()
	if level := getenv(LogLevelEnv); level != "" {
		if err := rootCmd.PersistentFlags().Set(session.LogLevelFlag, level); err != nil {
			return err
		}
	}
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
