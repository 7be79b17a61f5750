// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package main is the entry point for the rapval CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/evidencepub/rapval/cmd/rapval/internal"
	"github.com/evidencepub/rapval/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := internal.Run(ctx, os.Args[1:], os.Getenv)
	stop()

	// Failed validations have already been reported on stdout.
	if err != nil && !errors.Is(err, commands.ErrValidationFailed) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(commands.ExitCode(err))
}
