// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import "errors"

var (
	// ErrValidationFailed is returned when a validated document did not pass.
	// The report has already been printed.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNoDocuments indicates a directory without any *.jsonld document.
	ErrNoDocuments = errors.New("no documents found")
)

// Exit codes returned by the CLI.
const (
	ExitOK          = 0
	ExitInvalid     = 1
	ExitOperational = 2
)

// ExitCode maps an error returned by the root command to a process exit
// code: 1 for documents that did not pass, 2 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidationFailed):
		return ExitInvalid
	default:
		return ExitOperational
	}
}
