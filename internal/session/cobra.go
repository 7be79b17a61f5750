// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package session

import (
	"errors"

	"github.com/evidencepub/rapval/internal/logging"
	"github.com/spf13/cobra"
)

// LogLevelFlag is the persistent root flag read by PreRunLoad.
const LogLevelFlag = "log-level"

// FromCommand extracts the Session from a cobra.Command's context.
// Returns nil if no Session is stored.
func FromCommand(cmd *cobra.Command) *Session {
	return From(cmd.Context())
}

// RequireFromCommand extracts the Session from a cobra.Command's context,
// returning an error if not found.
func RequireFromCommand(cmd *cobra.Command) (*Session, error) {
	s := FromCommand(cmd)
	if s == nil {
		return nil, errors.New("validation session not loaded")
	}
	return s, nil
}

// PreRunLoad is a PersistentPreRunE function that loads the session and
// stores it in the command's context. Logs go to the command's stderr at
// the level of the --log-level flag.
func PreRunLoad(cmd *cobra.Command, _ []string) error {
	level := logging.DefaultLevel
	if f := cmd.Flag(LogLevelFlag); f != nil {
		level = f.Value.String()
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}

	ctx, err := Load(cmd.Context(), logger)
	if err != nil {
		return err
	}
	cmd.SetContext(ctx)
	return nil
}
