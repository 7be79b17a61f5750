// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"fmt"

	"github.com/evidencepub/rapval/internal/version"
	"github.com/spf13/cobra"
)

type versionOptions struct {
	short bool
}

func newVersionCmd() *cobra.Command {
	opts := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the rapval version",
		Example: `  # Show version, commit and build date
  rapval version

  # Show only the version
  rapval version --short`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.short, "short", false, "Print only the version")

	return cmd
}
