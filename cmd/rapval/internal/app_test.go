// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package internal

import (
	"context"
	"os"
	"testing"

	"github.com/evidencepub/rapval/internal/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		wantCode int
	}{
		{name: "version", args: []string{"version", "--short"}, wantCode: commands.ExitOK},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: commands.ExitOperational},
		{name: "missing document", args: []string{"validate", "--non-interactive"}, wantCode: commands.ExitOperational},
		{
			name:     "bad log level from env",
			args:     []string{"validate", "doc.jsonld"},
			env:      map[string]string{LogLevelEnv: "loud"},
			wantCode: commands.ExitOperational,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			err := Run(context.Background(), tt.args, getenv)
			assert.Equal(t, tt.wantCode, commands.ExitCode(err))
		})
	}
}
