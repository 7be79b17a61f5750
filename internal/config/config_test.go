// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evidencepub/rapval/internal/violation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, FileName)

	cfg := Config{
		Version: 1,
		Schemas: "schemas",
		Contexts: Contexts{
			Measurements: map[string]string{"timeseries": "ctx/timeseries.jsonld"},
		},
		Strict: true,
	}

	err := cfg.Save(cfgPath)
	require.NoError(t, err)

	loaded, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, cfg, *loaded)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "valid config",
			cfg:     Config{Version: 1},
			wantErr: "",
		},
		{
			name:    "unsupported version",
			cfg:     Config{Version: 99},
			wantErr: "unsupported config version",
		},
		{
			name:    "unknown engine",
			cfg:     Config{Version: 1, Engine: "fast"},
			wantErr: "unknown validation engine",
		},
		{
			name:    "bad timeout",
			cfg:     Config{Version: 1, Timeout: "soon"},
			wantErr: "invalid timeout",
		},
		{
			name:    "negative timeout",
			cfg:     Config{Version: 1, Timeout: "-1s"},
			wantErr: "timeout must be positive",
		},
		{
			name:    "bad severity",
			cfg:     Config{Version: 1, Severity: Severity{NonQUDTUnit: "fatal"}},
			wantErr: "severity.nonQudtUnit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_SaveFormat(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, FileName)

	cfg := Config{
		Version: 1,
		Schema:  "v1/research-product.json",
		Severity: Severity{
			UnresolvedTerm: "warning",
		},
	}

	err := cfg.Save(cfgPath)
	require.NoError(t, err)

	content, err := os.ReadFile(cfgPath) //nolint:gosec // test file path
	require.NoError(t, err)

	output := string(content)
	assert.Contains(t, output, "version: 1")
	assert.Contains(t, output, "schema: v1/research-product.json")
	assert.Contains(t, output, "  unresolvedTerm: warning")
	assert.NotContains(t, output, "engine")
	assert.NotContains(t, output, "strict")
}

func TestConfig_Load(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "schemas", cfg.Schemas)
	assert.Equal(t, "v1/research-product.json", cfg.Schema)
	assert.Equal(t, "https://rap-spec.evidencepub.io/v1/context", cfg.Contexts.Main)
	assert.Equal(t, "schemas/v1/measurements/relaxometry-mri.jsonld", cfg.Contexts.Measurements["relaxometry_mri"])
	assert.Equal(t, "contexts/example.jsonld", cfg.Contexts.Aliases["https://example.org/context"])
	assert.Equal(t, "compiled", cfg.Engine)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, violation.Warning, cfg.TermSeverity())
	assert.Equal(t, violation.Error, cfg.UnitSeverity())
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTimeout, cfg.TimeoutDuration())
	assert.Equal(t, violation.Error, cfg.TermSeverity())
	assert.Equal(t, violation.Warning, cfg.UnitSeverity())
}

func TestConfig_Load_NotFound(t *testing.T) {
	_, err := Load("testdata/nonexistent.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Load_Invalid(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	assert.Error(t, err)
}

func TestConfig_Save_InvalidPath(t *testing.T) {
	cfg := Config{Version: 1}

	err := cfg.Save("/nonexistent/directory/config.yaml")
	assert.Error(t, err)
}

func TestConfig_Load_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyFile, []byte(""), 0o600))

	_, err := Load(emptyFile)
	assert.Error(t, err)
}
