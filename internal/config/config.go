// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package config handles rapval project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/evidencepub/rapval/internal/structural"
	"github.com/evidencepub/rapval/internal/violation"
	"gopkg.in/yaml.v3"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// FileName is the name of the configuration file looked up in the working
// directory.
const FileName = "rapval.yaml"

// DefaultTimeout bounds schema and context loading for one validation.
const DefaultTimeout = 30 * time.Second

// Config represents the rapval.yaml configuration file. Empty fields fall
// back to the embedded RAP bundle.
type Config struct {
	Version int `yaml:"version"`
	// Schemas is the directory schema references are resolved in.
	Schemas string `yaml:"schemas,omitempty"`
	// Schema is the default root schema, a path inside Schemas or a URI.
	Schema   string   `yaml:"schema,omitempty"`
	Contexts Contexts `yaml:"contexts,omitempty"`
	Engine   string   `yaml:"engine,omitempty"`
	Strict   bool     `yaml:"strict,omitempty"`
	// Remote allows loading schemas and contexts over http(s).
	Remote   bool     `yaml:"remote,omitempty"`
	Timeout  string   `yaml:"timeout,omitempty"`
	Severity Severity `yaml:"severity,omitempty"`
}

// Contexts configures JSON-LD context resolution.
type Contexts struct {
	// Main is used for documents that declare no @context.
	Main string `yaml:"main,omitempty"`
	// Measurements maps a measurementType to the context appended for it.
	Measurements map[string]string `yaml:"measurements,omitempty"`
	// Aliases maps context URIs to local files.
	Aliases map[string]string `yaml:"aliases,omitempty"`
}

// Severity overrides the severity of semantic findings.
type Severity struct {
	UnresolvedTerm string `yaml:"unresolvedTerm,omitempty"`
	NonQUDTUnit    string `yaml:"nonQudtUnit,omitempty"`
}

// Default returns the configuration used when no rapval.yaml exists.
func Default() *Config {
	return &Config{Version: CurrentConfigVersion}
}

// Load reads a Config from a file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	if _, err := structural.ParseEngine(c.Engine); err != nil {
		return err
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
	}
	for name, s := range map[string]string{
		"severity.unresolvedTerm": c.Severity.UnresolvedTerm,
		"severity.nonQudtUnit":    c.Severity.NonQUDTUnit,
	} {
		if s == "" {
			continue
		}
		if _, err := violation.ParseSeverity(s); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// TimeoutDuration returns the configured timeout, or DefaultTimeout.
func (c *Config) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	return DefaultTimeout
}

// TermSeverity returns the severity of unresolved terms (error by default).
func (c *Config) TermSeverity() violation.Severity {
	return severityOr(c.Severity.UnresolvedTerm, violation.Error)
}

// UnitSeverity returns the severity of non-QUDT units (warning by default).
func (c *Config) UnitSeverity() violation.Severity {
	return severityOr(c.Severity.NonQUDTUnit, violation.Warning)
}

func severityOr(s string, def violation.Severity) violation.Severity {
	if s == "" {
		return def
	}
	sev, err := violation.ParseSeverity(s)
	if err != nil {
		return def
	}
	return sev
}
