// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package session provides the validation session shared by CLI commands:
// configuration, logger, schema cache and context cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evidencepub/rapval/internal/config"
	"github.com/evidencepub/rapval/internal/fetch"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/logging"
	"github.com/evidencepub/rapval/internal/pipeline"
	"github.com/evidencepub/rapval/internal/rap"
	"github.com/evidencepub/rapval/internal/semantic"
	"github.com/evidencepub/rapval/internal/structural"
	"github.com/google/uuid"
)

var (
	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOutsideSchemaDir indicates a schema path outside the schema directory.
	ErrOutsideSchemaDir = errors.New("schema is outside the schema directory")
)

// contextKey is used to store Session in context.Context.
type contextKey struct{}

// Session owns the caches, configuration and logger of one CLI invocation.
// Its loader and resolver are safe for concurrent use.
type Session struct {
	// ID tags every log record of the session.
	ID string
	// Config is the loaded configuration (defaults when no file exists).
	Config *config.Config
	// Dir is the directory relative paths are resolved against.
	Dir string
	// SchemaDir is the root of the schema loader filesystem.
	SchemaDir string

	Logger    *slog.Logger
	Loader    *jschema.Loader
	Resolver  *jsonld.Resolver
	Validator *pipeline.Validator
	Defaults  pipeline.Defaults
}

// New builds a session for cfg with relative paths resolved against dir.
func New(cfg *config.Config, dir string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:     uuid.NewString(),
		Config: cfg,
		Dir:    dir,
	}
	s.Logger = logger.With("session", s.ID)

	s.SchemaDir = dir
	if cfg.Schemas != "" {
		s.SchemaDir = s.abs(cfg.Schemas)
	}

	var client *http.Client
	if cfg.Remote {
		client = fetch.NewClient()
	}

	s.Loader = jschema.NewLoader(rap.Overlay(os.DirFS(s.SchemaDir)),
		jschema.WithHTTPClient(client),
		jschema.WithLogger(s.Logger))

	aliases := make(map[string]string, len(cfg.Contexts.Aliases))
	for uri, p := range cfg.Contexts.Aliases {
		aliases[uri] = rootPath(s.abs(p))
	}
	s.Resolver = jsonld.NewResolver(rap.Overlay(os.DirFS("/")),
		jsonld.WithAliases(rap.MergeAliases(aliases)),
		jsonld.WithHTTPClient(client),
		jsonld.WithLogger(s.Logger))

	s.Defaults = pipeline.Defaults{
		Schema:              rap.SchemaURI,
		MainContext:         rap.ContextURI,
		MeasurementContexts: rap.MeasurementContexts(),
		Timeout:             cfg.TimeoutDuration(),
	}
	if cfg.Schema != "" {
		s.Defaults.Schema = cfg.Schema
	} else {
		s.Defaults.TypeSchemas = rap.TypeSchemas()
	}
	if cfg.Contexts.Main != "" {
		s.Defaults.MainContext = s.ContextRef(cfg.Contexts.Main)
	}
	for kind, ref := range cfg.Contexts.Measurements {
		s.Defaults.MeasurementContexts[kind] = s.ContextRef(ref)
	}

	known := append(rap.KnownContexts(), slices.Collect(maps.Keys(aliases))...)
	known = append(known, s.Defaults.MainContext)
	known = append(known, slices.Collect(maps.Values(s.Defaults.MeasurementContexts))...)
	slices.Sort(known)
	s.Defaults.KnownContexts = slices.Compact(known)

	checker := semantic.NewChecker(
		semantic.WithTermSeverity(cfg.TermSeverity()),
		semantic.WithUnitSeverity(cfg.UnitSeverity()),
		semantic.WithLogger(s.Logger))
	s.Validator = pipeline.New(s.Loader, s.Resolver, checker, s.Defaults, pipeline.WithLogger(s.Logger))

	s.Logger.Debug("session created", "dir", s.Dir, "schemas", s.SchemaDir, "remote", cfg.Remote)
	return s, nil
}

// Load builds a session from rapval.yaml in the current working directory
// (defaults when it does not exist) and returns a new context.Context with
// the Session stored in it.
func Load(ctx context.Context, logger *slog.Logger) (context.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.Load(filepath.Join(cwd, config.FileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s, err := New(cfg, cwd, logger)
	if err != nil {
		return nil, err
	}
	return context.WithValue(ctx, contextKey{}, s), nil
}

// From extracts the Session from a context.Context.
// Returns nil if no Session is stored.
func From(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return nil
}

// Engine returns the configured validation engine.
func (s *Session) Engine() structural.Engine {
	e, err := structural.ParseEngine(s.Config.Engine)
	if err != nil {
		return structural.Native
	}
	return e
}

// SchemaRef turns a schema argument into a loader reference. URIs are kept;
// paths are taken relative to the working directory and must lie inside
// the schema directory.
func (s *Session) SchemaRef(arg string) (string, error) {
	if isURI(arg) {
		return arg, nil
	}
	rel, err := filepath.Rel(s.SchemaDir, s.abs(arg))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s (schema directory %s)", ErrOutsideSchemaDir, arg, s.SchemaDir)
	}
	return filepath.ToSlash(rel), nil
}

// ContextRef turns a context argument into a resolver URI. URIs are kept;
// paths are taken relative to the working directory.
func (s *Session) ContextRef(arg string) string {
	if isURI(arg) {
		return arg
	}
	return fetch.Location(s.abs(arg))
}

func (s *Session) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.Dir, p)
}

// rootPath converts an absolute path into a path of os.DirFS("/").
func rootPath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "/")
}

func isURI(s string) bool {
	_, inFS := fetch.FSPath(fetch.Location(s))
	return !inFS || strings.HasPrefix(s, fetch.FileScheme)
}
