// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

// Package pipeline runs a complete validation: it loads the schema and the
// context chain, validates the document structure and, only when that
// produced no errors, runs the semantic checks.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/fetch"
	"github.com/evidencepub/rapval/internal/jschema"
	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/report"
	"github.com/evidencepub/rapval/internal/semantic"
	"github.com/evidencepub/rapval/internal/structural"
	"github.com/evidencepub/rapval/internal/violation"
	"golang.org/x/sync/errgroup"
)

// Defaults are the session-wide settings a Request falls back to.
type Defaults struct {
	// Schema is the root schema reference used when a request names none
	// and TypeSchemas has no entry for the document's @type.
	Schema string
	// TypeSchemas maps a root @type to the schema of that document type.
	TypeSchemas map[string]string
	// MainContext is used for documents that declare no @context.
	MainContext string
	// MeasurementContexts maps a measurementType to the context appended
	// to the chain of documents of that type.
	MeasurementContexts map[string]string
	// KnownContexts are accepted in the root @context on top of the
	// contexts the schema enumerates.
	KnownContexts []string
	// Timeout bounds schema and context loading. Zero means no timeout.
	Timeout time.Duration
}

// Request describes one validation.
type Request struct {
	// Schema overrides the schema picked from Defaults.
	Schema string
	// Contexts replaces the context chain declared by the document.
	Contexts []string
	Engine   structural.Engine
	Strict   bool
	// Refresh reloads the schema instead of using the cached copy.
	Refresh bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Validator validates documents with a shared schema loader and context
// resolver. It is safe for concurrent use.
type Validator struct {
	loader   *jschema.Loader
	resolver *jsonld.Resolver
	checker  *semantic.Checker
	defaults Defaults
	logger   *slog.Logger
}

// New returns a Validator.
func New(loader *jschema.Loader, resolver *jsonld.Resolver, checker *semantic.Checker, defaults Defaults, opts ...Option) *Validator {
	v := &Validator{
		loader:   loader,
		resolver: resolver,
		checker:  checker,
		defaults: defaults,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateFile reads the document at path and validates it.
func (v *Validator) ValidateFile(ctx context.Context, path string, req Request) (*report.Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(path, data)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, doc, req)
}

// Validate validates doc. Schema and context failures are returned as
// errors; problems with the document itself are reported as violations.
func (v *Validator) Validate(ctx context.Context, doc *document.Document, req Request) (*report.Report, error) {
	if v.defaults.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.defaults.Timeout)
		defer cancel()
	}

	schemaRef := v.SchemaFor(doc, req.Schema)
	sources, err := v.ContextSources(doc, req.Contexts)
	if err != nil {
		return nil, err
	}

	var (
		schema  *jschema.SchemaDocument
		mapping *jsonld.ContextMapping
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schema, err = v.loader.Load(gctx, schemaRef, jschema.LoadOptions{Refresh: req.Refresh})
		return err
	})
	g.Go(func() error {
		var err error
		mapping, err = v.resolver.Resolve(gctx, sources)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vs, err := structural.Validate(doc, schema, structural.Options{
		Engine:        req.Engine,
		KnownContexts: v.defaults.KnownContexts,
		Logger:        v.logger,
	})
	if err != nil {
		return nil, err
	}
	if !violation.HasErrors(vs) {
		vs = append(vs, v.checker.Check(doc, mapping)...)
	} else {
		v.logger.Debug("semantic checks skipped", "document", doc.Name, "errors", violation.Count(vs, violation.Error))
	}

	r := report.Build(doc.Name, schema.ID, vs, report.Options{Strict: req.Strict})
	v.logger.Info("document validated", "document", doc.Name, "pass", r.Pass, "errors", r.Errors, "warnings", r.Warnings)
	return r, nil
}

// SchemaFor returns the schema reference doc is validated against: the
// explicit one when given, else the schema of its root @type, else the
// default schema.
func (v *Validator) SchemaFor(doc *document.Document, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if ref, ok := v.defaults.TypeSchemas[doc.Type()]; ok {
		return ref
	}
	return v.defaults.Schema
}

// ContextSources returns the context chain of doc: the explicit contexts
// when given, else the document's @context entries (the main context when
// it declares none), followed by the context of its measurement type
// unless the chain already has it. Relative references are resolved
// against the document's directory.
func (v *Validator) ContextSources(doc *document.Document, explicit []string) ([]jsonld.Source, error) {
	var sources []jsonld.Source
	if len(explicit) > 0 {
		for _, uri := range explicit {
			sources = append(sources, jsonld.URISource(uri))
		}
		return sources, nil
	}

	for _, ref := range doc.Contexts {
		if ref.IsInline() {
			sources = append(sources, jsonld.InlineSource(ref.Inline))
			continue
		}
		uri, err := v.relativeTo(doc, ref.URI)
		if err != nil {
			return nil, err
		}
		sources = append(sources, jsonld.URISource(uri))
	}
	if len(sources) == 0 && v.defaults.MainContext != "" {
		sources = append(sources, jsonld.URISource(v.defaults.MainContext))
	}

	if uri, ok := v.defaults.MeasurementContexts[doc.MeasurementType]; ok && doc.MeasurementType != "" {
		present := slices.ContainsFunc(sources, func(s jsonld.Source) bool {
			return s.URI != "" && fetch.Location(s.URI) == fetch.Location(uri)
		})
		if !present {
			sources = append(sources, jsonld.URISource(uri))
		}
	}
	return sources, nil
}

func (v *Validator) relativeTo(doc *document.Document, ref string) (string, error) {
	if isAbsoluteURI(ref) {
		return ref, nil
	}
	dir, err := filepath.Abs(doc.Dir())
	if err != nil {
		return "", fmt.Errorf("resolving context %s: %w", ref, err)
	}
	return fetch.Location(filepath.Join(dir, filepath.FromSlash(ref))), nil
}

func isAbsoluteURI(ref string) bool {
	if strings.HasPrefix(ref, fetch.FileScheme) {
		return true
	}
	_, inFS := fetch.FSPath(fetch.Location(ref))
	return !inFS
}
