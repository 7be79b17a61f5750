// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jsonld

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/evidencepub/rapval/internal/fetch"
	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

const contextAccept = "application/ld+json, application/json;q=0.9, */*;q=0.1"

// Source is one entry of a context chain: a URI or an inline context value.
type Source struct {
	URI    string
	Inline any
}

// URISource returns a Source for a context URI or path.
func URISource(uri string) Source { return Source{URI: uri} }

// InlineSource returns a Source for an inline @context value (an object or
// an array).
func InlineSource(v any) Source { return Source{Inline: v} }

func (s Source) label(i int) string {
	if s.URI != "" {
		return normalizeURI(s.URI)
	}
	return "inline[" + strconv.Itoa(i) + "]"
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases maps context URIs to paths inside the resolver filesystem.
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		for uri, p := range aliases {
			r.aliases[normalizeURI(uri)] = p
		}
	}
}

// WithHTTPClient enables fetching http(s) contexts that have no alias.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithLogger sets the logger for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver loads context documents and merges context chains. Loaded
// documents and resolved chains of URIs are cached.
type Resolver struct {
	fsys    fs.FS
	client  *http.Client
	logger  *slog.Logger
	aliases map[string]string

	mu       sync.RWMutex
	docs     map[string]any
	mappings map[string]*ContextMapping
	group    singleflight.Group
}

// NewResolver creates a Resolver reading local contexts from fsys.
func NewResolver(fsys fs.FS, opts ...Option) *Resolver {
	r := &Resolver{
		fsys:     fsys,
		logger:   slog.New(slog.DiscardHandler),
		aliases:  make(map[string]string),
		docs:     make(map[string]any),
		mappings: make(map[string]*ContextMapping),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve merges the sources in order into one ContextMapping.
func (r *Resolver) Resolve(ctx context.Context, sources []Source) (*ContextMapping, error) {
	return r.Extend(ctx, nil, sources)
}

// Extend resolves sources on top of an already resolved mapping. Terms of
// base are available as prefixes while the new sources are processed. A
// null entry in a source clears every term, @vocab and @base defined before
// it, including those of base and of earlier sources; collisions already
// recorded and the list of sources are kept.
func (r *Resolver) Extend(ctx context.Context, base *ContextMapping, sources []Source) (*ContextMapping, error) {
	key, cacheable := chainKey(sources)
	cacheable = cacheable && base == nil
	if cacheable {
		r.mu.RLock()
		m := r.mappings[key]
		r.mu.RUnlock()
		if m != nil {
			return m, nil
		}
	}

	out := base.clone()
	offset := len(out.Sources)
	for i, src := range sources {
		p := &processor{r: r, ctx: ctx, prior: out, out: NewContextMapping()}
		label := src.label(offset + i)
		var err error
		if src.URI != "" {
			err = p.value(src.URI, "", label, nil)
		} else {
			err = p.value(src.Inline, "", label, nil)
		}
		if err != nil {
			return nil, err
		}
		if p.reset {
			out = &ContextMapping{Terms: make(map[string]Term), Collisions: out.Collisions, Sources: out.Sources}
		}
		p.out.Sources = append(p.out.Sources, label)
		out = Merge(out, p.out)
	}

	if cacheable {
		r.mu.Lock()
		r.mappings[key] = out
		r.mu.Unlock()
	}
	r.logger.Debug("context resolved", "sources", len(sources), "terms", len(out.Terms), "collisions", len(out.Collisions))
	return out, nil
}

func chainKey(sources []Source) (string, bool) {
	uris := make([]string, len(sources))
	for i, s := range sources {
		if s.URI == "" {
			return "", false
		}
		uris[i] = normalizeURI(s.URI)
	}
	return strings.Join(uris, "\n"), len(uris) > 0
}

// Load returns the @context value of the context document at uri.
func (r *Resolver) Load(ctx context.Context, uri string) (any, error) {
	uri = normalizeURI(uri)
	r.mu.RLock()
	v, ok := r.docs[uri]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &ContextLoadError{URI: uri, Err: err}
	}

	flight := context.WithoutCancel(ctx)
	ch := r.group.DoChan(uri, func() (any, error) {
		data, err := r.read(flight, uri)
		if err != nil {
			return nil, &ContextLoadError{URI: uri, Err: err}
		}
		var doc map[string]any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, &ContextLoadError{URI: uri, Err: fmt.Errorf("malformed context document: %w", err)}
		}
		value, ok := doc[KeywordContext]
		if !ok {
			return nil, &ContextLoadError{URI: uri, Err: errors.New("document has no @context")}
		}
		r.mu.Lock()
		r.docs[uri] = value
		r.mu.Unlock()
		r.logger.Debug("context loaded", "uri", uri)
		return value, nil
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, &ContextLoadError{URI: uri, Err: ctx.Err()}
	}
}

func (r *Resolver) read(ctx context.Context, uri string) ([]byte, error) {
	if p, ok := r.aliases[uri]; ok {
		return fs.ReadFile(r.fsys, p)
	}
	if p, ok := fetch.FSPath(uri); ok {
		return fs.ReadFile(r.fsys, p)
	}
	if fetch.IsRemote(uri) {
		return fetch.Get(ctx, r.client, uri, contextAccept)
	}
	return nil, fmt.Errorf("cannot locate context %s", uri)
}

// normalizeURI turns paths into file:/// locations and drops empty
// fragments.
func normalizeURI(uri string) string {
	return fetch.Location(uri)
}

// resolveURI resolves ref against the URI of the context holding it.
func resolveURI(base, ref string) (string, error) {
	if base == "" {
		return normalizeURI(ref), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return normalizeURI(b.ResolveReference(r).String()), nil
}
