// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evidencepub/rapval/internal/fetch"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

const schemaAccept = "application/schema+json, application/json;q=0.9, */*;q=0.1"

var errNotLocatable = errors.New("document not found in the schema set")

// LoadOptions tune a single Load call.
type LoadOptions struct {
	// Refresh discards any cached copy of the schema and its dependencies.
	Refresh bool
	// Timeout bounds the call; zero means no timeout beyond ctx.
	Timeout time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient enables loading of http(s) schemas that are not found in the
// loader filesystem.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithLogger sets the logger for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetaValidation toggles compiling loaded schemas against the draft
// 2020-12 meta-schema. It is on by default.
func WithMetaValidation(enabled bool) Option {
	return func(l *Loader) { l.meta = enabled }
}

// parsedDoc is one schema file, parsed but not linked.
type parsedDoc struct {
	location string
	base     string
	source   string
	draft    string
	root     *Schema
	raw      []byte
}

// Loader loads schemas from a filesystem and caches them by resolved URI.
// Cache population is serialized per URI: the first caller loads, concurrent
// callers for the same URI wait for that result.
type Loader struct {
	fsys   fs.FS
	client *http.Client
	logger *slog.Logger
	meta   bool

	mu     sync.RWMutex
	parsed map[string]*parsedDoc
	linked map[string]*SchemaDocument
	group  singleflight.Group

	idOnce sync.Once
	ids    map[string]string

	parses atomic.Int64
}

// NewLoader creates a Loader that reads from the given filesystem.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{
		fsys:   fsys,
		logger: slog.New(slog.DiscardHandler),
		meta:   true,
		parsed: make(map[string]*parsedDoc),
		linked: make(map[string]*SchemaDocument),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the SchemaDocument for ref (a path inside the loader
// filesystem or an absolute URI), loading and linking it on first use.
func (l *Loader) Load(ctx context.Context, ref string, opts LoadOptions) (*SchemaDocument, error) {
	uri := fetch.Location(ref)
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, &SchemaLoadError{URI: uri, Err: err}
	}

	if opts.Refresh {
		l.invalidate(uri)
	} else if doc := l.cachedDocument(uri); doc != nil {
		return doc, nil
	}

	flight := context.WithoutCancel(ctx)
	ch := l.group.DoChan("link:"+uri, func() (any, error) {
		return l.link(flight, uri)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*SchemaDocument), nil
	case <-ctx.Done():
		return nil, &SchemaLoadError{URI: uri, Err: ctx.Err()}
	}
}

func (l *Loader) cachedDocument(uri string) *SchemaDocument {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.linked[uri]
}

func (l *Loader) invalidate(uri string) {
	l.mu.Lock()
	drop := map[string]bool{uri: true}
	if doc, ok := l.linked[uri]; ok {
		drop[doc.ID] = true
		for _, dep := range doc.deps {
			drop[dep] = true
		}
	}
	stale := make(map[*parsedDoc]bool)
	for key, d := range l.parsed {
		if drop[key] {
			stale[d] = true
		}
	}
	for key, d := range l.parsed {
		if stale[d] {
			delete(l.parsed, key)
		}
	}
	for key, doc := range l.linked {
		if drop[key] || drop[doc.ID] {
			delete(l.linked, key)
		}
	}
	l.mu.Unlock()
	l.group.Forget("link:" + uri)
}

// link parses uri and every document it references, then resolves all refs.
func (l *Loader) link(ctx context.Context, uri string) (*SchemaDocument, error) {
	root, err := l.parse(ctx, uri)
	if err != nil {
		return nil, err
	}

	byURI := map[string]*parsedDoc{root.base: root, root.location: root}
	order := []*parsedDoc{root}
	refs := make(map[*Schema]*Schema)

	for i := 0; i < len(order); i++ {
		d := order[i]
		for s := range Traverse(d.root, nil) {
			if s.Ref == "" {
				continue
			}
			target, owner, err := l.resolveRef(ctx, d, s.Ref, byURI)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(order, owner) {
				order = append(order, owner)
			}
			byURI[owner.base] = owner
			byURI[owner.location] = owner
			refs[s] = target
		}
	}

	deps := make([]string, 0, len(order)-1)
	for _, d := range order[1:] {
		deps = append(deps, d.base)
	}
	slices.Sort(deps)

	defs := make(map[string]*Schema, len(root.root.Defs)+len(root.root.Definitions))
	for name, s := range root.root.Definitions {
		defs[name] = s
	}
	for name, s := range root.root.Defs {
		defs[name] = s
	}

	doc := &SchemaDocument{
		ID:     root.base,
		Source: root.source,
		Draft:  root.draft,
		Root:   root.root,
		Defs:   defs,
		refs:   refs,
		deps:   deps,
	}
	if l.meta {
		compiled, err := compile(root, order)
		if err != nil {
			return nil, &SchemaLoadError{URI: root.base, Err: err}
		}
		doc.compiled = compiled
	}

	l.mu.Lock()
	l.linked[uri] = doc
	l.linked[doc.ID] = doc
	l.mu.Unlock()

	l.logger.Debug("schema loaded", "uri", doc.ID, "source", doc.Source, "defs", len(defs), "dependencies", len(deps))
	return doc, nil
}

// resolveRef resolves ref as written in document d. It returns the target
// schema and the document that owns it.
func (l *Loader) resolveRef(ctx context.Context, d *parsedDoc, ref string, byURI map[string]*parsedDoc) (*Schema, *parsedDoc, error) {
	refErr := func(err error) error {
		return &SchemaRefError{URI: d.base, Ref: ref, Err: err}
	}
	base, err := url.Parse(d.base)
	if err != nil {
		return nil, nil, refErr(err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return nil, nil, refErr(err)
	}
	target := base.ResolveReference(r)
	frag := target.Fragment
	target.Fragment = ""
	target.RawFragment = ""
	docURI := target.String()

	owner := byURI[docURI]
	if owner == nil {
		owner, err = l.parse(ctx, docURI)
		if err != nil {
			if errors.Is(err, errNotLocatable) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fetch.ErrRemoteDisabled) {
				return nil, nil, refErr(err)
			}
			return nil, nil, err
		}
	}

	var node *Schema
	switch {
	case frag == "":
		node = owner.root
	case strings.HasPrefix(frag, "/"):
		node, err = lookupPointer(owner.root, frag)
		if err != nil {
			return nil, nil, refErr(err)
		}
	default:
		node = lookupAnchor(owner.root, frag)
		if node == nil {
			return nil, nil, refErr(fmt.Errorf("anchor %q not found", frag))
		}
	}
	return node, owner, nil
}

// parse reads and decodes one document, cached by URI.
func (l *Loader) parse(ctx context.Context, uri string) (*parsedDoc, error) {
	l.mu.RLock()
	d := l.parsed[uri]
	l.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	v, err, _ := l.group.Do("parse:"+uri, func() (any, error) {
		data, source, err := l.read(ctx, uri)
		if err != nil {
			return nil, &SchemaLoadError{URI: uri, Err: err}
		}
		l.parses.Add(1)
		js, err := toJSON(data, FormatFromPath(source))
		if err != nil {
			return nil, &SchemaLoadError{URI: uri, Err: fmt.Errorf("malformed schema: %w", err)}
		}
		root, err := parseSchema(js)
		if err != nil {
			return nil, &SchemaLoadError{URI: uri, Err: fmt.Errorf("malformed schema: %w", err)}
		}
		if !SupportedDraft(root.Schema) {
			return nil, &SchemaLoadError{URI: uri, Err: fmt.Errorf("%w: %s", ErrUnsupportedDraft, root.Schema)}
		}

		location := uri
		if p, ok := strings.CutPrefix(source, "fs:"); ok {
			location = fetch.FileScheme + p
		}
		doc := &parsedDoc{
			location: location,
			base:     baseURI(location, root.ID),
			source:   strings.TrimPrefix(source, "fs:"),
			draft:    Draft2020,
			root:     root,
			raw:      js,
		}
		if root.Schema != "" {
			doc.draft = root.Schema
		}

		l.mu.Lock()
		l.parsed[uri] = doc
		l.parsed[doc.location] = doc
		l.parsed[doc.base] = doc
		l.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*parsedDoc), nil
}

// read returns the bytes for uri and a source label ("fs:<path>" or the URL).
func (l *Loader) read(ctx context.Context, uri string) ([]byte, string, error) {
	if p, ok := fetch.FSPath(uri); ok {
		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return nil, "", err
		}
		return data, "fs:" + p, nil
	}
	if p, ok := l.lookupID(uri); ok {
		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return nil, "", err
		}
		return data, "fs:" + p, nil
	}
	if fetch.IsRemote(uri) {
		data, err := fetch.Get(ctx, l.client, uri, schemaAccept)
		if err != nil {
			return nil, "", err
		}
		return data, uri, nil
	}
	return nil, "", fmt.Errorf("%w: %s", errNotLocatable, uri)
}

// lookupID maps a $id to a file in the loader filesystem. The filesystem is
// indexed once, on first use.
func (l *Loader) lookupID(uri string) (string, bool) {
	l.idOnce.Do(l.indexIDs)
	p, ok := l.ids[strings.TrimSuffix(uri, "#")]
	return p, ok
}

func (l *Loader) indexIDs() {
	l.ids = make(map[string]string)
	if l.fsys == nil {
		return
	}
	_ = fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		switch path.Ext(p) {
		case ".json", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return nil
		}
		if id := peekID(data, FormatFromPath(p)); id != "" {
			l.ids[strings.TrimSuffix(id, "#")] = p
		}
		return nil
	})
	l.logger.Debug("schema ids indexed", "count", len(l.ids))
}

func peekID(data []byte, format Format) string {
	var head struct {
		ID string `json:"$id" yaml:"$id"`
	}
	if format == YAML {
		if err := yaml.Unmarshal(data, &head); err != nil {
			return ""
		}
		return head.ID
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ""
	}
	return head.ID
}

// baseURI returns the URI relative refs resolve against: $id when present,
// resolved against the location, else the location.
func baseURI(location, id string) string {
	if id == "" {
		return location
	}
	idURL, err := url.Parse(id)
	if err != nil {
		return location
	}
	if !idURL.IsAbs() {
		loc, err := url.Parse(location)
		if err != nil {
			return location
		}
		idURL = loc.ResolveReference(idURL)
	}
	idURL.Fragment = ""
	idURL.RawFragment = ""
	return idURL.String()
}

// parseCount reports how many documents were read and decoded.
func (l *Loader) parseCount() int64 {
	return l.parses.Load()
}
