// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/evidencepub/rapval/internal/report"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of validating one file in a batch. Err is set for
// operational failures (unreadable file, schema or context errors).
type Result struct {
	Path   string
	Report *report.Report
	Err    error
}

// Valid reports whether the file validated and passed.
func (r Result) Valid() bool {
	return r.Err == nil && r.Report != nil && r.Report.Pass
}

// ValidateAll validates paths with at most jobs concurrent validations
// (GOMAXPROCS when jobs < 1). Results are in the order of paths. A failing
// file does not stop the others; only ctx cancellation does.
func (v *Validator) ValidateAll(ctx context.Context, paths []string, req Request, jobs int) ([]Result, error) {
	if jobs < 1 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := v.ValidateFile(gctx, p, req)
			results[i] = Result{Path: p, Report: r, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FindDocuments returns the *.jsonld files under dir, sorted.
func FindDocuments(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && filepath.Ext(p) == ".jsonld" {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}
