// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package rap

import (
	"io/fs"
	"slices"
	"strings"
	"time"
)

// Mount is the directory under which Overlay serves the embedded bundle.
const Mount = "@rap"

// Overlay returns a filesystem serving base with the embedded bundle mounted
// at Mount. base may be nil, in which case only the bundle is served.
func Overlay(base fs.FS) fs.FS {
	return &overlay{base: base, bundle: FS()}
}

type overlay struct {
	base   fs.FS
	bundle fs.FS
}

// split reports whether name lives in the bundle, and its path there.
func (o *overlay) split(name string) (string, bool) {
	if name == Mount {
		return ".", true
	}
	rest, ok := strings.CutPrefix(name, Mount+"/")
	return rest, ok
}

func (o *overlay) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if rest, ok := o.split(name); ok {
		return o.bundle.Open(rest)
	}
	if o.base == nil {
		if name == "." {
			return o.bundle.Open(".")
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return o.base.Open(name)
}

func (o *overlay) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	if rest, ok := o.split(name); ok {
		return fs.ReadDir(o.bundle, rest)
	}
	if name != "." {
		if o.base == nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
		return fs.ReadDir(o.base, name)
	}

	var entries []fs.DirEntry
	if o.base != nil {
		var err error
		entries, err = fs.ReadDir(o.base, ".")
		if err != nil {
			return nil, err
		}
	}
	entries = append(entries, mountEntry{})
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// mountEntry is the synthetic directory entry of the bundle mount point.
type mountEntry struct{}

func (mountEntry) Name() string               { return Mount }
func (mountEntry) IsDir() bool                { return true }
func (mountEntry) Type() fs.FileMode          { return fs.ModeDir }
func (mountEntry) Info() (fs.FileInfo, error) { return mountEntry{}, nil }
func (mountEntry) Size() int64                { return 0 }
func (mountEntry) Mode() fs.FileMode          { return fs.ModeDir | 0o555 }
func (mountEntry) ModTime() time.Time         { return time.Time{} }
func (mountEntry) Sys() any                   { return nil }
