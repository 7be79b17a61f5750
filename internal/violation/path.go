// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package violation

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"
)

// Root is the path of the document root.
const Root = "$"

var simpleKey = regexp.MustCompile(`^[A-Za-z_@$][A-Za-z0-9_@$\-]*$`)

// Join appends an object key to a path. Keys that are not plain identifiers
// are written in bracket notation, e.g. participant["first name"].
func Join(parent, key string) string {
	if !simpleKey.MatchString(key) {
		return parent + "[" + strconv.Quote(key) + "]"
	}
	if parent == Root || parent == "" {
		return key
	}
	return parent + "." + key
}

// Index appends an array index to a path.
func Index(parent string, i int) string {
	if parent == "" {
		parent = Root
	}
	return parent + "[" + strconv.Itoa(i) + "]"
}

// FromPointer converts a JSON pointer (RFC 6901) into a path.
// Numeric tokens are treated as array indices.
func FromPointer(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	if ptr == "" || ptr == "/" {
		return Root
	}
	path := Root
	for _, tok := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		if i, err := strconv.Atoi(tok); err == nil && i >= 0 {
			path = Index(path, i)
			continue
		}
		path = Join(path, tok)
	}
	return path
}

// ComparePaths orders paths byte by byte, except that array indices compare
// numerically: items[2] sorts before items[10].
func ComparePaths(a, b string) int {
	for a != "" && b != "" {
		ai, arest, aok := leadingIndex(a)
		bi, brest, bok := leadingIndex(b)
		if aok && bok {
			if c := cmp.Compare(ai, bi); c != 0 {
				return c
			}
			a, b = arest, brest
			continue
		}
		if a[0] != b[0] {
			return cmp.Compare(a[0], b[0])
		}
		a, b = a[1:], b[1:]
	}
	return cmp.Compare(len(a), len(b))
}

// leadingIndex parses an index segment such as "[12]" at the start of p.
func leadingIndex(p string) (int, string, bool) {
	if len(p) < 3 || p[0] != '[' {
		return 0, p, false
	}
	end := strings.IndexByte(p, ']')
	if end < 2 {
		return 0, p, false
	}
	n := 0
	for _, c := range p[1:end] {
		if c < '0' || c > '9' {
			return 0, p, false
		}
		n = n*10 + int(c-'0')
	}
	return n, p[end+1:], true
}
