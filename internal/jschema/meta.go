// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package jschema

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	sjs "github.com/santhosh-tekuri/jsonschema/v5"
)

// compile meta-validates root and the documents it references against draft
// 2020-12 and returns the compiled root. The compiler never leaves the loaded
// document set.
func compile(root *parsedDoc, docs []*parsedDoc) (*sjs.Schema, error) {
	byURI := make(map[string][]byte, 2*len(docs))
	for _, d := range docs {
		byURI[d.base] = d.raw
		byURI[d.location] = d.raw
	}

	c := sjs.NewCompiler()
	c.Draft = sjs.Draft2020
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		if raw, ok := byURI[strings.TrimSuffix(s, "#")]; ok {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}
		return nil, fmt.Errorf("%s is outside the loaded schema set", s)
	}
	for _, d := range docs {
		if err := c.AddResource(d.base, bytes.NewReader(d.raw)); err != nil {
			return nil, err
		}
	}
	return c.Compile(root.base)
}
