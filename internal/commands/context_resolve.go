// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/session"
	"github.com/spf13/cobra"
)

type contextResolveOptions struct {
	output string // output format: text, json, yaml
}

func newContextResolveCmd() *cobra.Command {
	opts := &contextResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve SOURCE...",
		Short: "Resolve a JSON-LD context chain",
		Long: `Resolve one or more JSON-LD contexts, in order, into a single term
mapping. Imports are followed and later definitions override earlier
ones; every override to a different IRI is listed as a collision.`,
		Example: `  # Resolve the bundled RAP context
  rapval context resolve https://rap-spec.evidencepub.io/v1/context

  # Resolve a local chain as JSON
  rapval context resolve ctx/base.jsonld ctx/extra.jsonld -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runContextResolve(cmd, s, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format (text, json, yaml)")

	return cmd
}

func runContextResolve(cmd *cobra.Command, s *session.Session, args []string, opts *contextResolveOptions) error {
	if err := checkOutput(opts.output); err != nil {
		return err
	}

	sources := make([]jsonld.Source, 0, len(args))
	for _, arg := range args {
		sources = append(sources, jsonld.URISource(s.ContextRef(arg)))
	}
	mapping, err := s.Resolver.Resolve(cmd.Context(), sources)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.output != outputText {
		return writeStructured(w, mapping, opts.output)
	}
	printMappingText(w, mapping)
	return nil
}

func printMappingText(w io.Writer, m *jsonld.ContextMapping) {
	fmt.Fprintln(w, "Sources:")
	for _, src := range m.Sources {
		fmt.Fprintf(w, "  - %s\n", src)
	}
	if m.Vocab != "" {
		fmt.Fprintf(w, "Vocab:       %s\n", m.Vocab)
	}
	if m.Base != "" {
		fmt.Fprintf(w, "Base:        %s\n", m.Base)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Terms (%d):\n", len(m.Terms))
	for _, name := range m.TermNames() {
		t := m.Terms[name]
		iri := t.IRI
		if iri == "" {
			iri = "(unmapped)"
		}
		var attrs []string
		if t.Type != "" {
			attrs = append(attrs, "type: "+t.Type)
		}
		if t.Container != "" {
			attrs = append(attrs, "container: "+t.Container)
		}
		if len(attrs) > 0 {
			iri += " (" + strings.Join(attrs, ", ") + ")"
		}
		fmt.Fprintf(w, "  %s -> %s\n", name, iri)
	}

	if len(m.Collisions) == 0 {
		fmt.Fprintln(w, "Collisions:  (none)")
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Collisions:")
	for _, c := range m.Collisions {
		fmt.Fprintf(w, "  - %s: %s -> %s\n", c.Term, c.Previous, c.IRI)
	}
}
