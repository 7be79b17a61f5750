// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package semantic

import (
	"fmt"
	"slices"
	"strings"

	"github.com/evidencepub/rapval/internal/document"
	"github.com/evidencepub/rapval/internal/jsonld"
	"github.com/evidencepub/rapval/internal/violation"
)

const (
	provenanceKey    = "provenance"
	stepsKey         = "processingSteps"
	stepOrderKey     = "stepOrder"
	wasInformedByKey = "wasInformedBy"
)

// step is one node of the provenance graph.
type step struct {
	id       string
	order    int
	hasOrder bool
	path     string
}

func (s step) label() string {
	switch {
	case s.id != "":
		return s.id
	case s.hasOrder:
		return fmt.Sprintf("step %d", s.order)
	}
	return s.path
}

// edge is a wasInformedBy reference from one step to an earlier one.
type edge struct {
	to   int
	path string
}

// graph holds the steps in document order. Edges are addressed by step
// index.
type graph struct {
	steps []step
	edges [][]edge
	byID  map[string]int
	order map[int]int
}

// checkProvenance validates provenance.processingSteps. Steps are
// identified by @id or stepOrder and reference prior steps through
// wasInformedBy.
func checkProvenance(root map[string]any) []violation.Violation {
	prov, ok := root[provenanceKey].(map[string]any)
	if !ok {
		return nil
	}
	list, ok := prov[stepsKey].([]any)
	if !ok {
		return nil
	}
	base := violation.Join(violation.Join(violation.Root, provenanceKey), stepsKey)

	g, out := buildGraph(list, base)
	cycles := g.cycles()
	for _, cycle := range cycles {
		labels := make([]string, 0, len(cycle)+1)
		for _, i := range cycle {
			labels = append(labels, g.steps[i].label())
		}
		labels = append(labels, g.steps[cycle[0]].label())
		out = append(out, violation.New(violation.Semantic, violation.Error,
			g.steps[slices.Min(cycle)].path, violation.RuleProvenanceCycle,
			"provenance steps form a cycle: %s", strings.Join(labels, " -> ")))
	}
	if len(cycles) == 0 {
		out = append(out, g.checkOrder()...)
	}
	return out
}

func buildGraph(list []any, base string) (*graph, []violation.Violation) {
	g := &graph{byID: make(map[string]int), order: make(map[int]int)}
	var out []violation.Violation
	var objs []map[string]any

	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		s := step{path: violation.Index(base, i)}
		idx := len(g.steps)
		if id, ok := obj[jsonld.KeywordID].(string); ok && id != "" {
			s.id = id
			if prev, dup := g.byID[id]; dup {
				out = append(out, duplicate(violation.Join(s.path, jsonld.KeywordID), "@id "+id, g.steps[prev]))
			} else {
				g.byID[id] = idx
			}
		}
		if n, ok := stepOrder(obj[stepOrderKey]); ok {
			s.order, s.hasOrder = n, true
			if prev, dup := g.order[n]; dup {
				out = append(out, duplicate(violation.Join(s.path, stepOrderKey), fmt.Sprintf("stepOrder %d", n), g.steps[prev]))
			} else {
				g.order[n] = idx
			}
		}
		g.steps = append(g.steps, s)
		objs = append(objs, obj)
	}

	g.edges = make([][]edge, len(g.steps))
	for i, obj := range objs {
		refs, ok := obj[wasInformedByKey]
		if !ok {
			continue
		}
		refPath := violation.Join(g.steps[i].path, wasInformedByKey)
		add := func(ref any, path string) {
			to, ok := g.lookup(ref)
			if !ok {
				out = append(out, violation.New(violation.Semantic, violation.Error, path,
					violation.RuleProvenanceDangling, "step %s references unknown step %s",
					g.steps[i].label(), renderRef(ref)))
				return
			}
			if !slices.ContainsFunc(g.edges[i], func(e edge) bool { return e.to == to }) {
				g.edges[i] = append(g.edges[i], edge{to: to, path: path})
			}
		}
		if arr, ok := refs.([]any); ok {
			for j, ref := range arr {
				add(ref, violation.Index(refPath, j))
			}
			continue
		}
		add(refs, refPath)
	}
	return g, out
}

func duplicate(path, what string, first step) violation.Violation {
	return violation.New(violation.Semantic, violation.Error, path, violation.RuleProvenanceDuplicateStep,
		"%s is already used by %s", what, first.path)
}

// lookup finds the step a reference points at: strings match @id, integers
// match stepOrder.
func (g *graph) lookup(ref any) (int, bool) {
	if s, ok := ref.(string); ok {
		i, ok := g.byID[s]
		return i, ok
	}
	if n, ok := stepOrder(ref); ok {
		i, ok := g.order[n]
		return i, ok
	}
	return 0, false
}

func stepOrder(v any) (int, bool) {
	if v == nil || document.KindOf(v) != "integer" {
		return 0, false
	}
	f, ok := document.Float(v)
	return int(f), ok
}

func renderRef(ref any) string {
	if s, ok := ref.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if n, ok := document.Float(ref); ok {
		return fmt.Sprint(n)
	}
	return fmt.Sprint(ref)
}

const (
	unvisited = iota
	inProgress
	done
)

// cycles runs a depth-first search in step order and returns each distinct
// cycle once, as step indices in traversal order. Cycles with the same
// members are reported once.
func (g *graph) cycles() [][]int {
	state := make([]int, len(g.steps))
	var stack []int
	var found [][]int
	seen := make(map[string]struct{})

	var visit func(i int)
	visit = func(i int) {
		state[i] = inProgress
		stack = append(stack, i)
		for _, e := range g.edges[i] {
			switch state[e.to] {
			case unvisited:
				visit(e.to)
			case inProgress:
				start := slices.Index(stack, e.to)
				cycle := slices.Clone(stack[start:])
				key := memberKey(cycle)
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					found = append(found, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = done
	}

	for i := range g.steps {
		if state[i] == unvisited {
			visit(i)
		}
	}
	return found
}

func memberKey(cycle []int) string {
	members := slices.Sorted(slices.Values(cycle))
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprint(m)
	}
	return strings.Join(parts, ",")
}

// checkOrder reports references to steps whose stepOrder is not lower than
// the referencing step's.
func (g *graph) checkOrder() []violation.Violation {
	var out []violation.Violation
	for i, edges := range g.edges {
		from := g.steps[i]
		for _, e := range edges {
			to := g.steps[e.to]
			if !from.hasOrder || !to.hasOrder || to.order < from.order {
				continue
			}
			out = append(out, violation.New(violation.Semantic, violation.Warning, e.path,
				violation.RuleProvenanceOrder, "step %s (stepOrder %d) is informed by %s with stepOrder %d",
				from.label(), from.order, to.label(), to.order))
		}
	}
	return out
}
