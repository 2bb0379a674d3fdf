// Package funcgroup locates functional groups in parsed molecules.  A catalog
// of named templates, each a SMILES-like pattern with R attachment atoms, is
// matched against a host molecule by degree-constrained depth-first search;
// the raw matches are then resolved into an "all" view and an "exact" view of
// name → count.
package funcgroup

import (
	"fmt"

	"github.com/turtacn/funcgroup/internal/domain/molecule"
	"github.com/turtacn/funcgroup/pkg/errors"
)

// Template is one parsed catalog entry.  It is immutable and safe to share
// between goroutines: matching records bindings in a separate table.
type Template struct {
	Name    string
	Pattern string
	Graph   *molecule.Molecule

	// core lists the non-wildcard vertices in index order.
	core []int
	// coreKeys is the sorted multiset of core edge keys.
	coreKeys []molecule.EdgeKey
}

// NewTemplate parses pattern and validates it as a functional group template:
// at least one core atom, a connected core and every R bonded to exactly one
// core atom.
func NewTemplate(pattern, name string) (*Template, error) {
	if name == "" {
		return nil, errors.New(errors.CodeTemplate, "template name is empty").
			WithDetailf("pattern=%s", pattern)
	}
	g, err := molecule.ParsePattern(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeTemplate, fmt.Sprintf("template %s", name))
	}

	t := &Template{Name: name, Pattern: g.SMILES, Graph: g}
	for _, v := range g.Vertices {
		if v.IsWildcard() {
			if len(v.Edges) != 1 || g.Vertex(g.Edge(v.Edges[0]).Other(v.Index)).IsWildcard() {
				return nil, errors.New(errors.CodeTemplate, "wildcard must bond to exactly one core atom").
					WithDetailf("template=%s pattern=%s atom=%d", name, pattern, v.Index)
			}
			continue
		}
		t.core = append(t.core, v.Index)
	}
	if len(t.core) == 0 {
		return nil, errors.New(errors.CodeTemplate, "template has no core atoms").
			WithDetailf("template=%s pattern=%s", name, pattern)
	}
	for _, e := range g.Edges {
		if e.Core() {
			t.coreKeys = append(t.coreKeys, e.Key())
		}
	}
	molecule.SortEdgeKeys(t.coreKeys)

	if !t.coreConnected() {
		return nil, errors.New(errors.CodeTemplate, "template core is disconnected").
			WithDetailf("template=%s pattern=%s", name, pattern)
	}
	return t, nil
}

// Core returns the indices of the non-wildcard template vertices.
func (t *Template) Core() []int {
	out := make([]int, len(t.core))
	copy(out, t.core)
	return out
}

// CoreSize returns the number of non-wildcard template vertices.
func (t *Template) CoreSize() int {
	return len(t.core)
}

// CoreEdgeKeys returns the sorted structural keys of the core edges.
func (t *Template) CoreEdgeKeys() []molecule.EdgeKey {
	out := make([]molecule.EdgeKey, len(t.coreKeys))
	copy(out, t.coreKeys)
	return out
}

func (t *Template) String() string {
	return t.Name + " " + t.Pattern
}

func (t *Template) coreConnected() bool {
	seen := map[int]bool{t.core[0]: true}
	queue := []int{t.core[0]}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, ei := range t.Graph.Vertex(v).Edges {
			e := t.Graph.Edge(ei)
			if !e.Core() {
				continue
			}
			w := e.Other(v)
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return len(seen) == len(t.core)
}
