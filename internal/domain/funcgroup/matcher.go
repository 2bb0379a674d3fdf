package funcgroup

import (
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/funcgroup/internal/domain/molecule"
	"github.com/turtacn/funcgroup/pkg/errors"
)

// Ring-qualification prefixes for group names.
const (
	PrefixAromatic = "Aromatic"
	PrefixCyclic   = "Cyclic"
)

// DerivedTemplate is the Template index of groups derived structurally
// rather than matched from the catalog.
const DerivedTemplate = -1

// Match is one located occurrence of a functional group in a host molecule.
type Match struct {
	// Name is the ring-qualified name, e.g. "AromaticKetone".
	Name     string
	BaseName string
	// Template is the catalog index, or DerivedTemplate.
	Template int
	// Bindings maps core template vertices to host atoms.
	Bindings map[int]int
	// Atoms is the sorted set of host atoms bound to core vertices.
	Atoms []int
	// EdgeKeys is the sorted multiset of core edge keys.
	EdgeKeys []molecule.EdgeKey
	// Exact is set when every core vertex's explicit and implicit degree
	// equals that of its host atom.
	Exact bool

	AromaticAtoms int
	CyclicAtoms   int
}

// atomKey is a canonical string form of Atoms, used as a map key.
func (m Match) atomKey() string {
	var sb strings.Builder
	for i, a := range m.Atoms {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(a))
	}
	return sb.String()
}

func (m Match) edgeKey() string {
	parts := make([]string, len(m.EdgeKeys))
	for i, k := range m.EdgeKeys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

// ringPrefix qualifies a group name from the ring classification of its
// atoms.  Ties go to aromatic.
func ringPrefix(aromatic, cyclic int) string {
	switch {
	case aromatic > 0 && aromatic >= cyclic:
		return PrefixAromatic
	case cyclic > 0:
		return PrefixCyclic
	default:
		return ""
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Matching engine
// ─────────────────────────────────────────────────────────────────────────────

type matcher struct {
	host       *molecule.Molecule
	maxDepth   int
	exhaustive bool
}

// matchTemplate returns every embedding found for t, seeding from each core
// template vertex against each host atom with the same symbol and total
// degree.  Duplicates are left to the resolution pipeline.
func (mt *matcher) matchTemplate(idx int, t *Template) ([]Match, error) {
	var out []Match
	for _, tv := range t.core {
		tvx := t.Graph.Vertex(tv)
		for _, hvx := range mt.host.Vertices {
			if hvx.Symbol != tvx.Symbol || hvx.TotalDegree != tvx.TotalDegree {
				continue
			}
			if mt.exhaustive {
				all, err := mt.embedAll(t, tv, hvx.Index)
				if err != nil {
					return nil, err
				}
				for _, b := range all {
					out = append(out, mt.newMatch(idx, t, b))
				}
				continue
			}
			b, ok, err := mt.embedGreedy(t, tv, hvx.Index)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, mt.newMatch(idx, t, b))
			}
		}
	}
	return out, nil
}

func (mt *matcher) depthError(t *Template) error {
	return errors.New(errors.CodeDepthExceeded, "match recursion depth exceeded").
		WithDetailf("smiles=%s template=%s max_depth=%d", mt.host.SMILES, t.Name, mt.maxDepth)
}

// greedySearch takes the first structurally equal, degree-compatible host
// edge for every template edge.  A failure deeper in the recursion abandons
// the whole attempt instead of retrying another edge at this level.
type greedySearch struct {
	t        *Template
	host     *molecule.Molecule
	maxDepth int

	bind  map[int]int
	taken map[int]bool
	usedT map[int]bool
	usedH map[int]bool
}

func (mt *matcher) embedGreedy(t *Template, tv, hv int) (map[int]int, bool, error) {
	s := &greedySearch{
		t:        t,
		host:     mt.host,
		maxDepth: mt.maxDepth,
		bind:     make(map[int]int, len(t.core)),
		taken:    make(map[int]bool, len(t.core)),
		usedT:    make(map[int]bool),
		usedH:    make(map[int]bool),
	}
	ok, err := s.extend(tv, hv, 1)
	if err != nil {
		if errors.IsCode(err, errors.CodeDepthExceeded) {
			return nil, false, mt.depthError(t)
		}
		return nil, false, err
	}
	if !ok || len(s.bind) != len(t.core) {
		return nil, false, nil
	}
	return s.bind, true, nil
}

func (s *greedySearch) extend(tv, hv, depth int) (bool, error) {
	if depth > s.maxDepth {
		return false, errors.New(errors.CodeDepthExceeded, "match recursion depth exceeded")
	}
	tvx, hvx := s.t.Graph.Vertex(tv), s.host.Vertex(hv)
	if tvx.ImplicitDegree > hvx.ImplicitDegree {
		return false, nil
	}
	s.bind[tv] = hv
	s.taken[hv] = true

	for _, tei := range tvx.Edges {
		te := s.t.Graph.Edge(tei)
		if !te.Core() || s.usedT[tei] {
			continue
		}
		s.usedT[tei] = true
		tf := te.Other(tv)
		tfTotal := s.t.Graph.Vertex(tf).TotalDegree

		matched := false
		for _, hei := range hvx.Edges {
			if s.usedH[hei] {
				continue
			}
			he := s.host.Edge(hei)
			if !te.StructurallyEqual(he) {
				continue
			}
			hf := he.Other(hv)
			if s.host.Vertex(hf).TotalDegree != tfTotal {
				continue
			}
			if bound, ok := s.bind[tf]; ok {
				if bound != hf {
					continue
				}
				s.usedH[hei] = true
				matched = true
				break
			}
			if s.taken[hf] {
				continue
			}
			s.usedH[hei] = true
			ok, err := s.extend(tf, hf, depth+1)
			if err != nil || !ok {
				return false, err
			}
			matched = true
			break
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// step is one template edge in traversal order; from is bound before the
// step is taken.
type step struct {
	edge, from, to int
}

// edgeChain orders the core edges of t depth-first from anchor so that each
// edge starts at an already-reached vertex.
func (t *Template) edgeChain(anchor int) []step {
	var chain []step
	seenV := map[int]bool{anchor: true}
	seenE := make(map[int]bool)
	var walk func(v int)
	walk = func(v int) {
		for _, ei := range t.Graph.Vertex(v).Edges {
			e := t.Graph.Edge(ei)
			if !e.Core() || seenE[ei] {
				continue
			}
			seenE[ei] = true
			w := e.Other(v)
			chain = append(chain, step{edge: ei, from: v, to: w})
			if !seenV[w] {
				seenV[w] = true
				walk(w)
			}
		}
	}
	walk(anchor)
	return chain
}

type partial struct {
	bind      []int
	hostEdges []int
	k         int
}

func (p partial) usesEdge(e int) bool {
	for _, x := range p.hostEdges {
		if x == e {
			return true
		}
	}
	return false
}

func (p partial) binds(h int) bool {
	for _, x := range p.bind {
		if x == h {
			return true
		}
	}
	return false
}

// embedAll enumerates every embedding of t with tv bound to hv, trying all
// compatible host edges at each step.  It keeps an explicit stack of partial
// embeddings over the template's edge chain.
func (mt *matcher) embedAll(t *Template, tv, hv int) ([]map[int]int, error) {
	if t.Graph.Vertex(tv).ImplicitDegree > mt.host.Vertex(hv).ImplicitDegree {
		return nil, nil
	}
	chain := t.edgeChain(tv)
	if len(chain)+1 > mt.maxDepth {
		return nil, mt.depthError(t)
	}

	start := partial{bind: make([]int, t.Graph.Order())}
	for i := range start.bind {
		start.bind[i] = -1
	}
	start.bind[tv] = hv

	var out []map[int]int
	stack := []partial{start}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.k == len(chain) {
			b := make(map[int]int, len(t.core))
			for _, c := range t.core {
				b[c] = p.bind[c]
			}
			if len(b) == len(t.core) {
				out = append(out, b)
			}
			continue
		}

		st := chain[p.k]
		te := t.Graph.Edge(st.edge)
		from := p.bind[st.from]
		toTotal := t.Graph.Vertex(st.to).TotalDegree
		toImplicit := t.Graph.Vertex(st.to).ImplicitDegree

		hostEdges := mt.host.Vertex(from).Edges
		// Push in reverse so the first candidate is explored first.
		for i := len(hostEdges) - 1; i >= 0; i-- {
			hei := hostEdges[i]
			if p.usesEdge(hei) {
				continue
			}
			he := mt.host.Edge(hei)
			if !te.StructurallyEqual(he) {
				continue
			}
			hf := he.Other(from)
			hfx := mt.host.Vertex(hf)
			if hfx.TotalDegree != toTotal {
				continue
			}
			if bound := p.bind[st.to]; bound >= 0 {
				if bound != hf {
					continue
				}
			} else if p.binds(hf) || toImplicit > hfx.ImplicitDegree {
				continue
			}
			stack = append(stack, p.advance(st.to, hf, hei))
		}
	}
	return out, nil
}

func (p partial) advance(tv, hv, hei int) partial {
	next := partial{
		bind:      make([]int, len(p.bind)),
		hostEdges: make([]int, len(p.hostEdges), len(p.hostEdges)+1),
		k:         p.k + 1,
	}
	copy(next.bind, p.bind)
	copy(next.hostEdges, p.hostEdges)
	next.bind[tv] = hv
	next.hostEdges = append(next.hostEdges, hei)
	return next
}

func (mt *matcher) newMatch(idx int, t *Template, bind map[int]int) Match {
	m := Match{
		BaseName: t.Name,
		Template: idx,
		Bindings: bind,
		Atoms:    make([]int, 0, len(bind)),
		EdgeKeys: t.CoreEdgeKeys(),
		Exact:    true,
	}
	for tv, hv := range bind {
		m.Atoms = append(m.Atoms, hv)
		tvx, hvx := t.Graph.Vertex(tv), mt.host.Vertex(hv)
		if tvx.ExplicitDegree != hvx.ExplicitDegree || tvx.ImplicitDegree != hvx.ImplicitDegree {
			m.Exact = false
		}
		switch hvx.RingType {
		case molecule.Aromatic:
			m.AromaticAtoms++
		case molecule.NonAromatic:
			m.CyclicAtoms++
		}
	}
	sort.Ints(m.Atoms)
	m.Name = ringPrefix(m.AromaticAtoms, m.CyclicAtoms) + t.Name
	return m
}
