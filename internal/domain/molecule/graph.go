package molecule

import (
	"sort"
)

// RingType is the ring classification of a vertex.
type RingType int

const (
	NonCyclic RingType = iota
	NonAromatic
	Aromatic
)

func (r RingType) String() string {
	switch r {
	case Aromatic:
		return "aromatic"
	case NonAromatic:
		return "non-aromatic"
	default:
		return "non-cyclic"
	}
}

// Vertex is one atom.
type Vertex struct {
	// Index is the discovery order of the atom, 0-based.  It is the stable
	// graph key.
	Index int
	// Symbol is the upper-case internal code plus any charge suffix, e.g.
	// "C", "N+", "L" for chlorine or "R" for a wildcard.
	Symbol string
	Code   byte
	Charge int
	// Aromatic is set when the atom was written lower-case.
	Aromatic  bool
	Bracketed bool
	RingType  RingType

	ExplicitDegree int
	ImplicitDegree int
	TotalDegree    int
	// Valence is the number of valence electrons the atom must supply.
	Valence int

	// Edges holds the indices of incident edges in discovery order.
	Edges []int
}

// IsWildcard reports whether v is a template attachment atom.
func (v *Vertex) IsWildcard() bool {
	return v.Code == CodeWildcard
}

// Element returns the printable element symbol.
func (v *Vertex) Element() string {
	return ElementSymbol(v.Code)
}

// Edge is one bond between two vertices.
type Edge struct {
	Index      int
	From, To   int
	FromSymbol string
	ToSymbol   string
	Bond       BondType
}

// Core reports whether neither endpoint is a wildcard.
func (e *Edge) Core() bool {
	return e.FromSymbol != WildcardSymbol && e.ToSymbol != WildcardSymbol
}

// Other returns the endpoint of e opposite to v.
func (e *Edge) Other(v int) int {
	if e.From == v {
		return e.To
	}
	return e.From
}

// SymbolAt returns the symbol of the endpoint v.
func (e *Edge) SymbolAt(v int) string {
	if e.From == v {
		return e.FromSymbol
	}
	return e.ToSymbol
}

// EdgeKey is the structural identity of an edge: bond order plus the
// unordered pair of endpoint symbols.
type EdgeKey struct {
	A, B string
	Bond BondType
}

// Key returns the structural key of e.
func (e *Edge) Key() EdgeKey {
	a, b := e.FromSymbol, e.ToSymbol
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b, Bond: e.Bond}
}

// StructurallyEqual reports whether e and o have the same bond order and the
// same unordered pair of endpoint symbols.  Indices are ignored.
func (e *Edge) StructurallyEqual(o *Edge) bool {
	return e.Key() == o.Key()
}

func (k EdgeKey) String() string {
	sym := k.Bond.Symbol()
	if sym == "" {
		sym = "-"
	}
	return k.A + sym + k.B
}

// Ring is one ring-closure pair and the atoms classified into it.
type Ring struct {
	Digit    byte
	Open     int
	Close    int
	Members  []int
	Aromatic bool
}

// Molecule is a parsed SMILES structure.  It is immutable after Parse
// returns; matching never writes to it.
type Molecule struct {
	SMILES   string
	Vertices []*Vertex
	Edges    []*Edge
	Rings    []Ring

	// RingMembers is the sorted set of atom indices lying in any ring.
	RingMembers      []int
	AromaticRings    int
	NonAromaticRings int
	// AminoAcid is set when the input carries a charged NH, NH2 or NH3
	// nitrogen.
	AminoAcid bool

	tokens []Token
}

// Order returns the number of atoms.
func (m *Molecule) Order() int {
	return len(m.Vertices)
}

// Tokens returns a copy of the token stream the molecule was built from.
func (m *Molecule) Tokens() []Token {
	out := make([]Token, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Vertex returns the vertex with index i.
func (m *Molecule) Vertex(i int) *Vertex {
	return m.Vertices[i]
}

// Edge returns the edge with index i.
func (m *Molecule) Edge(i int) *Edge {
	return m.Edges[i]
}

// Neighbors returns the indices of atoms bonded to v in edge discovery order.
func (m *Molecule) Neighbors(v int) []int {
	out := make([]int, 0, len(m.Vertices[v].Edges))
	for _, ei := range m.Vertices[v].Edges {
		out = append(out, m.Edges[ei].Other(v))
	}
	return out
}

// RingCount returns the total number of rings.
func (m *Molecule) RingCount() int {
	return m.AromaticRings + m.NonAromaticRings
}

// Histogram counts atoms per printable element symbol, wildcards excluded.
func (m *Molecule) Histogram() map[string]int {
	out := make(map[string]int)
	for _, v := range m.Vertices {
		if v.IsWildcard() {
			continue
		}
		out[v.Element()]++
	}
	return out
}

// EdgeKeys returns the sorted structural keys of all edges, the form used to
// compare graphs independently of discovery order.
func (m *Molecule) EdgeKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(m.Edges))
	for _, e := range m.Edges {
		keys = append(keys, e.Key())
	}
	SortEdgeKeys(keys)
	return keys
}

// SortEdgeKeys orders keys by symbols then bond order.
func SortEdgeKeys(keys []EdgeKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		if keys[i].B != keys[j].B {
			return keys[i].B < keys[j].B
		}
		return keys[i].Bond < keys[j].Bond
	})
}
