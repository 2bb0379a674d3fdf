package funcgroup

import (
	"github.com/turtacn/funcgroup/internal/domain/molecule"
)

// Names of the structurally derived groups.
const (
	AlcoholName      = "Alcohol"
	PrimaryAmineName = "PrimaryAmine"
)

// AlcoholIndices returns the atom indices of alcoholic oxygens.  An oxygen
// qualifies by its position in the token stream:
//
//   - it is the last token and follows a carbon, a ring digit or ')';
//   - it is the first token and is followed by a carbon;
//   - it is the only atom of a "(O)" branch;
//   - it is followed by ')' and does not follow a bond or a bracket atom.
//
// The oxygen must also be a plain, uncharged atom with a single bond to one
// neighbour.
func AlcoholIndices(m *molecule.Molecule) []int {
	tokens := m.Tokens()
	var out []int
	for i, t := range tokens {
		if !t.IsAtom('O') || t.Bracketed || t.Charge != 0 {
			continue
		}
		var prev, next *molecule.Token
		if i > 0 {
			prev = &tokens[i-1]
		}
		if i+1 < len(tokens) {
			next = &tokens[i+1]
		}
		if !alcoholPosition(prev, next) {
			continue
		}
		v := m.Vertex(t.Atom)
		if v.ExplicitDegree != 1 || m.Edge(v.Edges[0]).Bond != molecule.BondSingle {
			continue
		}
		out = append(out, t.Atom)
	}
	return out
}

func alcoholPosition(prev, next *molecule.Token) bool {
	switch {
	case next == nil && prev != nil:
		return prev.IsAtom('C') || prev.Kind == molecule.TokenRingDigit || prev.Kind == molecule.TokenBranchClose
	case prev == nil && next != nil:
		return next.IsAtom('C')
	case prev == nil || next == nil:
		return false
	case prev.Kind == molecule.TokenBranchOpen && next.Kind == molecule.TokenBranchClose:
		return true
	case next.Kind == molecule.TokenBranchClose:
		return prev.Kind != molecule.TokenBond && !(prev.Kind == molecule.TokenAtom && prev.Bracketed)
	}
	return false
}

// derivedMatch builds the match for a terminal atom bound to its only
// neighbour, qualified by the neighbour's ring type.
func derivedMatch(m *molecule.Molecule, name string, atom int) Match {
	v := m.Vertex(atom)
	neighbor := m.Edge(v.Edges[0]).Other(atom)

	match := Match{
		BaseName: name,
		Template: DerivedTemplate,
		Bindings: map[int]int{0: atom},
		Atoms:    []int{atom},
		Exact:    true,
	}
	switch m.Vertex(neighbor).RingType {
	case molecule.Aromatic:
		match.AromaticAtoms = 1
	case molecule.NonAromatic:
		match.CyclicAtoms = 1
	}
	match.Name = ringPrefix(match.AromaticAtoms, match.CyclicAtoms) + name
	return match
}

func alcoholMatches(m *molecule.Molecule, indices []int) []Match {
	out := make([]Match, 0, len(indices))
	for _, o := range indices {
		out = append(out, derivedMatch(m, AlcoholName, o))
	}
	return out
}

// primaryAmineMatches finds nitrogens with exactly one bond, and that bond
// single.
func primaryAmineMatches(m *molecule.Molecule) []Match {
	var out []Match
	for _, v := range m.Vertices {
		if v.Code != 'N' || v.ExplicitDegree != 1 {
			continue
		}
		if m.Edge(v.Edges[0]).Bond != molecule.BondSingle {
			continue
		}
		out = append(out, derivedMatch(m, PrimaryAmineName, v.Index))
	}
	return out
}
