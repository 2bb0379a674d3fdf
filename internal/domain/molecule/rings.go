package molecule

import (
	"sort"

	"github.com/turtacn/funcgroup/pkg/errors"
)

// classifyRings assigns ring membership and aromaticity.  Membership is a
// branch-scope property, so it is computed from the token stream rather than
// the edge list.  Each pending ring keeps a trail: the path of atoms from its
// opening atom to the current cursor.
//
//   - an atom extends the trail of every pending ring;
//   - a branch opened after the ring is a side branch: when it closes the
//     trail is cut back to where the branch started;
//   - closing a branch that was already open when the ring opened leaves it:
//     the trail is cut back to where the path entered that branch and
//     continues at the branch root atom.
//
// When the closing digit arrives the trail is the ring.  Atoms in a side
// branch that textually falls between two ring digits are therefore
// excluded, and a ring opened inside a branch includes the branch root.
func classifyRings(m *Molecule, closures []closure) error {
	if len(closures) == 0 {
		return nil
	}
	tokens := m.tokens

	openAt := make(map[int]int, len(closures))
	closeAt := make(map[int]int, len(closures))
	for ri, c := range closures {
		openAt[c.openTok] = ri
		closeAt[c.tok] = ri
	}

	type trail struct {
		atoms []int
		// marks[d] is the trail length at which the path entered the branch
		// at depth d; -1 until the path reaches that depth.
		marks []int
		// base is the shallowest depth the path has reached.
		base int
	}
	members := make([]map[int]bool, len(closures))
	pending := make(map[int]*trail)
	roots := []int{-1}
	cur := -1
	for i, t := range tokens {
		depth := len(roots) - 1
		switch t.Kind {
		case TokenAtom:
			for _, tr := range pending {
				tr.atoms = append(tr.atoms, t.Atom)
			}
			cur = t.Atom
		case TokenBranchOpen:
			for _, tr := range pending {
				tr.marks = append(tr.marks, len(tr.atoms))
			}
			roots = append(roots, cur)
		case TokenBranchClose:
			root := roots[depth]
			roots = roots[:depth]
			for _, tr := range pending {
				tr.atoms = tr.atoms[:tr.marks[depth]]
				tr.marks = tr.marks[:depth]
				if depth == tr.base && root >= 0 {
					tr.atoms = append(tr.atoms, root)
					tr.marks[depth-1] = len(tr.atoms)
					tr.base = depth - 1
				}
			}
			cur = root
		case TokenRingDigit:
			if ri, ok := openAt[i]; ok {
				tr := &trail{atoms: []int{closures[ri].openAtom}, marks: make([]int, depth+1), base: depth}
				for d := range tr.marks {
					tr.marks[d] = -1
				}
				tr.marks[depth] = 1
				pending[ri] = tr
			} else if ri, ok := closeAt[i]; ok {
				members[ri] = map[int]bool{closures[ri].atom: true}
				for _, a := range pending[ri].atoms {
					members[ri][a] = true
				}
				delete(pending, ri)
			}
		}
	}

	allAromatic, noneAromatic := true, true
	for _, v := range m.Vertices {
		if v.IsWildcard() {
			continue
		}
		if v.Aromatic {
			noneAromatic = false
		} else {
			allAromatic = false
		}
	}

	inRing := make(map[int]bool)
	m.Rings = make([]Ring, 0, len(closures))
	for ri, c := range closures {
		ring := Ring{Digit: c.digit, Open: c.openAtom, Close: c.atom}
		for a := range members[ri] {
			ring.Members = append(ring.Members, a)
			inRing[a] = true
		}
		sort.Ints(ring.Members)

		switch {
		case allAromatic:
			ring.Aromatic = true
		case noneAromatic:
			ring.Aromatic = false
		default:
			ring.Aromatic = true
			for _, a := range ring.Members {
				if !m.Vertices[a].Aromatic {
					ring.Aromatic = false
					break
				}
			}
		}
		if ring.Aromatic {
			m.AromaticRings++
		} else {
			m.NonAromaticRings++
		}
		m.Rings = append(m.Rings, ring)
	}

	for a := range inRing {
		m.RingMembers = append(m.RingMembers, a)
		v := m.Vertices[a]
		if v.RingType == NonCyclic {
			v.RingType = NonAromatic
		}
	}
	sort.Ints(m.RingMembers)

	if m.AromaticRings+m.NonAromaticRings != len(closures) {
		return errors.Internal("ring classification lost a ring").
			WithDetailf("smiles=%s closures=%d", m.SMILES, len(closures))
	}
	return nil
}
