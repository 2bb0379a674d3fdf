package funcgroup

import (
	"strconv"
)

// Resolve turns raw matches, in discovery order, into the two output views.
//
// The all view is produced by, in order: removing repeated matches of the
// same template on the same atoms, the hierarchy filter, and the global
// repetition filter.  The exact view additionally drops every match whose
// atom set is a proper subset of another surviving match's atom set.
func Resolve(raw []Match) (all, exact []Match) {
	all = FilterRepetition(FilterHierarchy(dedupPerTemplate(raw)))
	exact = FilterOverlap(all)
	return all, exact
}

func dedupPerTemplate(ms []Match) []Match {
	seen := make(map[string]bool, len(ms))
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		key := strconv.Itoa(m.Template) + "|" + m.BaseName + "|" + m.atomKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	return out
}

// FilterHierarchy groups matches that share the same atom set and the same
// core edge multiset, i.e. the same shape on the same atoms differing only in
// wildcard roles.  Within a group only exact matches are kept; a group with
// no exact member is kept whole.
func FilterHierarchy(ms []Match) []Match {
	type group struct {
		size  int
		exact int
	}
	groups := make(map[string]*group, len(ms))
	keys := make([]string, len(ms))
	for i, m := range ms {
		k := m.atomKey() + "|" + m.edgeKey()
		keys[i] = k
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
		}
		g.size++
		if m.Exact {
			g.exact++
		}
	}

	out := make([]Match, 0, len(ms))
	for i, m := range ms {
		g := groups[keys[i]]
		if g.size > 1 && g.exact > 0 && !m.Exact {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FilterRepetition keeps the first match for each distinct atom set.
func FilterRepetition(ms []Match) []Match {
	seen := make(map[string]bool, len(ms))
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		k := m.atomKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

// FilterOverlap drops every match whose atom set is a proper subset of
// another match's atom set.
func FilterOverlap(ms []Match) []Match {
	out := make([]Match, 0, len(ms))
	for i, a := range ms {
		contained := false
		for j, b := range ms {
			if i != j && properSubset(a.Atoms, b.Atoms) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, a)
		}
	}
	return out
}

// properSubset reports whether sorted set a is strictly contained in sorted
// set b.
func properSubset(a, b []int) bool {
	if len(a) >= len(b) {
		return false
	}
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}

// Count tallies matches by ring-qualified name.
func Count(ms []Match) map[string]int {
	out := make(map[string]int, len(ms))
	for _, m := range ms {
		out[m.Name]++
	}
	return out
}
