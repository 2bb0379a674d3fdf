// Package molecule decodes the restricted SMILES grammar used by the
// functional group extractor into an explicit atom/bond graph.  It covers the
// tokenizer, the graph builder with valence bookkeeping and the ring and
// aromaticity classifier.  The package is pure: it performs no I/O and never
// logs.
package molecule

// ─────────────────────────────────────────────────────────────────────────────
// Element table
// ─────────────────────────────────────────────────────────────────────────────

// Internal single-character codes for two-letter elements.  Every atom is one
// code, so positional arithmetic over atoms never has to care about symbol
// width.
const (
	CodeChlorine byte = 'L'
	CodeBromine  byte = 'X'
	CodeSilicon  byte = 'Q'

	// CodeWildcard is the template attachment atom.  It never appears in a
	// host molecule.
	CodeWildcard byte = 'R'
)

// WildcardSymbol is the vertex symbol of a template attachment atom.
const WildcardSymbol = "R"

type element struct {
	symbol string
	// valences lists the allowed neutral valences in increasing order.
	valences []int
	// group orders the element relative to carbon for charge adjustment:
	// -1 left of carbon, 0 carbon, +1 right of carbon.
	group int
}

var elements = map[byte]element{
	'B':          {symbol: "B", valences: []int{3}, group: -1},
	'C':          {symbol: "C", valences: []int{4}, group: 0},
	'N':          {symbol: "N", valences: []int{3, 5}, group: 1},
	'O':          {symbol: "O", valences: []int{2}, group: 1},
	'P':          {symbol: "P", valences: []int{3, 5}, group: 1},
	'S':          {symbol: "S", valences: []int{2, 4, 6}, group: 1},
	'F':          {symbol: "F", valences: []int{1}, group: 1},
	'I':          {symbol: "I", valences: []int{1}, group: 1},
	CodeChlorine: {symbol: "Cl", valences: []int{1}, group: 1},
	CodeBromine:  {symbol: "Br", valences: []int{1}, group: 1},
	CodeSilicon:  {symbol: "Si", valences: []int{4}, group: 0},
	CodeWildcard: {symbol: "R", valences: []int{1}, group: 0},
}

// aromaticCodes are the elements that may be written lower-case.
var aromaticCodes = map[byte]bool{
	'B': true, 'C': true, 'N': true, 'O': true, 'P': true, 'S': true,
}

// ElementSymbol returns the printable element symbol for an internal code,
// e.g. 'L' → "Cl".  Unknown codes return the code itself.
func ElementSymbol(code byte) string {
	if e, ok := elements[code]; ok {
		return e.symbol
	}
	return string(code)
}

// IsKnownCode reports whether code is a supported internal atom code.
func IsKnownCode(code byte) bool {
	_, ok := elements[code]
	return ok
}

// allowedValences returns the charge-adjusted valences for code.  Elements
// right of carbon gain one valence per positive charge (N+ → 4), elements left
// of carbon gain one per negative charge (B- → 4) and carbon loses one per
// unit of charge either way.
func allowedValences(code byte, charge int) []int {
	e, ok := elements[code]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(e.valences))
	for _, v := range e.valences {
		adj := v
		switch e.group {
		case 1:
			adj = v + charge
		case -1:
			adj = v - charge
		default:
			if charge < 0 {
				adj = v + charge
			} else {
				adj = v - charge
			}
		}
		if adj >= 0 {
			out = append(out, adj)
		}
	}
	return out
}

// chargeSuffix renders a formal charge the way it is appended to a vertex
// symbol: "+", "-", "++", ...
func chargeSuffix(charge int) string {
	if charge == 0 {
		return ""
	}
	sign := byte('+')
	if charge < 0 {
		sign = '-'
		charge = -charge
	}
	buf := make([]byte, charge)
	for i := range buf {
		buf[i] = sign
	}
	return string(buf)
}

// ─────────────────────────────────────────────────────────────────────────────
// Bonds
// ─────────────────────────────────────────────────────────────────────────────

// BondType is the order of a bond.
type BondType int

const (
	BondSingle BondType = iota + 1
	BondDouble
	BondTriple
)

// Order returns the number of valence electrons the bond consumes on each end.
func (b BondType) Order() int {
	return int(b)
}

// Symbol returns the SMILES symbol for the bond; single bonds have none.
func (b BondType) Symbol() string {
	switch b {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	default:
		return ""
	}
}

func (b BondType) String() string {
	switch b {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	default:
		return "unknown"
	}
}

func bondFromCode(c byte) BondType {
	switch c {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	default:
		return BondSingle
	}
}
