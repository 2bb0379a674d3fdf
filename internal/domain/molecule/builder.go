package molecule

import (
	"sort"
	"strings"

	"github.com/turtacn/funcgroup/pkg/errors"
)

// aminoAcidMarkers are the charged amine groups that flag an amino acid.
var aminoAcidMarkers = []string{"[NH+]", "[NH2+]", "[NH3+]"}

// Parse decodes a host-molecule SMILES string into a Molecule with degrees
// and ring classification filled in.
func Parse(smiles string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	tokens, err := Tokenize(smiles)
	if err != nil {
		return nil, err
	}
	return build(smiles, tokens)
}

// ParsePattern decodes a functional group template.  R atoms are allowed and
// carry degree 1.
func ParsePattern(pattern string) (*Molecule, error) {
	pattern = strings.TrimSpace(pattern)
	tokens, err := TokenizePattern(pattern)
	if err != nil {
		return nil, err
	}
	return build(pattern, tokens)
}

// MustParsePattern is ParsePattern for compile-time constant patterns.
func MustParsePattern(pattern string) *Molecule {
	m, err := ParsePattern(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

func build(smiles string, tokens []Token) (*Molecule, error) {
	b := newBuilder(smiles, tokens)
	if err := b.run(); err != nil {
		return nil, err
	}
	if err := b.assignDegrees(); err != nil {
		return nil, err
	}

	m := &Molecule{
		SMILES:   smiles,
		Vertices: b.vertices,
		Edges:    b.edges,
		tokens:   tokens,
	}
	for _, marker := range aminoAcidMarkers {
		if strings.Contains(smiles, marker) {
			m.AminoAcid = true
			break
		}
	}
	if err := classifyRings(m, b.closures); err != nil {
		return nil, err
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Graph builder
// ─────────────────────────────────────────────────────────────────────────────

type openRing struct {
	atom    int
	bond    BondType
	bondSet bool
	tok     int
}

// closure records one completed ring-closure pair for the classifier.
type closure struct {
	digit    byte
	openAtom int
	openTok  int
	atom     int
	tok      int
}

type builder struct {
	smiles string
	tokens []Token

	vertices []*Vertex
	edges    []*Edge

	// cursor is the atom the next atom bonds to, -1 before the first atom.
	cursor   int
	branches []int
	rings    map[byte]openRing
	closures []closure

	pending    BondType
	pendingSet bool
}

func newBuilder(smiles string, tokens []Token) *builder {
	return &builder{
		smiles: smiles,
		tokens: tokens,
		cursor: -1,
		rings:  make(map[byte]openRing),
	}
}

func (b *builder) run() error {
	for i, t := range b.tokens {
		var err error
		switch t.Kind {
		case TokenAtom:
			err = b.atom(t)
		case TokenBond:
			err = b.bond(t)
		case TokenRingDigit:
			err = b.ringDigit(i, t)
		case TokenBranchOpen:
			err = b.branchOpen(t)
		case TokenBranchClose:
			err = b.branchClose(i, t)
		}
		if err != nil {
			return err
		}
	}

	end := len(b.smiles)
	if b.pendingSet {
		return syntaxError(b.smiles, end, "dangling bond at end of input")
	}
	if len(b.branches) > 0 {
		return syntaxError(b.smiles, end, "unbalanced parentheses")
	}
	if len(b.rings) > 0 {
		digits := make([]byte, 0, len(b.rings))
		for d := range b.rings {
			digits = append(digits, d)
		}
		sort.Slice(digits, func(i, j int) bool { return digits[i] < digits[j] })
		return errors.New(errors.CodeRingClosure, "unclosed ring").
			WithDetailf("smiles=%s digits=%s", b.smiles, string(digits))
	}
	return nil
}

func (b *builder) takeBond() BondType {
	bond := BondSingle
	if b.pendingSet {
		bond = b.pending
	}
	b.pending, b.pendingSet = 0, false
	return bond
}

func (b *builder) atom(t Token) error {
	idx := len(b.vertices)
	v := &Vertex{
		Index:     idx,
		Symbol:    t.Symbol(),
		Code:      t.Code,
		Charge:    t.Charge,
		Aromatic:  t.Aromatic,
		Bracketed: t.Bracketed,
	}
	if t.Aromatic {
		v.RingType = Aromatic
	}
	b.vertices = append(b.vertices, v)

	if b.cursor < 0 {
		if b.pendingSet {
			return syntaxError(b.smiles, t.Pos, "bond before first atom")
		}
	} else {
		b.addEdge(b.cursor, idx, b.takeBond())
	}
	b.cursor = idx
	return nil
}

func (b *builder) bond(t Token) error {
	if b.cursor < 0 {
		return syntaxError(b.smiles, t.Pos, "bond before first atom")
	}
	if b.pendingSet {
		return syntaxError(b.smiles, t.Pos, "consecutive bond symbols")
	}
	b.pending, b.pendingSet = bondFromCode(t.Code), true
	return nil
}

func (b *builder) ringDigit(i int, t Token) error {
	if b.cursor < 0 {
		return syntaxError(b.smiles, t.Pos, "ring closure before first atom")
	}
	open, ok := b.rings[t.Code]
	if !ok {
		b.rings[t.Code] = openRing{atom: b.cursor, bond: b.pending, bondSet: b.pendingSet, tok: i}
		b.pending, b.pendingSet = 0, false
		return nil
	}

	bond := BondSingle
	if open.bondSet {
		bond = open.bond
	}
	if b.pendingSet {
		if open.bondSet && open.bond != b.pending {
			return syntaxError(b.smiles, t.Pos, "conflicting ring-closure bond orders")
		}
		bond = b.pending
	}
	b.pending, b.pendingSet = 0, false

	if open.atom == b.cursor {
		return syntaxError(b.smiles, t.Pos, "ring closure bonds an atom to itself")
	}
	if b.hasEdge(open.atom, b.cursor) {
		return syntaxError(b.smiles, t.Pos, "ring closure duplicates an existing bond")
	}
	b.addEdge(open.atom, b.cursor, bond)
	b.closures = append(b.closures, closure{
		digit:    t.Code,
		openAtom: open.atom,
		openTok:  open.tok,
		atom:     b.cursor,
		tok:      i,
	})
	delete(b.rings, t.Code)
	return nil
}

func (b *builder) branchOpen(t Token) error {
	if b.cursor < 0 {
		return syntaxError(b.smiles, t.Pos, "branch before first atom")
	}
	if b.pendingSet {
		return syntaxError(b.smiles, t.Pos, "bond before branch")
	}
	b.branches = append(b.branches, b.cursor)
	return nil
}

func (b *builder) branchClose(i int, t Token) error {
	if len(b.branches) == 0 {
		return syntaxError(b.smiles, t.Pos, "unbalanced parentheses")
	}
	if b.pendingSet {
		return syntaxError(b.smiles, t.Pos, "dangling bond before ')'")
	}
	if i > 0 && b.tokens[i-1].Kind == TokenBranchOpen {
		return syntaxError(b.smiles, t.Pos, "empty branch")
	}
	top := len(b.branches) - 1
	b.cursor = b.branches[top]
	b.branches = b.branches[:top]
	return nil
}

func (b *builder) addEdge(from, to int, bond BondType) {
	e := &Edge{
		Index:      len(b.edges),
		From:       from,
		To:         to,
		FromSymbol: b.vertices[from].Symbol,
		ToSymbol:   b.vertices[to].Symbol,
		Bond:       bond,
	}
	b.edges = append(b.edges, e)
	b.vertices[from].Edges = append(b.vertices[from].Edges, e.Index)
	b.vertices[to].Edges = append(b.vertices[to].Edges, e.Index)
}

func (b *builder) hasEdge(x, y int) bool {
	for _, ei := range b.vertices[x].Edges {
		if b.edges[ei].Other(x) == y {
			return true
		}
	}
	return false
}

// assignDegrees fills the degree bookkeeping of every vertex.  A vertex whose
// bonds consume more electrons than its largest allowed valence is rejected.
func (b *builder) assignDegrees() error {
	for _, v := range b.vertices {
		if v.IsWildcard() {
			v.ExplicitDegree, v.ImplicitDegree, v.TotalDegree, v.Valence = 1, 1, 1, 1
			continue
		}
		consumed := 0
		for _, ei := range v.Edges {
			consumed += b.edges[ei].Bond.Order()
		}
		valence := -1
		for _, allowed := range allowedValences(v.Code, v.Charge) {
			if allowed >= consumed {
				valence = allowed
				break
			}
		}
		if valence < 0 {
			return errors.New(errors.CodeValence, "explicit bonds exceed atom valence").
				WithDetailf("smiles=%s atom=%d symbol=%s bonds=%d", b.smiles, v.Index, v.Symbol, consumed)
		}
		v.Valence = valence
		v.ExplicitDegree = len(v.Edges)
		v.ImplicitDegree = valence - consumed
		v.TotalDegree = v.ExplicitDegree + v.ImplicitDegree
	}
	return nil
}
