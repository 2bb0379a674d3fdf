package funcgroup

import (
	"github.com/turtacn/funcgroup/internal/domain/molecule"
)

// DefaultMaxDepth bounds the matching recursion.
const DefaultMaxDepth = 256

// RingSummary counts the rings of a molecule.
type RingSummary struct {
	Aromatic    int `json:"aromatic"`
	NonAromatic int `json:"non_aromatic"`
	Total       int `json:"total"`
}

// Result is the core output for one molecule.
type Result struct {
	SMILES   string
	Molecule *molecule.Molecule

	// Raw holds every match in discovery order: catalog templates in catalog
	// order, then alcohols, then primary amines.
	Raw   []Match
	All   []Match
	Exact []Match

	AllGroups   map[string]int
	ExactGroups map[string]int

	AlcoholIndices []int
	Rings          RingSummary
	AminoAcid      bool
}

// AlcoholCount returns the number of alcoholic oxygens.
func (r *Result) AlcoholCount() int {
	return len(r.AlcoholIndices)
}

// Analyzer runs the catalog against molecules.  It holds no mutable state and
// may be shared between goroutines.
type Analyzer struct {
	catalog    *Catalog
	maxDepth   int
	exhaustive bool
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMaxDepth sets the recursion ceiling of the matching engine.
// Non-positive values keep the default.
func WithMaxDepth(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxDepth = n
		}
	}
}

// WithExhaustive switches the engine from greedy edge choice to full
// backtracking over every compatible host edge.
func WithExhaustive(on bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.exhaustive = on
	}
}

// NewAnalyzer returns an Analyzer over catalog, or over DefaultCatalog when
// catalog is nil.
func NewAnalyzer(catalog *Catalog, opts ...AnalyzerOption) *Analyzer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	a := &Analyzer{catalog: catalog, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Catalog returns the catalog the analyzer matches.
func (a *Analyzer) Catalog() *Catalog {
	return a.catalog
}

// Exhaustive reports whether full backtracking is enabled.
func (a *Analyzer) Exhaustive() bool {
	return a.exhaustive
}

// Analyze parses smiles and analyses it.  Parse failures are returned as is;
// they carry the SMILES codes of pkg/errors.
func (a *Analyzer) Analyze(smiles string) (*Result, error) {
	m, err := molecule.Parse(smiles)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeMolecule(m)
}

// AnalyzeMolecule matches every template against m and resolves the matches.
func (a *Analyzer) AnalyzeMolecule(m *molecule.Molecule) (*Result, error) {
	raw, err := a.FindMatches(m)
	if err != nil {
		return nil, err
	}
	alcohols := AlcoholIndices(m)
	raw = append(raw, alcoholMatches(m, alcohols)...)
	raw = append(raw, primaryAmineMatches(m)...)

	all, exact := Resolve(raw)
	return &Result{
		SMILES:         m.SMILES,
		Molecule:       m,
		Raw:            raw,
		All:            all,
		Exact:          exact,
		AllGroups:      Count(all),
		ExactGroups:    Count(exact),
		AlcoholIndices: alcohols,
		Rings: RingSummary{
			Aromatic:    m.AromaticRings,
			NonAromatic: m.NonAromaticRings,
			Total:       m.RingCount(),
		},
		AminoAcid: m.AminoAcid,
	}, nil
}

// FindMatches returns the raw catalog matches of m in catalog order.
func (a *Analyzer) FindMatches(m *molecule.Molecule) ([]Match, error) {
	mt := &matcher{host: m, maxDepth: a.maxDepth, exhaustive: a.exhaustive}
	var raw []Match
	for i, t := range a.catalog.templates {
		ms, err := mt.matchTemplate(i, t)
		if err != nil {
			return nil, err
		}
		raw = append(raw, ms...)
	}
	return raw, nil
}
