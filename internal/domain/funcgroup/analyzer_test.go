package funcgroup

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/funcgroup/internal/domain/molecule"
	"github.com/turtacn/funcgroup/pkg/errors"
)

var analyzerCorpus = []string{
	"CC(=O)O",
	"CCOC(=O)C",
	"O=Cc1ccccc1",
	"CC(=O)OC(=O)C",
	"CC(=O)Cl",
	"CC(=O)N",
	"CC(=O)NC",
	"CN(C)C(=O)C",
	"CC#N",
	"C[N+](=O)[O-]",
	"CN=C=O",
	"CC=NC",
	"CN=NC",
	"CS",
	"CSC",
	"CS(=O)C",
	"CS(=O)(=O)C",
	"CS(=O)(=O)O",
	"C=CC",
	"CC#CC",
	"FC(Cl)(Br)I",
	"OC1CCCCC1",
	"O=C1CCCCC1",
	"Nc1ccccc1",
	"[NH3+]CC(=O)[O-]",
	"OCC(O)CO",
	"C1CC2CCC1C2",
	"CC(C)(C)c1ccc(O)cc1",
	"C(=C)OC(=O)C",
	"COC(=O)OC",
}

func TestAnalyze_Scenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		smiles    string
		all       map[string]int
		exact     map[string]int
		rings     RingSummary
		alcohols  []int
		aminoAcid bool
	}{
		{
			name:     "acetic acid",
			smiles:   "CC(=O)O",
			all:      map[string]int{"CarboxylicAcid": 1, "Ketone": 1, "Alcohol": 1},
			exact:    map[string]int{"CarboxylicAcid": 1},
			alcohols: []int{3},
		},
		{
			name:   "benzene",
			smiles: "c1ccccc1",
			all:    map[string]int{},
			exact:  map[string]int{},
			rings:  RingSummary{Aromatic: 1, Total: 1},
		},
		{
			name:   "cyclohexane",
			smiles: "C1CCCCC1",
			all:    map[string]int{},
			exact:  map[string]int{},
			rings:  RingSummary{NonAromatic: 1, Total: 1},
		},
		{
			name:     "methanol",
			smiles:   "CO",
			all:      map[string]int{"Alcohol": 1},
			exact:    map[string]int{"Alcohol": 1},
			alcohols: []int{1},
		},
		{
			name:   "methylamine",
			smiles: "CN",
			all:    map[string]int{"PrimaryAmine": 1},
			exact:  map[string]int{"PrimaryAmine": 1},
		},
		{
			name:      "glycine zwitterion",
			smiles:    "[NH3+]CC(=O)[O-]",
			all:       map[string]int{"Carboxylate": 1, "Ketone": 1, "PrimaryAmine": 1},
			exact:     map[string]int{"Carboxylate": 1, "PrimaryAmine": 1},
			aminoAcid: true,
		},
		{
			name:   "acetone",
			smiles: "CC(=O)C",
			all:    map[string]int{"Ketone": 1},
			exact:  map[string]int{"Ketone": 1},
		},
		{
			name:   "acetaldehyde",
			smiles: "CC=O",
			all:    map[string]int{"Aldehyde": 1},
			exact:  map[string]int{"Aldehyde": 1},
		},
		{
			name:   "ethyl acetate",
			smiles: "CCOC(=O)C",
			all:    map[string]int{"Ester": 1, "Ether": 1, "Ketone": 1},
			exact:  map[string]int{"Ester": 1},
		},
		{
			name:   "cyclohexanone",
			smiles: "O=C1CCCCC1",
			all:    map[string]int{"CyclicKetone": 1},
			exact:  map[string]int{"CyclicKetone": 1},
			rings:  RingSummary{NonAromatic: 1, Total: 1},
		},
		{
			name:     "phenol",
			smiles:   "Oc1ccccc1",
			all:      map[string]int{"AromaticAlcohol": 1},
			exact:    map[string]int{"AromaticAlcohol": 1},
			rings:    RingSummary{Aromatic: 1, Total: 1},
			alcohols: []int{0},
		},
		{
			name:     "cyclohexanol",
			smiles:   "OC1CCCCC1",
			all:      map[string]int{"CyclicAlcohol": 1},
			exact:    map[string]int{"CyclicAlcohol": 1},
			rings:    RingSummary{NonAromatic: 1, Total: 1},
			alcohols: []int{0},
		},
		{
			name:   "aniline",
			smiles: "Nc1ccccc1",
			all:    map[string]int{"AromaticPrimaryAmine": 1},
			exact:  map[string]int{"AromaticPrimaryAmine": 1},
			rings:  RingSummary{Aromatic: 1, Total: 1},
		},
	}

	a := NewAnalyzer(nil)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := a.Analyze(tt.smiles)
			require.NoError(t, err)
			assert.Equal(t, tt.smiles, res.SMILES)
			assert.Equal(t, tt.all, res.AllGroups)
			assert.Equal(t, tt.exact, res.ExactGroups)
			assert.Equal(t, tt.rings, res.Rings)
			assert.Equal(t, tt.alcohols, res.AlcoholIndices)
			assert.Equal(t, len(tt.alcohols), res.AlcoholCount())
			assert.Equal(t, tt.aminoAcid, res.AminoAcid)
		})
	}
}

func TestAnalyze_ParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		smiles string
		code   errors.ErrorCode
	}{
		{"", errors.CodeEmptyInput},
		{"C1CC", errors.CodeRingClosure},
		{"C(C", errors.CodeSMILESSyntax},
		{"C(C)(C)(C)(C)C", errors.CodeValence},
	}
	a := NewAnalyzer(nil)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.smiles, func(t *testing.T) {
			t.Parallel()
			res, err := a.Analyze(tt.smiles)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAnalyze_DepthGuard(t *testing.T) {
	t.Parallel()
	for _, exhaustive := range []bool{false, true} {
		a := NewAnalyzer(nil, WithMaxDepth(1), WithExhaustive(exhaustive))
		_, err := a.Analyze("CC=O")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeDepthExceeded))
	}
}

func TestNewAnalyzer_Options(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(nil, WithMaxDepth(0))
	assert.Same(t, DefaultCatalog(), a.Catalog())
	assert.Equal(t, DefaultMaxDepth, a.maxDepth)
	assert.False(t, a.Exhaustive())

	custom, err := NewCatalog([]Entry{{"RC=O", "Aldehyde"}})
	require.NoError(t, err)
	b := NewAnalyzer(custom, WithMaxDepth(8), WithExhaustive(true))
	assert.Same(t, custom, b.Catalog())
	assert.Equal(t, 8, b.maxDepth)
	assert.True(t, b.Exhaustive())
}

func TestAnalyze_CustomCatalog(t *testing.T) {
	t.Parallel()
	c, err := NewCatalog([]Entry{{"RC=O", "Formyl"}})
	require.NoError(t, err)
	res, err := NewAnalyzer(c).Analyze("CCC=O")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Formyl": 1}, res.ExactGroups)
}

func TestAnalyze_RawOrder(t *testing.T) {
	t.Parallel()
	res, err := NewAnalyzer(nil).Analyze("CC(=O)O")
	require.NoError(t, err)
	require.NotEmpty(t, res.Raw)
	last := res.Raw[len(res.Raw)-1]
	assert.Equal(t, AlcoholName, last.BaseName)
	assert.Equal(t, DerivedTemplate, last.Template)
	for i := 1; i < len(res.Raw); i++ {
		if res.Raw[i].Template >= 0 {
			assert.GreaterOrEqual(t, res.Raw[i].Template, res.Raw[i-1].Template)
		}
	}
}

// hostEdgeKey returns the key of the host edge joining a and b.
func hostEdgeKey(t *testing.T, m *molecule.Molecule, a, b int) molecule.EdgeKey {
	t.Helper()
	for _, ei := range m.Vertex(a).Edges {
		e := m.Edge(ei)
		if e.Other(a) == b {
			return e.Key()
		}
	}
	t.Fatalf("no host edge between %d and %d", a, b)
	return molecule.EdgeKey{}
}

func TestAnalyze_Properties(t *testing.T) {
	t.Parallel()
	for _, exhaustive := range []bool{false, true} {
		a := NewAnalyzer(nil, WithExhaustive(exhaustive))
		templates := a.Catalog().Templates()
		for _, smiles := range analyzerCorpus {
			res, err := a.Analyze(smiles)
			require.NoError(t, err, smiles)

			for _, m := range res.Raw {
				if m.Template == DerivedTemplate {
					continue
				}
				tmpl := templates[m.Template]
				require.Len(t, m.Bindings, tmpl.CoreSize(), "%s %s", smiles, m.Name)

				// The bound host edges reproduce the template's core shape.
				var keys []molecule.EdgeKey
				for _, e := range tmpl.Graph.Edges {
					if !e.Core() {
						continue
					}
					keys = append(keys, hostEdgeKey(t, res.Molecule, m.Bindings[e.From], m.Bindings[e.To]))
				}
				molecule.SortEdgeKeys(keys)
				if len(keys) == 0 {
					keys = []molecule.EdgeKey{}
				}
				assert.Equal(t, tmpl.CoreEdgeKeys(), keys, "%s %s", smiles, m.Name)

				for tv, hv := range m.Bindings {
					tvx, hvx := tmpl.Graph.Vertex(tv), res.Molecule.Vertex(hv)
					assert.Equal(t, tvx.Symbol, hvx.Symbol)
					assert.Equal(t, tvx.TotalDegree, hvx.TotalDegree)
					assert.LessOrEqual(t, tvx.ImplicitDegree, hvx.ImplicitDegree)
					if m.Exact {
						assert.Equal(t, tvx.ExplicitDegree, hvx.ExplicitDegree)
					}
				}
			}

			seen := make(map[string]bool)
			for _, m := range res.All {
				k := m.atomKey()
				assert.False(t, seen[k], "%s: repeated atom set %s", smiles, k)
				seen[k] = true
			}
			for _, x := range res.Exact {
				for _, y := range res.Exact {
					assert.False(t, properSubset(x.Atoms, y.Atoms), "%s: %s inside %s", smiles, x.Name, y.Name)
				}
			}
		}
	}
}

func TestAnalyze_ExhaustiveCoversGreedy(t *testing.T) {
	t.Parallel()
	greedy := NewAnalyzer(nil)
	exhaustive := NewAnalyzer(nil, WithExhaustive(true))
	for _, smiles := range analyzerCorpus {
		g, err := greedy.Analyze(smiles)
		require.NoError(t, err)
		e, err := exhaustive.Analyze(smiles)
		require.NoError(t, err)

		sets := make(map[string]bool)
		for _, m := range e.All {
			sets[m.atomKey()] = true
		}
		for _, m := range g.All {
			assert.True(t, sets[m.atomKey()], "%s: %s missing from exhaustive", smiles, m.Name)
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(nil)
	for _, smiles := range analyzerCorpus {
		first, err := a.Analyze(smiles)
		require.NoError(t, err)
		second, err := a.Analyze(smiles)
		require.NoError(t, err)
		assert.Equal(t, first.AllGroups, second.AllGroups, smiles)
		assert.Equal(t, first.ExactGroups, second.ExactGroups, smiles)
	}
}

func TestAnalyzer_ConcurrentUse(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(nil)
	want := make(map[string]map[string]int, len(analyzerCorpus))
	for _, smiles := range analyzerCorpus {
		res, err := a.Analyze(smiles)
		require.NoError(t, err)
		want[smiles] = res.ExactGroups
	}

	var wg sync.WaitGroup
	got := make([]map[string]int, len(analyzerCorpus))
	for i, smiles := range analyzerCorpus {
		wg.Add(1)
		go func(i int, smiles string) {
			defer wg.Done()
			res, err := a.Analyze(smiles)
			if err == nil {
				got[i] = res.ExactGroups
			}
		}(i, smiles)
	}
	wg.Wait()
	for i, smiles := range analyzerCorpus {
		assert.Equal(t, want[smiles], got[i], smiles)
	}
}
