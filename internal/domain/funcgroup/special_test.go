package funcgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlcoholIndices(t *testing.T) {
	t.Parallel()
	tests := []struct {
		smiles string
		want   []int
	}{
		{"CO", []int{1}},
		{"OCC", []int{0}},
		{"CC(O)C", []int{2}},
		{"CC(CO)C", []int{3}},
		{"CC(=O)O", []int{3}},
		{"Oc1ccccc1", []int{0}},
		{"c1ccccc1O", []int{6}},
		{"OCC(O)CO", []int{0, 3, 5}},
		{"CCOC", nil},
		{"CC=O", nil},
		{"C=O", nil},
		{"[OH]C", nil},
		{"C[O-]", nil},
		{"OO", nil},
		{"CC(=O)C", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.smiles, func(t *testing.T) {
			t.Parallel()
			got := AlcoholIndices(mustParse(t, tt.smiles))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlcoholMatches_Naming(t *testing.T) {
	t.Parallel()
	tests := []struct {
		smiles string
		want   string
	}{
		{"CCO", "Alcohol"},
		{"Oc1ccccc1", "AromaticAlcohol"},
		{"OC1CCCCC1", "CyclicAlcohol"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.smiles, func(t *testing.T) {
			t.Parallel()
			m := mustParse(t, tt.smiles)
			ms := alcoholMatches(m, AlcoholIndices(m))
			require.Len(t, ms, 1)
			assert.Equal(t, tt.want, ms[0].Name)
			assert.Equal(t, AlcoholName, ms[0].BaseName)
			assert.Equal(t, DerivedTemplate, ms[0].Template)
			assert.True(t, ms[0].Exact)
			assert.Len(t, ms[0].Atoms, 1)
		})
	}
}

func TestPrimaryAmineMatches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		smiles string
		want   []string
	}{
		{"CN", []string{"PrimaryAmine"}},
		{"NCCN", []string{"PrimaryAmine", "PrimaryAmine"}},
		{"Nc1ccccc1", []string{"AromaticPrimaryAmine"}},
		{"NC1CCCCC1", []string{"CyclicPrimaryAmine"}},
		{"C[NH3+]", []string{"PrimaryAmine"}},
		{"CNC", nil},
		{"CC#N", nil},
		{"C=N", nil},
		{"N", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.smiles, func(t *testing.T) {
			t.Parallel()
			ms := primaryAmineMatches(mustParse(t, tt.smiles))
			var names []string
			for _, m := range ms {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
