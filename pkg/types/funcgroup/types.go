// Package funcgroup defines the functional-group analysis DTOs shared by the
// application service, the CLI, the HTTP API and the client.  No domain logic
// lives here.
package funcgroup

import (
	"strconv"
	"strings"

	"github.com/turtacn/funcgroup/pkg/errors"
)

// View selects one of the two resolved group views.
type View string

const (
	ViewAll   View = "all"
	ViewExact View = "exact"
)

// IsValid reports whether v is a known view.
func (v View) IsValid() bool {
	return v == ViewAll || v == ViewExact
}

// MoleculeInput identifies one molecule to analyse.
type MoleculeInput struct {
	Refcode string `json:"refcode,omitempty" yaml:"refcode,omitempty"`
	SMILES  string `json:"smiles" yaml:"smiles"`
}

// Validate rejects inputs without a SMILES string.
func (in MoleculeInput) Validate() error {
	if strings.TrimSpace(in.SMILES) == "" {
		return errors.InvalidParam("smiles is required").WithDetailf("refcode=%s", in.Refcode)
	}
	return nil
}

// RingSummary counts the rings of a molecule.
type RingSummary struct {
	Aromatic    int `json:"aromatic" yaml:"aromatic"`
	NonAromatic int `json:"non_aromatic" yaml:"non_aromatic"`
	Total       int `json:"total" yaml:"total"`
}

// AnalysisResult is the per-molecule output.
type AnalysisResult struct {
	Refcode string `json:"refcode,omitempty" yaml:"refcode,omitempty"`
	SMILES  string `json:"smiles" yaml:"smiles"`

	// AllGroups maps ring-qualified group names to counts after repetition
	// filtering; ExactGroups additionally drops groups nested inside others.
	AllGroups   map[string]int `json:"all_functional_groups" yaml:"all_functional_groups"`
	ExactGroups map[string]int `json:"exact_functional_groups" yaml:"exact_functional_groups"`

	Rings        RingSummary `json:"rings" yaml:"rings"`
	AlcoholCount int         `json:"alcohol_count" yaml:"alcohol_count"`
	AminoAcid    bool        `json:"amino_acid" yaml:"amino_acid"`

	// Cached is set when the result was served from the result cache.
	Cached bool `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// Groups returns the name → count mapping of the given view.
func (r *AnalysisResult) Groups(v View) map[string]int {
	if v == ViewExact {
		return r.ExactGroups
	}
	return r.AllGroups
}

// BatchFailure records a molecule that could not be analysed.
type BatchFailure struct {
	Index   int    `json:"index" yaml:"index"`
	Refcode string `json:"refcode,omitempty" yaml:"refcode,omitempty"`
	SMILES  string `json:"smiles" yaml:"smiles"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// BatchReport summarises one batch run.  Results holds the successful
// analyses in input order.
type BatchReport struct {
	RunID      string            `json:"run_id" yaml:"run_id"`
	Total      int               `json:"total" yaml:"total"`
	Succeeded  int               `json:"succeeded" yaml:"succeeded"`
	Failed     int               `json:"failed" yaml:"failed"`
	DurationMS int64             `json:"duration_ms" yaml:"duration_ms"`
	Results    []*AnalysisResult `json:"results" yaml:"results"`
	Failures   []BatchFailure    `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// TableRow is one molecule of a Table.
type TableRow struct {
	Refcode string `json:"refcode" yaml:"refcode"`
	SMILES  string `json:"smiles" yaml:"smiles"`
	Counts  []int  `json:"counts" yaml:"counts"`
}

// Table is the dataset form of many results: one row per molecule, one column
// per group name observed anywhere in the batch, zero-filled.
type Table struct {
	View    View       `json:"view" yaml:"view"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    []TableRow `json:"rows" yaml:"rows"`
}

// Header returns the column titles including the identifying columns.
func (t *Table) Header() []string {
	out := make([]string, 0, len(t.Columns)+2)
	out = append(out, "refcode", "smiles")
	return append(out, t.Columns...)
}

// Records returns every row as strings, aligned with Header.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rec := make([]string, 0, len(r.Counts)+2)
		rec = append(rec, r.Refcode, r.SMILES)
		for _, c := range r.Counts {
			rec = append(rec, strconv.Itoa(c))
		}
		out = append(out, rec)
	}
	return out
}

// Column returns the counts of one group across all rows, or nil when the
// group was never observed.
func (t *Table) Column(name string) []int {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Counts[idx]
	}
	return out
}
