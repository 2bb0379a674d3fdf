package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

func TestAnalyze_TextOutput(t *testing.T) {
	t.Parallel()
	out, _, err := runCLI(t, "", "analyze", "CC=O")
	require.NoError(t, err)
	assert.Contains(t, out, "CC=O\n")
	assert.Contains(t, out, "  exact: Aldehyde=1\n")
	assert.Contains(t, out, "  all:   ")
}

func TestAnalyze_JSONOutput(t *testing.T) {
	t.Parallel()
	out, _, err := runCLI(t, "", "-o", "json", "analyze", "CC(=O)O")
	require.NoError(t, err)

	var results []funcgroup.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "CC(=O)O", results[0].SMILES)
	assert.Equal(t, map[string]int{"CarboxylicAcid": 1}, results[0].ExactGroups)
	assert.Equal(t, map[string]int{"CarboxylicAcid": 1, "Ketone": 1, "Alcohol": 1}, results[0].AllGroups)
}

func TestAnalyze_ExactOnlyJSON(t *testing.T) {
	t.Parallel()
	out, _, err := runCLI(t, "", "-o", "json", "analyze", "--exact-only", "CC(=O)O")
	require.NoError(t, err)
	assert.NotContains(t, out, "all_functional_groups")

	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, map[string]interface{}{"CarboxylicAcid": float64(1)}, results[0]["exact_functional_groups"])
}

func TestAnalyze_YAMLOutput(t *testing.T) {
	t.Parallel()
	out, _, err := runCLI(t, "", "-o", "yaml", "analyze", "CC=O")
	require.NoError(t, err)

	var results []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "CC=O", results[0]["smiles"])
}

func TestAnalyze_TableFromStdin(t *testing.T) {
	t.Parallel()
	stdin := "# acids\n\nCC(=O)O ACEACD\n"
	out, _, err := runCLI(t, stdin, "-o", "table", "analyze", "--exact-only", "--file", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"refcode", "smiles", "CarboxylicAcid"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"ACEACD", "CC(=O)O", "1"}, strings.Fields(lines[2]))
}

func TestAnalyze_FileInput(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "mols.smi")
	require.NoError(t, os.WriteFile(path, []byte("CC=O ALD\n"), 0o644))

	out, _, err := runCLI(t, "", "analyze", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "CC=O [ALD]\n")

	_, _, err = runCLI(t, "", "analyze", "-f", filepath.Join(t.TempDir(), "missing.smi"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestAnalyze_CustomCatalog(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("ROR Ether\n"), 0o644))

	out, _, err := runCLI(t, "", "analyze", "--catalog", path, "CC=O")
	require.NoError(t, err)
	assert.Contains(t, out, "  exact: -\n")
}

func TestAnalyze_NoInput(t *testing.T) {
	t.Parallel()
	_, _, err := runCLI(t, "", "analyze")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestAnalyze_PartialFailure(t *testing.T) {
	t.Parallel()
	out, errOut, err := runCLI(t, "", "analyze", "CC=O", "C1CC")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	assert.Contains(t, err.Error(), "failed=1 total=2")

	assert.Contains(t, out, "exact: Aldehyde=1")
	assert.Contains(t, errOut, "failed: C1CC: ")
}

func TestReadInputs(t *testing.T) {
	t.Parallel()
	in := "  CCO ETHNOL extra\n# comment\n\n\tc1ccccc1\n"
	got, err := ReadInputs(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []funcgroup.MoleculeInput{
		{SMILES: "CCO", Refcode: "ETHNOL"},
		{SMILES: "c1ccccc1"},
	}, got)

	got, err = ReadInputs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFormatGroups(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "-", formatGroups(nil))
	assert.Equal(t, "Alcohol=2 Ketone=1", formatGroups(map[string]int{"Ketone": 1, "Alcohol": 2}))
}

func TestDescribeFailure(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "C1CC (X1): boom", describeFailure(funcgroup.BatchFailure{SMILES: "C1CC", Refcode: "X1", Message: "boom"}))
	assert.Equal(t, "C1CC: boom", describeFailure(funcgroup.BatchFailure{SMILES: "C1CC", Message: "boom"}))
}
