package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/funcgroup/internal/domain/funcgroup"
	"github.com/turtacn/funcgroup/pkg/errors"
)

func TestCatalogList_BuiltIn(t *testing.T) {
	t.Parallel()
	out, _, err := runCLI(t, "", "catalog", "list")
	require.NoError(t, err)

	def := funcgroup.DefaultCatalog()
	assert.True(t, strings.HasPrefix(out, "catalog: built-in ("))
	assert.Contains(t, out, "fingerprint: "+def.Fingerprint()+"\n")
	first := def.Entries()[0]
	assert.Contains(t, out, first.Pattern+" "+first.Name+"\n")
}

func TestCatalogList_FileJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("RC=O Aldehyde\nROR Ether\n"), 0o644))

	out, _, err := runCLI(t, "", "-o", "json", "catalog", "list", "--catalog", path)
	require.NoError(t, err)

	var listing CatalogListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, path, listing.Source)
	assert.Len(t, listing.Fingerprint, 64)
	assert.Equal(t, []funcgroup.Entry{
		{Pattern: "RC=O", Name: "Aldehyde"},
		{Pattern: "ROR", Name: "Ether"},
	}, listing.Entries)
}

func TestCatalogList_Table(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("ROR Ether\n"), 0o644))

	out, _, err := runCLI(t, "", "-o", "table", "catalog", "list", "--catalog", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"#", "NAME", "PATTERN"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Ether", "ROR"}, strings.Fields(lines[2]))
}

func TestCatalogList_Invalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(path, []byte("# empty\n"), 0o644))

	_, _, err := runCLI(t, "", "catalog", "list", "--catalog", path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCatalogEmpty))
}
