package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/funcgroup/internal/bootstrap"
	"github.com/turtacn/funcgroup/internal/domain/funcgroup"
)

// NewCatalogCmd creates the catalog command group.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect functional group template catalogs",
	}
	cmd.AddCommand(newCatalogListCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the templates of a catalog in matching order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			path := catalogPath
			if path == "" {
				path = cliCtx.Config.Catalog.Path
			}
			cat, err := bootstrap.LoadCatalog(path)
			if err != nil {
				return err
			}
			return PrintResult(cmd, newCatalogListing(cat, path))
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (default: config catalog.path or built-in)")
	return cmd
}

// CatalogListing describes a catalog for output.
type CatalogListing struct {
	Source      string           `json:"source" yaml:"source"`
	Fingerprint string           `json:"fingerprint" yaml:"fingerprint"`
	Entries     []funcgroup.Entry `json:"entries" yaml:"entries"`
}

func newCatalogListing(cat *funcgroup.Catalog, path string) *CatalogListing {
	source := path
	if source == "" {
		source = "built-in"
	}
	return &CatalogListing{
		Source:      source,
		Fingerprint: cat.Fingerprint(),
		Entries:     cat.Entries(),
	}
}

func (l *CatalogListing) TableHeaders() []string {
	return []string{"#", "NAME", "PATTERN"}
}

func (l *CatalogListing) TableRows() [][]string {
	rows := make([][]string, len(l.Entries))
	for i, e := range l.Entries {
		rows[i] = []string{strconv.Itoa(i + 1), e.Name, e.Pattern}
	}
	return rows
}

func (l *CatalogListing) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "catalog: %s (%d templates)\n", l.Source, len(l.Entries))
	fmt.Fprintf(&sb, "fingerprint: %s\n", l.Fingerprint)
	for _, e := range l.Entries {
		fmt.Fprintf(&sb, "%s %s\n", e.Pattern, e.Name)
	}
	return sb.String()
}
