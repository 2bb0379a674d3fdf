package analysis

import (
	"sort"

	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

// BuildTable aggregates results into one row per molecule and one column per
// group name observed in the chosen view anywhere in results.  Columns are
// sorted; absent groups count zero.  Nil results are skipped.
func BuildTable(results []*funcgroup.AnalysisResult, view funcgroup.View) *funcgroup.Table {
	if !view.IsValid() {
		view = funcgroup.ViewAll
	}

	seen := make(map[string]struct{})
	for _, r := range results {
		if r == nil {
			continue
		}
		for name := range r.Groups(view) {
			seen[name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	table := &funcgroup.Table{
		View:    view,
		Columns: columns,
		Rows:    make([]funcgroup.TableRow, 0, len(results)),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		groups := r.Groups(view)
		counts := make([]int, len(columns))
		for i, name := range columns {
			counts[i] = groups[name]
		}
		table.Rows = append(table.Rows, funcgroup.TableRow{
			Refcode: r.Refcode,
			SMILES:  r.SMILES,
			Counts:  counts,
		})
	}
	return table
}
