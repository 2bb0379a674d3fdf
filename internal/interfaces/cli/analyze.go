package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/funcgroup/internal/application/analysis"
	"github.com/turtacn/funcgroup/internal/bootstrap"
	"github.com/turtacn/funcgroup/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/funcgroup/pkg/errors"
	"github.com/turtacn/funcgroup/pkg/types/funcgroup"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var (
		file        string
		catalogPath string
		exactOnly   bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "analyze [SMILES...]",
		Short: "Report the functional groups of one or more molecules",
		Long: "Analyze SMILES given as arguments and/or read from a file with one\n" +
			"\"SMILES [refcode]\" per line (\"-\" reads standard input).  Blank lines and\n" +
			"lines starting with '#' are skipped.",
		Example: "  ifg analyze 'CC(=O)O'\n" +
			"  ifg analyze -o table --file molecules.smi\n" +
			"  ifg analyze --exact-only -o json 'CCOC(=O)C' 'Nc1ccccc1'",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			inputs := argsToInputs(args)
			if file != "" {
				fromFile, err := readInputFile(cmd, file)
				if err != nil {
					return err
				}
				inputs = append(inputs, fromFile...)
			}
			if len(inputs) == 0 {
				return errors.InvalidParam("no SMILES given").
					WithDetail("pass SMILES as arguments or use --file")
			}

			comps, err := bootstrap.Build(cliCtx.Config, cliCtx.Logger, bootstrap.Options{
				CatalogPath: catalogPath,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}
			defer comps.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			report, err := comps.Service.AnalyzeBatch(ctx, inputs)
			if err != nil {
				return err
			}

			view := funcgroup.ViewAll
			if exactOnly {
				view = funcgroup.ViewExact
			}
			if err := PrintResult(cmd, newAnalyzeOutput(report, view, cliCtx.OutputFormat)); err != nil {
				return err
			}

			for _, f := range report.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s\n", describeFailure(f))
			}
			if report.Failed > 0 {
				cliCtx.Logger.Debug("analysis finished with failures",
					logging.String(logging.KeyRunID, report.RunID),
					logging.Int("failed", report.Failed))
				return errors.New(errors.CodeInvalidParam, "some molecules could not be analysed").
					WithDetailf("failed=%d total=%d", report.Failed, report.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read \"SMILES [refcode]\" lines from a file (- for stdin)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "functional group catalog file (default: config catalog.path or built-in)")
	cmd.Flags().BoolVar(&exactOnly, "exact-only", false, "report only the non-overlapping (exact) groups")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "molecules analysed in parallel (default: config batch.concurrency)")
	return cmd
}

func argsToInputs(args []string) []funcgroup.MoleculeInput {
	out := make([]funcgroup.MoleculeInput, 0, len(args))
	for _, a := range args {
		out = append(out, funcgroup.MoleculeInput{SMILES: a})
	}
	return out
}

func readInputFile(cmd *cobra.Command, path string) ([]funcgroup.MoleculeInput, error) {
	if path == "-" {
		return ReadInputs(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to open input file").WithDetailf("path=%s", path)
	}
	defer f.Close()

	inputs, err := ReadInputs(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "failed to read input file").WithDetailf("path=%s", path)
	}
	return inputs, nil
}

// ReadInputs parses "SMILES [refcode]" lines.  Blank lines and lines
// starting with '#' are skipped; the refcode is the second field, if any.
func ReadInputs(r io.Reader) ([]funcgroup.MoleculeInput, error) {
	var out []funcgroup.MoleculeInput
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		in := funcgroup.MoleculeInput{SMILES: fields[0]}
		if len(fields) > 1 {
			in.Refcode = fields[1]
		}
		out = append(out, in)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read input")
	}
	return out, nil
}

func describeFailure(f funcgroup.BatchFailure) string {
	if f.Refcode != "" {
		return fmt.Sprintf("%s (%s): %s", f.SMILES, f.Refcode, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.SMILES, f.Message)
}

// exactResult is the --exact-only projection of an AnalysisResult.
type exactResult struct {
	Refcode      string                `json:"refcode,omitempty" yaml:"refcode,omitempty"`
	SMILES       string                `json:"smiles" yaml:"smiles"`
	ExactGroups  map[string]int        `json:"exact_functional_groups" yaml:"exact_functional_groups"`
	Rings        funcgroup.RingSummary `json:"rings" yaml:"rings"`
	AlcoholCount int                   `json:"alcohol_count" yaml:"alcohol_count"`
	AminoAcid    bool                  `json:"amino_acid" yaml:"amino_acid"`
}

// analyzeOutput renders a batch report in every output format.
type analyzeOutput struct {
	report *funcgroup.BatchReport
	view   funcgroup.View
}

func newAnalyzeOutput(report *funcgroup.BatchReport, view funcgroup.View, format string) interface{} {
	out := &analyzeOutput{report: report, view: view}
	switch format {
	case OutputJSON, OutputYAML:
		return out.structured()
	}
	return out
}

// structured returns the value serialised by json and yaml output: the bare
// results, projected to the exact view when requested.
func (o *analyzeOutput) structured() interface{} {
	if o.view != funcgroup.ViewExact {
		return o.report.Results
	}
	out := make([]exactResult, 0, len(o.report.Results))
	for _, r := range o.report.Results {
		out = append(out, exactResult{
			Refcode:      r.Refcode,
			SMILES:       r.SMILES,
			ExactGroups:  r.ExactGroups,
			Rings:        r.Rings,
			AlcoholCount: r.AlcoholCount,
			AminoAcid:    r.AminoAcid,
		})
	}
	return out
}

func (o *analyzeOutput) TableHeaders() []string {
	return analysis.BuildTable(o.report.Results, o.view).Header()
}

func (o *analyzeOutput) TableRows() [][]string {
	return analysis.BuildTable(o.report.Results, o.view).Records()
}

func (o *analyzeOutput) Text() string {
	var sb strings.Builder
	for _, r := range o.report.Results {
		sb.WriteString(r.SMILES)
		if r.Refcode != "" {
			fmt.Fprintf(&sb, " [%s]", r.Refcode)
		}
		sb.WriteString("\n")
		if o.view != funcgroup.ViewExact {
			fmt.Fprintf(&sb, "  all:   %s\n", formatGroups(r.AllGroups))
		}
		fmt.Fprintf(&sb, "  exact: %s\n", formatGroups(r.ExactGroups))
		fmt.Fprintf(&sb, "  rings: aromatic=%d non-aromatic=%d  alcohols=%d  amino-acid=%t\n",
			r.Rings.Aromatic, r.Rings.NonAromatic, r.AlcoholCount, r.AminoAcid)
	}
	return sb.String()
}

// formatGroups renders counts as "Name=n" pairs sorted by name, or "-".
func formatGroups(groups map[string]int) string {
	if len(groups) == 0 {
		return "-"
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, groups[name])
	}
	return strings.Join(parts, " ")
}
