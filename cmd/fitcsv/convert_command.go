package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fitcsv/internal/config"
	"fitcsv/internal/convert"
	"fitcsv/internal/macro"
)

// conversionFlags are shared by convert and batch.
type conversionFlags struct {
	sorted              bool
	sortIndex           int
	acceptanceCorrected bool
	massBranch          string
	treeName            string
	mesonIndex          string
	preview             bool
	verbose             bool
	fsroot              bool
}

func (f *conversionFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&f.sorted, "sorted", "s", true, "Sort inputs by the numeric key in each path so CSV rows follow the binning")
	flags.IntVar(&f.sortIndex, "sort-index", -1, "Which number in the path to sort by (negative counts from the end)")
	flags.BoolVarP(&f.acceptanceCorrected, "acceptance-corrected", "a", false, "Report acceptance-corrected (generated) intensities for fit files")
	flags.StringVarP(&f.massBranch, "mass-branch", "m", "", "Mass branch name in ROOT data files (default from config, M4Pi)")
	flags.StringVar(&f.treeName, "tree-name", "", "FSRoot tree name (default from config, ntFSGlueX_100_221)")
	flags.StringVar(&f.treeName, "nt", "", "Alias for --tree-name")
	flags.StringVar(&f.mesonIndex, "meson-index", "", "FSRoot meson particle indices (default from config, 2,3,4,5)")
	flags.StringVar(&f.mesonIndex, "mi", "", "Alias for --meson-index")
	flags.BoolVarP(&f.preview, "preview", "p", false, "Print the files that would be processed and exit")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Stream engine output to stdout")
	flags.BoolVarP(&f.fsroot, "fsroot", "f", false, "ROOT files use the FSRoot tree layout")
}

// options merges explicit flags over config defaults.
func (f *conversionFlags) options(cmd *cobra.Command, cfg *config.Config) macro.Options {
	opts := macro.DefaultOptions(cfg)
	flags := cmd.Flags()
	if flags.Changed("sorted") {
		opts.Sort = f.sorted
	}
	if flags.Changed("sort-index") {
		opts.SortIndex = f.sortIndex
	}
	if f.massBranch != "" {
		opts.MassBranch = f.massBranch
	}
	if f.treeName != "" {
		opts.TreeName = f.treeName
	}
	if f.mesonIndex != "" {
		opts.MesonIndex = f.mesonIndex
	}
	opts.AcceptanceCorrected = f.acceptanceCorrected
	opts.Preview = f.preview
	opts.Verbose = f.verbose
	opts.FSRoot = f.fsroot
	return opts
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags conversionFlags
	var inputs []string
	var output string

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert .fit or .root files to a CSV",
		Long: `Convert AmpTools .fit results or the ROOT data files behind them into one CSV.

Inputs are given with --input and/or as arguments. All inputs must share one
type. A single argument that is neither .fit nor .root is read as a text file
listing one input path per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			conv, cleanup, err := ctx.converter(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := flags.options(cmd, cfg)
			opts.Output = output
			result, err := conv.Run(cmd.Context(), append(append([]string(nil), inputs...), args...), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Plan.Preview() {
				fmt.Fprintln(out, renderPlan(result.Plan))
				return nil
			}
			printConversionSummary(out, result)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Input file, or a text file listing inputs (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV name (default fits.csv or data.csv by type)")
	flags.register(cmd)
	return cmd
}

func renderPlan(plan macro.Plan) string {
	rows := make([][]string, 0, len(plan.Files))
	for i, file := range plan.Files {
		rows = append(rows, []string{strconv.Itoa(i), file})
	}
	kind := string(plan.Kind)
	if plan.Format != "" {
		kind += "/" + string(plan.Format)
	}
	return tableView{
		title:   fmt.Sprintf("Preview: %d %s file(s)", len(plan.Files), kind),
		headers: []string{"Row", "File"},
		rows:    rows,
		aligns:  []columnAlignment{alignRight, alignLeft},
		footer:  "Output: " + plan.Output,
	}.render()
}

func printConversionSummary(out io.Writer, result convert.Result) {
	plan := result.Plan
	fmt.Fprintf(out, "Wrote %s from %d %s file(s)", plan.Output, len(plan.Files), plan.Kind)
	if result.Engine != nil {
		fmt.Fprintf(out, " in %s", result.Engine.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(out)
	if plan.Invocation != nil {
		fmt.Fprintf(out, "Manifest: %s\n", plan.Invocation.Manifest)
	}
}
