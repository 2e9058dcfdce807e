package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/adapters/modelfile"
	"github.com/emiliopalmerini/growthlab/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the correlation model from measured wells",
	Long: `Detect each well's exponential growth phase, correlate it with the mixing
parameters the well was passaged with, and write the correlation model used
by "growthlab recommend" and the dashboard.

Parameter files are CSVs with destination_well, mix_reps, mix_volume_uL and
mix_height_mm columns; later files override earlier ones for the same well.

Examples:
  growthlab analyze --params exp1.csv --params exp2.csv
  growthlab analyze --params gs://plates/exp1.csv --out model.json`,
	RunE: runAnalyze,
}

var (
	analyzeParams []string
	analyzeOutput string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringSliceVar(&analyzeParams, "params", nil, "Parameter CSV files (default: GROWTHLAB_PARAMETER_FILES)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Model output path (default: the configured model path)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		files := a.Config.ParameterFiles
		if len(analyzeParams) > 0 {
			files = analyzeParams
		}
		if len(files) == 0 {
			return fmt.Errorf("no parameter files given, use --params or GROWTHLAB_PARAMETER_FILES")
		}

		experiments := make([][]analysis.ParameterRow, 0, len(files))
		for _, path := range files {
			rows, err := readParameterFile(ctx, a, path)
			if err != nil {
				return err
			}
			experiments = append(experiments, rows)
		}

		ds, err := a.LoadWells(ctx)
		if err != nil {
			return err
		}

		report, err := analysis.NewBuilder(a.Logger, a.Config.ReferenceWell).Build(ds, analysis.MapWells(experiments...))
		if err != nil {
			return fmt.Errorf("failed to build model: %w", err)
		}

		out := analyzeOutput
		if out == "" {
			out = a.Config.ModelPath
		}
		if err := modelfile.Save(out, modelfile.FromReport(report)); err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}

		printReport(cmd.OutOrStdout(), report)
		fmt.Fprintf(cmd.OutOrStdout(), "\nModel written to %s\n", out)
		return nil
	})
}

func readParameterFile(ctx context.Context, a *AppContext, path string) ([]analysis.ParameterRow, error) {
	rc, err := a.Opener.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter file %s: %w", path, err)
	}
	defer func() { _ = rc.Close() }()

	rows, err := analysis.ReadParameters(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}
	return rows, nil
}

func printReport(w io.Writer, r *analysis.Report) {
	fmt.Fprintf(w, "Wells with a growth phase: %d\n\n", len(r.Wells))
	fmt.Fprintf(w, "%-6s %-7s %-7s %-7s %-8s %-9s\n", "WELL", "CYCLES", "VOLUME", "HEIGHT", "SCORE", "DOUBLING")
	for i, well := range r.Wells {
		if i == analysis.TopWells {
			break
		}
		fmt.Fprintf(w, "%-6s %-7d %-7d %-7.1f %-8.4f %-9.2f\n",
			well.WellID,
			well.Parameters.MixCycles,
			well.Parameters.MixVolume,
			well.Parameters.MixHeight,
			well.Growth.Phase.GrowthScore,
			well.Growth.Phase.DoublingTime)
	}

	fmt.Fprintf(w, "\nOptimum: %.1f cycles, %.1f mm, %.1f µL (confidence %.3f)\n",
		r.Optimal.MixCycles, r.Optimal.MixHeight, r.Optimal.MixVolume, r.Optimal.Confidence)

	if r.Reference.Found {
		fmt.Fprintf(w, "Reference well %s: rank %d, doubling time %.2f h\n",
			r.Reference.WellID, r.Reference.Rank, r.Reference.Performance.Growth.Phase.DoublingTime)
	} else {
		fmt.Fprintf(w, "Reference well %s: no growth phase\n", r.Reference.WellID)
	}
}
