package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export growth data as CSV or PNG",
	Long: `Export the aligned growth curves or a predicted curve.

Examples:
  growthlab export timeline                         # bacterial_growth_data.csv
  growthlab export timeline --png                   # bacterial_growth_chart.png
  growthlab export predicted --out prediction.csv   # predicted_growth_data.csv
  growthlab export timeline --out -                 # CSV to stdout`,
}

var exportTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Export the measured growth curves",
	RunE:  runExportTimeline,
}

var exportPredictedCmd = &cobra.Command{
	Use:   "predicted",
	Short: "Generate a recommendation and export its predicted curve",
	RunE:  runExportPredicted,
}

// Flags
var (
	exportOutput string
	exportPNG    bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportTimelineCmd)
	exportCmd.AddCommand(exportPredictedCmd)

	exportCmd.PersistentFlags().StringVarP(&exportOutput, "out", "o", "", "Output file, - for stdout (default: standard download name)")
	exportCmd.PersistentFlags().BoolVar(&exportPNG, "png", false, "Export the chart as PNG instead of CSV")
}

func runExportTimeline(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		if _, err := a.LoadWells(ctx); err != nil {
			return err
		}
		if exportPNG {
			return writeOutput(cmd, export.TimelinePNGName, a.Service.RenderTimeline)
		}
		return writeOutput(cmd, export.TimelineCSVName, a.Service.ExportTimelineCSV)
	})
}

func runExportPredicted(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		if _, err := a.LoadWells(ctx); err != nil {
			return err
		}
		a.Service.Recommend(ctx)
		if exportPNG {
			return writeOutput(cmd, export.PredictionPNGName, a.Service.RenderPrediction)
		}
		return writeOutput(cmd, export.PredictionCSVName, a.Service.ExportPredictionCSV)
	})
}

func writeOutput(cmd *cobra.Command, defaultName string, write func(io.Writer) error) error {
	path := exportOutput
	if path == "" {
		path = defaultName
	}
	if path == "-" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}
