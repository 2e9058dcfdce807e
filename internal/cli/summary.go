package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/pkg/tui/theme"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show how the loaded wells performed",
	RunE:  runSummary,
}

var summaryJSON bool

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		if _, err := a.LoadWells(ctx); err != nil {
			return err
		}
		sum := a.Service.Summary()

		if summaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		printSummary(cmd.OutOrStdout(), sum)
		return nil
	})
}

func printSummary(w io.Writer, sum domain.DatasetSummary) {
	s := theme.Default()

	fmt.Fprintln(w, s.Subtitle.Render("Dataset"))
	fmt.Fprintf(w, "  Wells analyzed:  %d\n", sum.TotalWells)
	fmt.Fprintf(w, "  Data points:     %d\n", sum.TotalDataPoints)
	fmt.Fprintf(w, "  Average max OD:  %.3f\n", sum.AverageMaxOD)
	if sum.BestWell != "" {
		fmt.Fprintf(w, "  Best well:       %s (%.3f)\n", sum.BestWell, sum.BestMaxOD)
		fmt.Fprintf(w, "  Worst well:      %s (%.3f)\n", sum.WorstWell, sum.WorstMaxOD)
	}

	if opt := sum.Optimal; opt != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Subtitle.Render("Model optimum"))
		fmt.Fprintf(w, "  Mix cycles:  %.1f\n", opt.MixCycles)
		fmt.Fprintf(w, "  Mix height:  %.1f mm\n", opt.MixHeight)
		fmt.Fprintf(w, "  Mix volume:  %.1f µL\n", opt.MixVolume)
		fmt.Fprintf(w, "  Confidence:  %.3f\n", opt.Confidence)
	}
}
