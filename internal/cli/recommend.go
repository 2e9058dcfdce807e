package cli

import (
	"context"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/app/tui"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend mixing parameters for the next passage",
	Long: `Generate a parameter recommendation and its predicted growth curve.

With --interactive the recommendation can be accepted, rejected or retried;
accepted parameters steer later recommendations for the rest of the session.

Examples:
  growthlab recommend
  growthlab recommend --json
  growthlab recommend --interactive`,
	RunE: runRecommend,
}

var (
	recommendInteractive bool
	recommendJSON        bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().BoolVarP(&recommendInteractive, "interactive", "i", false, "Accept, reject or retry in a terminal UI")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print the recommendation as JSON")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		if _, err := a.LoadWells(ctx); err != nil {
			return err
		}

		if recommendInteractive {
			p := tea.NewProgram(tui.NewRecommender(ctx, a.Service), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run interactive recommender: %w", err)
			}
			return nil
		}

		rec := a.Service.Recommend(ctx)
		out := cmd.OutOrStdout()
		if recommendJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		fmt.Fprintln(out, tui.RenderRecommendation(rec))
		return nil
	})
}
