package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  growthlab migrate      # Run all pending migrations
  growthlab migrate 1    # Migrate to version 1
  growthlab migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		db, err := a.OpenDB()
		if err != nil {
			return err
		}
		defer db.Close()

		m := migrate.New(db, cmd.OutOrStdout())
		if target < 0 {
			n, err := m.Up(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations")
			}
			return nil
		}
		return m.To(ctx, target)
	})
}
