package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/adapters/turso"
	"github.com/emiliopalmerini/growthlab/internal/domain"
	"github.com/emiliopalmerini/growthlab/internal/migrate"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store the loaded well readings in the database",
	Long: `Load the configured wells and store their readings in the database,
replacing any readings previously stored for the same wells.

Pending migrations are applied first.

Examples:
  growthlab import
  GROWTHLAB_DATABASE_URL=libsql://plates.turso.io growthlab import --data gs://plates/well_%s.csv`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		db, err := a.OpenDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migrate.RunAll(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		ds, err := a.LoadWells(ctx)
		if err != nil {
			return err
		}

		repo := turso.NewDatasetRepository(db)
		for _, id := range ds.WellIDs() {
			if err := repo.ReplaceWell(ctx, id, ds[id]); err != nil {
				return fmt.Errorf("failed to store well %s: %w", id, err)
			}
		}

		rec := &domain.ImportRecord{
			Source:     a.Config.DataLocation,
			Wells:      len(ds),
			Points:     ds.PointCount(),
			ImportedAt: time.Now().UTC(),
		}
		if err := repo.RecordImport(ctx, rec); err != nil {
			return fmt.Errorf("failed to record import: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d wells (%d readings) as import #%d\n", rec.Wells, rec.Points, rec.ID)
		return nil
	})
}
