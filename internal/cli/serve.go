package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/growthlab/internal/adapters/turso"
	"github.com/emiliopalmerini/growthlab/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Load the wells and start the web dashboard server.

Examples:
  growthlab serve              # Start on the configured port (default 8080)
  growthlab serve --port 3000  # Start on port 3000
  growthlab serve --from-db    # Use readings stored by "growthlab import"`,
	RunE: runServe,
}

var (
	servePort   int
	serveFromDB bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default: GROWTHLAB_PORT)")
	serveCmd.Flags().BoolVar(&serveFromDB, "from-db", false, "Load readings from the database instead of the data location")
}

func runServe(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *AppContext) error {
		if serveFromDB {
			db, err := a.OpenDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := a.Service.LoadFromRepository(ctx, turso.NewDatasetRepository(db)); err != nil {
				return err
			}
		} else if _, err := a.LoadWells(ctx); err != nil {
			return err
		}

		port := a.Config.Port
		if servePort != 0 {
			port = servePort
		}

		// Create context that cancels on interrupt
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("\nShutting down...")
			cancel()
		}()

		server := web.NewServer(a.Service, port, a.Logger)
		return server.Start(ctx)
	})
}
