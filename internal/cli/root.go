package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "growthlab",
	Short: "Bacterial growth dashboard and passaging optimizer",
	Long: `growthlab loads OD600 growth curves per well, aligns them on a shared time axis,
and recommends mixing parameters for the next passage.

Configuration is read from GROWTHLAB_* environment variables; flags override them.`,
	SilenceUsage: true,
}

// Global flags
var (
	logLevel     string
	dataLocation string
	modelPath    string
	wellList     []string
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&dataLocation, "data", "", "Well CSV location with %s for the well ID (path, http(s):// or gs://)")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "Correlation model JSON")
	rootCmd.PersistentFlags().StringSliceVar(&wellList, "wells", nil, "Wells to load (default: plate layout)")
}
