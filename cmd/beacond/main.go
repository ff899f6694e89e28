package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vireolabs/beacon/cmd/beacond/commands"
	"github.com/vireolabs/beacon/logger"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "beacond",
	Short: "beacond - genomic beacon with tiered dataset access",
	Long: `beacond - genomic variant beacon with tiered dataset access.

beacond answers genomic variant queries against a catalogue of datasets
classified as PUBLIC, REGISTERED, or CONTROLLED, resolving per-request
visibility from GA4GH passports and visas.

Available commands:
  serve    - Start the beacon API server
  migrate  - Apply database migrations
  datasets - Manage the dataset catalogue
  version  - Print the build version

Examples:
  beacond serve                          # Start the API server
  beacond migrate                        # Apply pending migrations
  beacond datasets list                  # Show the dataset catalogue
  beacond datasets add DS1 PUBLIC        # Register a public dataset`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON structured logs")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.DatasetsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
