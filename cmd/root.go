package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version   = "0.1.0"
	buildDate = "2023-01-02T03:04+0000"
)

var rootCmd = &cobra.Command{
	Use:   "snappipe",
	Short: "Snappipe streams daily table snapshots from Postgres to S3 and the warehouse.",
	Long: `Snappipe dumps operational Postgres tables to S3 as newline-delimited JSON,
one date-partitioned blob per table per day, then bulk-loads the blobs into the
warehouse in a single transaction. All configuration comes from SNAP_* environment
variables so it runs unattended from a scheduler; see the run command for the full list.`,
}

func init() {
	cobra.EnableCommandSorting = false
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
