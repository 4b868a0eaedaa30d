package cmd

import (
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Results-store management commands",
	Long:  `Commands for managing the ClickHouse results store including setup, seeding, status and teardown operations.`,
}

func init() {
	// Add subcommands
	storeCmd.AddCommand(storeSetupCmd)
	storeCmd.AddCommand(storeTeardownCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeSeedCmd)

	// Add to root
	rootCmd.AddCommand(storeCmd)
}
