package cmd

import (
	"fmt"

	"github.com/opshield/resilreport/internal/actions"
	"github.com/spf13/cobra"
)

var (
	forceTeardown bool
)

var storeTeardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Teardown the ClickHouse results store",
	Long: `Validates configuration and drops the ClickHouse results-store database.
This command will:
- Validate your configuration
- Test the ClickHouse connection
- Verify the server hostname against RESILREPORT_SAFE_HOSTS
- DROP the results-store database and all its data

⚠️  WARNING: This will permanently delete all stored test-run records!`,
	RunE: func(_ *cobra.Command, _ []string) error {
		// For CLI mode, we pass skipConfirm=true if --force is used
		// Otherwise the action will just show the config and return
		if !forceTeardown {
			// First call to show config
			if err := actions.Teardown(false, false); err != nil {
				return err
			}
			fmt.Println("\n⚠️  WARNING: This will permanently delete all data in the database!")
			fmt.Println("Use --force flag to proceed with teardown")
			return nil
		}

		// Run the actual teardown
		if err := actions.Teardown(false, true); err != nil {
			return fmt.Errorf("teardown failed: %w", err)
		}
		return nil
	},
}

func init() {
	storeTeardownCmd.Flags().BoolVarP(&forceTeardown, "force", "f", false, "Skip confirmation and proceed with teardown")
	// Command is added to storeCmd in store.go
}
