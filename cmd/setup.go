package cmd

import (
	"fmt"

	"github.com/opshield/resilreport/internal/actions"
	"github.com/spf13/cobra"
)

var (
	forceSetup bool
)

var storeSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Setup the ClickHouse results store",
	Long: `Validates configuration and sets up the ClickHouse results store.
This command will:
- Validate your configuration
- Test the ClickHouse connection
- Create the results-store database if it doesn't exist
- Run schema migrations`,
	RunE: func(_ *cobra.Command, _ []string) error {
		// For CLI mode, we pass skipConfirm=true if --force is used
		// Otherwise the action will just show the config and return
		if !forceSetup {
			// First call to show config
			if err := actions.Setup(false, false); err != nil {
				return err
			}
			fmt.Println("\nUse --force flag to proceed with setup")
			return nil
		}

		// Run the actual setup
		if err := actions.Setup(false, true); err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}
		return nil
	},
}

func init() {
	storeSetupCmd.Flags().BoolVarP(&forceSetup, "force", "f", false, "Skip confirmation and proceed with setup")
	// Command is added to storeCmd in store.go
}
