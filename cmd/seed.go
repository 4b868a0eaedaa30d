package cmd

import (
	"fmt"

	"github.com/opshield/resilreport/internal/actions"
	"github.com/spf13/cobra"
)

var (
	forceSeed bool
)

var storeSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed file fixtures into the results store",
	Long: `Loads the file-backed fixtures referenced by the report config into the
ClickHouse results store. After seeding, the same metrics can be served from
clickhouse://records/<metric> and clickhouse://compliance locations.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		// For CLI mode, we pass skipConfirm=true if --force is used
		// Otherwise the action will just show the config and return
		if !forceSeed {
			// First call to show config
			if err := actions.Seed(false, false); err != nil {
				return err
			}
			fmt.Println("\nUse --force flag to proceed with seeding")
			return nil
		}

		// Run the actual seeding
		if err := actions.Seed(false, true); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		return nil
	},
}

func init() {
	storeSeedCmd.Flags().BoolVarP(&forceSeed, "force", "f", false, "Skip confirmation and proceed with seeding")
	// Command is added to storeCmd in store.go
}
