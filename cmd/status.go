package cmd

import (
	"fmt"

	"github.com/opshield/resilreport/internal/actions"
	"github.com/spf13/cobra"
)

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show results-store schema version and row counts",
	Long: `Shows the state of the ClickHouse results store:
- Connection health
- Applied schema migration version
- Row counts for the stored tables`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := actions.Status(); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		return nil
	},
}
