package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/opshield/resilreport/cmd"
	"github.com/opshield/resilreport/internal/actions"
	"github.com/opshield/resilreport/internal/interactive"
)

func runInteractive() {
	fmt.Println("Resilreport - Interactive Mode")
	fmt.Println("==============================")
	fmt.Println()

	for {
		options := []interactive.MenuOption{
			{
				Name:        "📊 Generate Report",
				Description: "Evaluate test runs against goals and print the report",
				Action:      runReportInteractive,
			},
			{
				Name:        "🔍 Probe Sources",
				Description: "Fetch and validate every configured source once",
				Action:      runProbeInteractive,
			},
			{
				Name:        "🗄️  Store Management",
				Description: "Setup, seed, inspect and teardown the results store",
				Action:      showStoreMenu,
			},
			{
				Name:        "📋 Show Config",
				Description: "Display current environment configuration",
				Action: func() error {
					if err := actions.ShowConfig(); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
		}

		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				fmt.Println("Goodbye!")
				return
			}
			log.Fatal(err)
		}

		fmt.Println()
	}
}

func runReportInteractive() error {
	verbose := interactive.Confirm("Enable verbose output?")
	showSources := interactive.Confirm("Show the per-source load table after the report?")

	if err := cmd.RunReport(context.Background(), cmd.ReportOptions{
		Verbose:     verbose,
		ShowSources: showSources,
	}); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
	}

	interactive.PauseForEnter()
	return nil
}

func runProbeInteractive() error {
	verbose := interactive.Confirm("Enable verbose output?")

	if err := cmd.RunProbe(context.Background(), cmd.ProbeOptions{
		Verbose: verbose,
	}); err != nil {
		fmt.Printf("\n❌ Error: %v\n", err)
	}

	interactive.PauseForEnter()
	return nil
}

func showStoreMenu() error {
	for {
		options := []interactive.MenuOption{
			{
				Name:        "Setup",
				Description: "Validate config and setup the results store (safe to run multiple times)",
				Action: func() error {
					if err := actions.Setup(true, false); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
						interactive.PauseForEnter()
						return nil
					}

					if !interactive.Confirm("Do you want to proceed with the setup?") {
						fmt.Println("Setup canceled.")
						interactive.PauseForEnter()
						return nil
					}

					if err := actions.Setup(true, true); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
						interactive.PauseForEnter()
						return nil
					}

					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "Seed",
				Description: "Load file fixtures from the report config into the results store",
				Action: func() error {
					if err := actions.Seed(true, false); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
						interactive.PauseForEnter()
						return nil
					}

					if !interactive.Confirm("Do you want to proceed with seeding?") {
						fmt.Println("Seeding canceled.")
						interactive.PauseForEnter()
						return nil
					}

					if err := actions.Seed(true, true); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
						interactive.PauseForEnter()
						return nil
					}

					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "Status",
				Description: "Show schema version and stored row counts",
				Action: func() error {
					if err := actions.Status(); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
					}
					interactive.PauseForEnter()
					return nil
				},
			},
			{
				Name:        "Teardown",
				Description: "Drop the results-store database (destructive)",
				Action: func() error {
					if err := actions.Teardown(true, false); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
						interactive.PauseForEnter()
						return nil
					}

					if !interactive.Confirm("⚠️  Are you SURE you want to drop the database? This cannot be undone!") {
						fmt.Println("Teardown canceled.")
						interactive.PauseForEnter()
						return nil
					}

					if err := actions.Teardown(true, true); err != nil {
						fmt.Printf("\n❌ Error: %v\n", err)
						interactive.PauseForEnter()
						return nil
					}

					interactive.PauseForEnter()
					return nil
				},
			},
		}

		fmt.Println("\n🗄️  Store Management")
		fmt.Println("===================")
		if err := interactive.ShowMainMenu(options); err != nil {
			if errors.Is(err, interactive.ErrExit) {
				return nil // Return to main menu
			}
			return err
		}
	}
}
