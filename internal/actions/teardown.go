package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/opshield/resilreport/internal/clickhouse"
	"github.com/opshield/resilreport/internal/config"
)

var (
	// ErrHostnameValidationFailed is returned when hostname validation fails for safety reasons.
	ErrHostnameValidationFailed = errors.New("hostname validation failed - operation blocked for safety")
)

// Teardown validates config and drops the ClickHouse results-store database
func Teardown(isInteractive, skipConfirm bool) error {
	// Load and validate config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Validate config
	if valErr := validateStoreConfig(cfg); valErr != nil {
		return valErr
	}

	// Show target info
	fmt.Println("\n⚠️  Teardown Configuration:")
	fmt.Println("========================")
	fmt.Printf("ClickHouse Host: %s:%d\n", cfg.ClickhouseHost, cfg.ClickhouseNativePort)
	fmt.Printf("Username:        %s\n", cfg.ClickhouseUsername)
	fmt.Printf("Database Name:   %s\n", cfg.ClickhouseDatabase)
	if cfg.ClickhouseCluster != "" {
		fmt.Printf("Cluster:         %s\n", cfg.ClickhouseCluster)
	} else {
		fmt.Printf("Cluster:         (single-node)\n")
	}
	fmt.Println()

	// Handle confirmation for both TUI and CLI modes
	if !skipConfirm {
		if isInteractive {
			fmt.Printf("🗑️  You are about to DROP the results-store database: %s\n", strings.ToUpper(cfg.ClickhouseDatabase))
			fmt.Println("⚠️  WARNING: This will permanently delete ALL stored test-run records and compliance checks!")
		}
		// Return here so the caller can handle confirmation
		return nil
	}

	// Test connection
	fmt.Println("🔌 Testing ClickHouse connection...")
	if testErr := clickhouse.TestConnection(cfg); testErr != nil {
		return fmt.Errorf("connection test failed: %w", testErr)
	}
	fmt.Println("✅ Connection successful!")

	// Connect to ClickHouse (using default database)
	fmt.Println("\n🔗 Connecting to ClickHouse...")
	conn, err := clickhouse.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close connection: %v\n", closeErr)
		}
	}()

	// Validate hostname before allowing destructive operations
	fmt.Println("🔒 Validating hostname safety...")
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel) // Only show warnings and errors for teardown
	guard := clickhouse.NewHostGuard(cfg.SafeHostnames, log)

	ctx := context.Background()
	err = guard.Validate(ctx, conn)
	if err != nil {
		fmt.Println() // Blank line before warning
		displayHostnameValidationError(err, cfg.SafeHostnames)
		return ErrHostnameValidationFailed
	}
	fmt.Println("✅ Hostname validated successfully!")

	// Check if database exists
	var dbExists uint64
	checkQuery := fmt.Sprintf("SELECT count() FROM system.databases WHERE name = '%s'", cfg.ClickhouseDatabase)
	if checkErr := conn.QueryRow(context.Background(), checkQuery).Scan(&dbExists); checkErr != nil {
		return fmt.Errorf("failed to check if database exists: %w", checkErr)
	}

	if dbExists == 0 {
		fmt.Printf("ℹ️  Database '%s' does not exist, nothing to teardown\n", cfg.ClickhouseDatabase)
		fmt.Println("\n✅ Teardown completed successfully!")
		return nil
	}

	// Drop the database
	fmt.Printf("\n🗑️  Dropping database '%s'...\n", cfg.ClickhouseDatabase)
	if err := clickhouse.DropDatabase(conn, cfg.ClickhouseDatabase, cfg.ClickhouseCluster); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	fmt.Printf("✅ Database '%s' has been dropped!\n", cfg.ClickhouseDatabase)

	fmt.Println("\n✅ Teardown completed successfully!")
	return nil
}

// displayHostnameValidationError displays a big red warning box when hostname validation fails
func displayHostnameValidationError(err error, whitelist []string) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	// Extract hostname from error message if possible
	errMsg := err.Error()
	hostname := "UNKNOWN"
	if strings.Contains(errMsg, "host '") {
		parts := strings.Split(errMsg, "host '")
		if len(parts) > 1 {
			hostParts := strings.Split(parts[1], "'")
			if len(hostParts) > 0 {
				hostname = hostParts[0]
			}
		}
	}

	// Print header box, then content without borders
	fmt.Println(red("╔════════════════════════════════════════════════════════════════════╗"))
	fmt.Println(red("║         🚨  HOSTNAME VALIDATION FAILED  🚨                         ║"))
	fmt.Println(red("╚════════════════════════════════════════════════════════════════════╝"))
	fmt.Println(red(""))
	fmt.Println(red("  ⚠️  Non-whitelisted ClickHouse host detected!"))
	fmt.Println(red(""))
	fmt.Println(red("  Blocked Hostname: " + hostname))
	fmt.Println(red(""))
	fmt.Println(red("  Check for active port-forwards or SSH tunnels:"))
	fmt.Println(red("    • kubectl port-forward"))
	fmt.Println(red("    • ssh -L (local tunnels)"))
	fmt.Println(red("    • VPN/bastion connections"))
	fmt.Println(red(""))
	fmt.Println(red("  Current Whitelist: " + fmt.Sprintf("%v", whitelist)))
	fmt.Println(red(""))
	fmt.Println(red("  To allow, set environment variable:"))
	newWhitelist := append(append([]string{}, whitelist...), hostname)
	exportCmd := fmt.Sprintf("RESILREPORT_SAFE_HOSTS=%q", strings.Join(newWhitelist, ","))
	fmt.Println(red("    " + exportCmd))
	fmt.Println()
}
