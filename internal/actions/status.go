package actions

import (
	"context"
	"fmt"

	"github.com/opshield/resilreport/internal/clickhouse"
	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/migrations"
)

// Status reports the state of the results store: connectivity, schema
// version and stored row counts.
func Status() error {
	// Load and validate config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if valErr := validateStoreConfig(cfg); valErr != nil {
		return valErr
	}

	fmt.Println("\n📋 Results Store Status:")
	fmt.Println("=======================")
	fmt.Printf("ClickHouse Host: %s:%d\n", cfg.ClickhouseHost, cfg.ClickhouseNativePort)
	fmt.Printf("Database:        %s\n", cfg.ClickhouseDatabase)
	fmt.Println()

	// Test connection
	fmt.Println("🔌 Testing ClickHouse connection...")
	if testErr := clickhouse.TestConnection(cfg); testErr != nil {
		return fmt.Errorf("connection test failed: %w", testErr)
	}
	fmt.Println("✅ Connection successful!")

	// Migration status
	version, dirty, err := migrations.GetMigrationStatus(cfg)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	if version == 0 {
		fmt.Println("\nℹ️  No migrations applied yet (run 'resilreport store setup')")
		return nil
	}

	if dirty {
		fmt.Printf("\n⚠️  Schema version %d is dirty - the last migration did not complete\n", version)
	} else {
		fmt.Printf("\n✅ Schema version: %d\n", version)
	}

	// Row counts for the stored tables
	conn, err := clickhouse.ConnectDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close connection: %v\n", closeErr)
		}
	}()

	ctx := context.Background()
	for _, table := range []string{config.RecordsTable, config.ComplianceTable} {
		var count uint64
		query := fmt.Sprintf("SELECT count() FROM `%s`.`%s`", cfg.ClickhouseDatabase, table)
		if scanErr := conn.QueryRow(ctx, query).Scan(&count); scanErr != nil {
			fmt.Printf("⚠️  %-20s (unavailable: %v)\n", table, scanErr)
			continue
		}
		fmt.Printf("📊 %-20s %d rows\n", table, count)
	}

	return nil
}
