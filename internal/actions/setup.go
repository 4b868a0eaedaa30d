// Package actions contains the core business logic for results-store operations
package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opshield/resilreport/internal/clickhouse"
	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/migrations"
)

// Setup validates config and prepares the ClickHouse results store: it
// creates the database and applies the schema migrations.
func Setup(isInteractive, skipConfirm bool) error {
	// Load and validate config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if valErr := validateStoreConfig(cfg); valErr != nil {
		return valErr
	}

	// Show target info
	fmt.Println("\n📋 Setup Configuration:")
	fmt.Println("======================")
	fmt.Printf("Database:        %s\n", cfg.ClickhouseDatabase)
	fmt.Printf("ClickHouse Host: %s:%d\n", cfg.ClickhouseHost, cfg.ClickhouseNativePort)
	fmt.Printf("Username:        %s\n", cfg.ClickhouseUsername)
	if cfg.ClickhouseCluster != "" {
		fmt.Printf("Cluster:         %s\n", cfg.ClickhouseCluster)
	} else {
		fmt.Printf("Cluster:         (single-node)\n")
	}
	fmt.Println()

	// Handle confirmation for both TUI and CLI modes
	if !skipConfirm {
		if isInteractive {
			fmt.Printf("⚠️  You are about to set up the results store database: %s\n", strings.ToUpper(cfg.ClickhouseDatabase))
			fmt.Println("This will create the database if it doesn't exist.")
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

	// Connect to ClickHouse
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

	// Create database
	fmt.Printf("\n📦 Creating database '%s' if it doesn't exist...\n", cfg.ClickhouseDatabase)
	if err := clickhouse.CreateDatabase(conn, cfg.ClickhouseDatabase, cfg.ClickhouseCluster); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	fmt.Printf("✅ Database '%s' is ready!\n", cfg.ClickhouseDatabase)

	// Run migrations
	fmt.Printf("\n🔄 Running schema migrations...\n")
	if err := migrations.PrepareAndRun(cfg); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	fmt.Println("\n🎉 Setup completed successfully!")
	return nil
}

var (
	// ErrDatabaseNotSet is returned when the results-store database is not configured
	ErrDatabaseNotSet = errors.New("results-store database is not set")
	// ErrDatabaseReserved is returned when the configured database is a ClickHouse built-in
	ErrDatabaseReserved = errors.New("results-store database cannot be 'default' or 'system' - please configure a dedicated database name")
	// ErrHostNotSet is returned when the ClickHouse host is not configured
	ErrHostNotSet = errors.New("ClickHouse host is not set")
	// ErrPortNotSet is returned when the ClickHouse port is not configured
	ErrPortNotSet = errors.New("ClickHouse native port is not set")
	// ErrUsernameNotSet is returned when the ClickHouse username is not configured
	ErrUsernameNotSet = errors.New("ClickHouse username is not set")
)

// validateStoreConfig checks if the configuration is valid for store operations
func validateStoreConfig(cfg *config.AppConfig) error {
	// Check database name
	if cfg.ClickhouseDatabase == "" {
		return ErrDatabaseNotSet
	}
	if cfg.ClickhouseDatabase == "default" || cfg.ClickhouseDatabase == "system" {
		return ErrDatabaseReserved
	}

	// Check ClickHouse host
	if cfg.ClickhouseHost == "" {
		return ErrHostNotSet
	}

	// Check ClickHouse native port
	if cfg.ClickhouseNativePort == 0 {
		return ErrPortNotSet
	}

	// Check username
	if cfg.ClickhouseUsername == "" {
		return ErrUsernameNotSet
	}

	return nil
}
