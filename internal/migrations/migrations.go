// Package migrations handles results-store schema migrations
package migrations

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse" // clickhouse driver for migrations
	_ "github.com/golang-migrate/migrate/v4/source/file"         // file source driver for migrations
	"github.com/opshield/resilreport/internal/config"
)

// PrepareAndRun substitutes the database and cluster placeholders in the
// migration files and applies any pending migrations.
func PrepareAndRun(cfg *config.AppConfig) error {
	// Create temp directory for processed migrations
	tempDir, err := os.MkdirTemp("", "resilreport-migrations-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir) // Clean up temp dir when done
	}()

	// Copy and process migration files
	if procErr := processMigrationFiles(config.MigrationsDir, tempDir, cfg); procErr != nil {
		return fmt.Errorf("failed to process migration files: %w", procErr)
	}

	// Build connection string for golang-migrate
	connStr := buildConnectionString(cfg)

	// Create migration instance
	m, err := migrate.New(
		fmt.Sprintf("file://%s", tempDir),
		connStr,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		if _, closeErr := m.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close migration instance: %v\n", closeErr)
		}
	}()

	// Run migrations up
	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", upErr)
	}

	if upErr != nil && errors.Is(upErr, migrate.ErrNoChange) {
		fmt.Println("ℹ️  No new migrations to apply")
	} else {
		// Get the current version to show what was applied
		version, dirty, vErr := m.Version()
		if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get migration version: %w", vErr)
		}
		if !dirty {
			fmt.Printf("✅ Migrations applied successfully (current version: %d)\n", version)
		}
	}

	return nil
}

// processMigrationFiles copies migration files from source to dest,
// substituting ${DATABASE_NAME} and ${ON_CLUSTER}.
func processMigrationFiles(sourceDir, destDir string, cfg *config.AppConfig) error {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	clusterClause := ""
	if cfg.ClickhouseCluster != "" {
		clusterClause = fmt.Sprintf("ON CLUSTER '%s'", cfg.ClickhouseCluster)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Only process .sql files
		if !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		sourcePath := filepath.Join(sourceDir, entry.Name())
		destPath := filepath.Join(destDir, entry.Name())

		// #nosec G304 -- sourcePath is constructed from known directory
		content, err := os.ReadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", sourcePath, err)
		}

		processed := strings.ReplaceAll(string(content), "${DATABASE_NAME}", cfg.ClickhouseDatabase)
		processed = strings.ReplaceAll(processed, "${ON_CLUSTER}", clusterClause)

		if err := os.WriteFile(destPath, []byte(processed), 0o600); err != nil {
			return fmt.Errorf("failed to write file %s: %w", destPath, err)
		}
	}

	return nil
}

// buildConnectionString builds the ClickHouse connection string for golang-migrate
func buildConnectionString(cfg *config.AppConfig) string {
	connStr := fmt.Sprintf("clickhouse://%s:%d?username=%s&database=%s&x-multi-statement=true",
		cfg.ClickhouseHost,
		cfg.ClickhouseNativePort,
		cfg.ClickhouseUsername,
		cfg.ClickhouseDatabase,
	)

	// Add password if set
	if cfg.ClickhousePassword != "" {
		connStr += fmt.Sprintf("&password=%s", cfg.ClickhousePassword)
	}

	// Add cluster configuration if set
	if cfg.ClickhouseCluster != "" {
		// For clustered setup, use ReplicatedMergeTree for the migrations table
		connStr += fmt.Sprintf("&x-cluster-name=%s&x-migrations-table-engine=ReplicatedMergeTree", cfg.ClickhouseCluster)
	} else {
		connStr += "&x-migrations-table-engine=MergeTree"
	}

	return connStr
}

// GetMigrationStatus returns the current migration version and dirty state
func GetMigrationStatus(cfg *config.AppConfig) (version uint, dirty bool, err error) {
	tempDir, err := os.MkdirTemp("", "resilreport-migrations-status-*")
	if err != nil {
		return 0, false, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	if procErr := processMigrationFiles(config.MigrationsDir, tempDir, cfg); procErr != nil {
		return 0, false, fmt.Errorf("failed to process migration files: %w", procErr)
	}

	connStr := buildConnectionString(cfg)

	m, mErr := migrate.New(
		fmt.Sprintf("file://%s", tempDir),
		connStr,
	)
	if mErr != nil {
		return 0, false, fmt.Errorf("failed to create migration instance: %w", mErr)
	}
	defer func() {
		if _, closeErr := m.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close migration instance: %v\n", closeErr)
		}
	}()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		// No migrations applied yet
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty, nil
}
