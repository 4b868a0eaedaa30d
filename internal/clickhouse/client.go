// Package clickhouse provides results-store connection and management utilities
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/opshield/resilreport/internal/config"
)

// Connect establishes a connection to ClickHouse using native protocol.
// It connects to the "default" database so it works before the results-store
// database exists; use ConnectDatabase for record reads and writes.
func Connect(cfg *config.AppConfig) (driver.Conn, error) {
	return connect(cfg, "default")
}

// ConnectDatabase establishes a connection scoped to the results-store database.
func ConnectDatabase(cfg *config.AppConfig) (driver.Conn, error) {
	return connect(cfg, cfg.ClickhouseDatabase)
}

func connect(cfg *config.AppConfig, database string) (driver.Conn, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.ClickhouseHost, cfg.ClickhouseNativePort)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: cfg.ClickhouseUsername,
			Password: cfg.ClickhousePassword,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     time.Second * 30,
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Duration(10) * time.Minute,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return conn, nil
}

// CreateDatabase creates the results-store database if it doesn't exist.
func CreateDatabase(conn driver.Conn, dbName, cluster string) error {
	ctx := context.Background()

	var query string
	if cluster != "" {
		query = fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` ON CLUSTER '%s'", dbName, cluster)
	} else {
		query = fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)
	}

	if err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	return nil
}

// DropDatabase removes the results-store database and everything in it.
func DropDatabase(conn driver.Conn, dbName, cluster string) error {
	ctx := context.Background()

	var query string
	if cluster != "" {
		query = fmt.Sprintf("DROP DATABASE IF EXISTS `%s` ON CLUSTER '%s'", dbName, cluster)
	} else {
		query = fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", dbName)
	}

	if err := conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	return nil
}

// TestConnection tests if we can connect to ClickHouse
func TestConnection(cfg *config.AppConfig) error {
	conn, err := Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	// Connection successful if we get here
	return nil
}
