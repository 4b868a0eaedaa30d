// Package config handles configuration loading and management
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the application deployment configuration loaded from environment variables.
type AppConfig struct {
	ReportConfigPath     string
	FetchTimeout         time.Duration
	FetchConcurrency     int
	ClickhouseHost       string
	ClickhouseNativePort int
	ClickhouseUsername   string
	ClickhousePassword   string
	ClickhouseDatabase   string
	ClickhouseCluster    string
	SafeHostnames        []string
}

// Load reads configuration from environment variables and .env file.
func Load() (*AppConfig, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if the file doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &AppConfig{
		ReportConfigPath:   getEnv("REPORT_CONFIG", DefaultReportConfigPath),
		ClickhouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickhouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickhousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickhouseDatabase: getEnv("CLICKHOUSE_DATABASE", DefaultDatabase),
		ClickhouseCluster:  getEnv("CLICKHOUSE_CLUSTER", ""),
		SafeHostnames:      parseSafeHostnames(getEnv("RESILREPORT_SAFE_HOSTS", "")),
	}

	// Parse numeric values
	nativePort, err := strconv.Atoi(getEnv("CLICKHOUSE_NATIVE_PORT", "9000"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLICKHOUSE_NATIVE_PORT: %w", err)
	}
	cfg.ClickhouseNativePort = nativePort

	timeout, err := time.ParseDuration(getEnv("FETCH_TIMEOUT", DefaultFetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = timeout

	concurrency, err := strconv.Atoi(getEnv("FETCH_CONCURRENCY", strconv.Itoa(DefaultFetchConcurrency)))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_CONCURRENCY: %w", err)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	cfg.FetchConcurrency = concurrency

	return cfg, nil
}

func (c *AppConfig) String() string {
	passwordDisplay := "(not set)"
	if c.ClickhousePassword != "" {
		passwordDisplay = "********"
	}

	clusterDisplay := c.ClickhouseCluster
	if clusterDisplay == "" {
		clusterDisplay = "(single-node)"
	}

	return fmt.Sprintf(`Current Configuration:
======================
Report Config:          %s
Fetch Timeout:          %s
Fetch Concurrency:      %d
ClickHouse Host:        %s
ClickHouse Native Port: %d
ClickHouse Username:    %s
ClickHouse Password:    %s
ClickHouse Database:    %s
ClickHouse Cluster:     %s`,
		c.ReportConfigPath,
		c.FetchTimeout,
		c.FetchConcurrency,
		c.ClickhouseHost,
		c.ClickhouseNativePort,
		c.ClickhouseUsername,
		passwordDisplay,
		c.ClickhouseDatabase,
		clusterDisplay,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseSafeHostnames parses a comma-separated list of hostnames.
func parseSafeHostnames(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	hostnames := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			hostnames = append(hostnames, trimmed)
		}
	}

	return hostnames
}
