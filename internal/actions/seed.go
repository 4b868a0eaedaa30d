package actions

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/opshield/resilreport/internal/clickhouse"
	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/record"
)

// Seed loads the file-backed fixtures referenced by the report config into
// the results store so clickhouse:// locations can serve them back.
func Seed(isInteractive, skipConfirm bool) error {
	// Load and validate config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if valErr := validateStoreConfig(cfg); valErr != nil {
		return valErr
	}

	reportCfg, err := config.LoadReportConfig(cfg.ReportConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load report config: %w", err)
	}

	// Show target info
	fmt.Println("\n📋 Seed Configuration:")
	fmt.Println("=====================")
	fmt.Printf("Report Config:   %s\n", cfg.ReportConfigPath)
	fmt.Printf("ClickHouse Host: %s:%d\n", cfg.ClickhouseHost, cfg.ClickhouseNativePort)
	fmt.Printf("Database:        %s\n", cfg.ClickhouseDatabase)
	fmt.Printf("Metrics:         %d\n", len(reportCfg.Goals))
	fmt.Println()

	// Handle confirmation for both TUI and CLI modes
	if !skipConfirm {
		if isInteractive {
			fmt.Printf("📥 You are about to seed fixtures into database: %s\n", strings.ToUpper(cfg.ClickhouseDatabase))
			fmt.Println("Existing rows are kept; seeded rows preserve their fixture timestamps.")
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

	// Connect to the results-store database
	fmt.Println("\n🔗 Connecting to ClickHouse...")
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
	seeded := 0

	// Seed one record per configured metric, in goal order
	fmt.Println("\n📥 Seeding test-run records...")

	for _, g := range reportCfg.Goals {
		location := reportCfg.Sources[g.Metric]

		data, readErr := readFixture(location)
		if readErr != nil {
			fmt.Printf("  ⚠️  Skipping %s: %v\n", g.Metric, readErr)
			continue
		}

		rec, parseErr := record.Parse(data)
		if parseErr != nil {
			fmt.Printf("  ⚠️  Skipping %s: %v\n", g.Metric, parseErr)
			continue
		}

		if insertErr := insertRecord(ctx, conn, cfg, g.Metric, rec); insertErr != nil {
			return fmt.Errorf("failed to seed record for %s: %w", g.Metric, insertErr)
		}

		fmt.Printf("  ✅ %s (campaign %s, %d/%d cases)\n", g.Metric, rec.CampaignID, rec.SuccessfulCases, rec.TotalTestCases)
		seeded++
	}

	// Seed the compliance check, if a fixture is configured
	if reportCfg.ComplianceSource != "" {
		fmt.Println("\n📥 Seeding compliance check...")

		data, readErr := readFixture(reportCfg.ComplianceSource)
		if readErr != nil {
			fmt.Printf("  ⚠️  Skipping compliance: %v\n", readErr)
		} else if rec, parseErr := record.ParseCompliance(data); parseErr != nil {
			fmt.Printf("  ⚠️  Skipping compliance: %v\n", parseErr)
		} else {
			if insertErr := insertCompliance(ctx, conn, cfg, rec); insertErr != nil {
				return fmt.Errorf("failed to seed compliance check: %w", insertErr)
			}

			fmt.Printf("  ✅ compliance status %s (%d critical flags)\n", rec.ComplianceStatus, rec.CriticalFlags)
			seeded++
		}
	}

	fmt.Printf("\n🎉 Seeding completed: %d rows inserted\n", seeded)
	return nil
}

// readFixture reads a file-backed source location. Store-backed locations
// cannot seed themselves.
func readFixture(location string) ([]byte, error) {
	if strings.Contains(location, "://") && !strings.HasPrefix(location, "file://") {
		return nil, fmt.Errorf("location %q is not file-backed", location)
	}

	path := strings.TrimPrefix(location, "file://")

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's own report config
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	return data, nil
}

func insertRecord(ctx context.Context, conn driver.Conn, cfg *config.AppConfig, metric string, rec *record.RawRecord) error {
	if rec.TotalTestCases < 0 {
		return fmt.Errorf("record has negative total_test_cases (%d)", rec.TotalTestCases)
	}

	statuses := make([]string, 0, len(rec.EventLogs))
	durations := make([]uint32, 0, len(rec.EventLogs))

	for _, ev := range rec.EventLogs {
		statuses = append(statuses, ev.Status)
		durations = append(durations, uint32(ev.DurationMS)) // #nosec G115 -- harness durations are small positive values
	}

	failureModes := rec.FailureModes
	if failureModes == nil {
		failureModes = []string{}
	}

	recordedAt := time.UnixMilli(int64(*rec.Timestamp * 1000)).UTC()

	query := fmt.Sprintf(`
		INSERT INTO %s.%s
			(metric, campaign_id, total_test_cases, successful_cases, failure_modes, recorded_at, event_statuses, event_durations_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ClickhouseDatabase, config.RecordsTable)

	return conn.Exec(ctx, query,
		metric,
		string(rec.CampaignID),
		uint64(rec.TotalTestCases),
		rec.SuccessfulCases,
		failureModes,
		recordedAt,
		statuses,
		durations,
	)
}

func insertCompliance(ctx context.Context, conn driver.Conn, cfg *config.AppConfig, rec *record.ComplianceRecord) error {
	if rec.CriticalFlags < 0 || rec.CriticalFlags > 255 {
		return fmt.Errorf("critical_flags %d out of range", rec.CriticalFlags)
	}

	checkedAt := time.UnixMilli(int64(*rec.LastCheckTime * 1000)).UTC()

	query := fmt.Sprintf(`
		INSERT INTO %s.%s
			(compliance_status, critical_flags, checked_at)
		VALUES (?, ?, ?)`,
		cfg.ClickhouseDatabase, config.ComplianceTable)

	return conn.Exec(ctx, query,
		rec.ComplianceStatus,
		uint8(rec.CriticalFlags),
		checkedAt,
	)
}
