package config

// Report identity and defaults shared across the CLI.
const (
	// ReportTitle is printed at the top of every generated report.
	ReportTitle = "Kubernetes Operator Security & Resilience Test Report"

	// ReportVersion identifies the report layout revision.
	ReportVersion = "v1.3.0"

	// DefaultReportConfigPath is used when REPORT_CONFIG is not set.
	DefaultReportConfigPath = "config/report.yaml"

	// DefaultUnit is applied to goals that do not declare a unit label.
	DefaultUnit = "%"

	// DefaultDatabase is the results-store database name.
	DefaultDatabase = "resilience"

	// DefaultFetchTimeout bounds a single source fetch.
	DefaultFetchTimeout = "30s"

	// DefaultFetchConcurrency bounds parallel source fetches.
	DefaultFetchConcurrency = 4

	// RecordsTable holds raw test-run records in the results store.
	RecordsTable = "test_run_records"

	// ComplianceTable holds compliance check results in the results store.
	ComplianceTable = "compliance_checks"

	// MigrationsDir contains the results-store schema migrations.
	MigrationsDir = "migrations"

	// MaxRecordBytes caps a single fetched record body.
	MaxRecordBytes = 8 << 20
)
