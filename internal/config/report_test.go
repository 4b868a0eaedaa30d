package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshield/resilreport/internal/goal"
)

func writeReportConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadReportConfig_Valid(t *testing.T) {
	t.Parallel()

	path := writeReportConfig(t, `
compliance_source: config/system/check_compliance_status.json
sources:
  anomaly_detection_response_rate: config/test_data/anomaly_test_runs.json
  malicious_image_detection_rate: http://records.internal/malicious.json
goals:
  - metric: anomaly_detection_response_rate
    description: Anomaly Event Detection Response Rate
    expected_rate: 0.90
    unit: "%"
  - metric: malicious_image_detection_rate
    expected_rate: 0.95
`)

	cfg, err := LoadReportConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "config/system/check_compliance_status.json", cfg.ComplianceSource)
	require.Len(t, cfg.Goals, 2)

	assert.Equal(t, "Anomaly Event Detection Response Rate", cfg.Goals[0].Description)
	assert.Equal(t, "%", cfg.Goals[0].Unit)

	// Omitted unit and description fall back to defaults.
	assert.Equal(t, DefaultUnit, cfg.Goals[1].Unit)
	assert.Equal(t, "malicious_image_detection_rate", cfg.Goals[1].Description)
}

func TestLoadReportConfig_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadReportConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadReportConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeReportConfig(t, "goals: [metric: {{")

	cfg, err := LoadReportConfig(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestReportConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     ReportConfig
		wantErr error
	}{
		{
			name:    "no goals",
			cfg:     ReportConfig{Sources: map[string]string{"m": "m.json"}},
			wantErr: ErrNoGoals,
		},
		{
			name: "goal without metric name",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json"},
				Goals:   []goal.Goal{{ExpectedRate: 0.9}},
			},
			wantErr: ErrGoalMetricRequired,
		},
		{
			name: "duplicate goal metric",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json"},
				Goals: []goal.Goal{
					{Metric: "m", ExpectedRate: 0.9},
					{Metric: "m", ExpectedRate: 0.95},
				},
			},
			wantErr: ErrDuplicateGoal,
		},
		{
			name: "expected rate at zero",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json"},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 0}},
			},
			wantErr: ErrExpectedRateRange,
		},
		{
			name: "expected rate at one",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json"},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 1}},
			},
			wantErr: ErrExpectedRateRange,
		},
		{
			name: "expected rate above one",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json"},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 1.5}},
			},
			wantErr: ErrExpectedRateRange,
		},
		{
			name: "goal without source",
			cfg: ReportConfig{
				Sources: map[string]string{},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 0.9}},
			},
			wantErr: ErrGoalWithoutSource,
		},
		{
			name: "empty source location",
			cfg: ReportConfig{
				Sources: map[string]string{"m": ""},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 0.9}},
			},
			wantErr: ErrEmptySourceLocation,
		},
		{
			name: "source without goal",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json", "orphan": "orphan.json"},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 0.9}},
			},
			wantErr: ErrSourceWithoutGoal,
		},
		{
			name: "valid",
			cfg: ReportConfig{
				Sources: map[string]string{"m": "m.json"},
				Goals:   []goal.Goal{{Metric: "m", ExpectedRate: 0.9}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestReportConfig_Locations(t *testing.T) {
	t.Parallel()

	cfg := ReportConfig{
		ComplianceSource: "config/system/check_compliance_status.json",
		Sources: map[string]string{
			"a": "a.json",
			"b": "b.json",
		},
		Goals: []goal.Goal{
			{Metric: "b", ExpectedRate: 0.9},
			{Metric: "a", ExpectedRate: 0.9},
		},
	}

	// Compliance first, then goal order.
	assert.Equal(t, []string{"config/system/check_compliance_status.json", "b.json", "a.json"}, cfg.Locations())

	cfg.ComplianceSource = ""
	assert.Equal(t, []string{"b.json", "a.json"}, cfg.Locations())
}
