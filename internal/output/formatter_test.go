package output

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/goal"
	"github.com/opshield/resilreport/internal/record"
	"github.com/opshield/resilreport/internal/report"
	"github.com/opshield/resilreport/internal/stats"
)

func newTestLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)

	return log
}

func passingVerdict() goal.Verdict {
	return goal.Verdict{
		Metric:       "anomaly_detection_response_rate",
		Description:  "Anomaly Event Detection Response Rate",
		Unit:         "%",
		Success:      833,
		Total:        850,
		ActualRate:   833.0 / 850.0,
		ExpectedRate: 0.90,
		Status:       goal.StatusPass,
	}
}

func failingVerdict() goal.Verdict {
	return goal.Verdict{
		Metric:       "malicious_image_detection_rate",
		Description:  "Malicious Image Detection Rate",
		Unit:         "%",
		Success:      540,
		Total:        600,
		ActualRate:   540.0 / 600.0,
		ExpectedRate: 0.95,
		Status:       goal.StatusFail,
	}
}

func TestFormatter_PrintReport_AllPassed(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	checkTime := 1787216100.731
	rep := &report.Report{
		Version:     config.ReportVersion,
		GeneratedAt: time.Date(2026, 8, 20, 9, 3, 32, 0, time.UTC),
		Compliance: &record.ComplianceRecord{
			ComplianceStatus: record.ComplianceHigh,
			LastCheckTime:    &checkTime,
			CriticalFlags:    0,
		},
		Verdicts:  []goal.Verdict{passingVerdict()},
		AllPassed: true,
	}

	buf := &bytes.Buffer{}
	NewFormatter(newTestLogger(), buf).PrintReport(rep)

	out := buf.String()

	assert.Contains(t, out, config.ReportTitle)
	assert.Contains(t, out, config.ReportVersion)
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "Critical flags: 0")

	// Calculation breakdown carries the formula and the exact rate.
	assert.Contains(t, out, "(833 / 850) * 100")
	assert.Contains(t, out, "98.00%")

	// Goal summary renders the display threshold and the verdict.
	assert.Contains(t, out, "> 90%")
	assert.Contains(t, out, "✓ PASS")

	assert.Contains(t, out, "SUCCESSFULLY PASSED")
	assert.NotContains(t, out, "Immediate review")
}

func TestFormatter_PrintReport_WithFailure(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	checkTime := 1787216100.0
	rep := &report.Report{
		Version:     config.ReportVersion,
		GeneratedAt: time.Now().UTC(),
		Compliance: &record.ComplianceRecord{
			ComplianceStatus: record.ComplianceMedium,
			LastCheckTime:    &checkTime,
			CriticalFlags:    2,
		},
		Verdicts:  []goal.Verdict{passingVerdict(), failingVerdict()},
		AllPassed: false,
	}

	buf := &bytes.Buffer{}
	NewFormatter(newTestLogger(), buf).PrintReport(rep)

	out := buf.String()

	// Both verdicts render even though one failed.
	assert.Contains(t, out, "✓ PASS")
	assert.Contains(t, out, "✗ FAIL")
	assert.Contains(t, out, "90.00%")

	assert.Contains(t, out, "FAILED performance requirements")
	assert.Contains(t, out, "MEDIUM")
	assert.NotContains(t, out, "SUCCESSFULLY PASSED")
}

func TestFormatter_PrintReport_MissingCompliance(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	rep := &report.Report{
		Version:     config.ReportVersion,
		GeneratedAt: time.Now().UTC(),
		Compliance:  nil,
		Verdicts:    []goal.Verdict{passingVerdict()},
		AllPassed:   true,
	}

	buf := &bytes.Buffer{}
	NewFormatter(newTestLogger(), buf).PrintReport(rep)

	out := buf.String()

	assert.Contains(t, out, "UNKNOWN")
	assert.Contains(t, out, "dependency check unavailable")
}

func TestFormatter_PrintSourceLoads(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	loads := []stats.SourceLoad{
		{
			Metric:        "anomaly_detection_response_rate",
			Location:      "config/test_data/anomaly_test_runs.json",
			Kind:          "file",
			Duration:      12 * time.Millisecond,
			SkippedEvents: 2,
		},
		{
			Metric:   "malicious_image_detection_rate",
			Location: "http://records.internal/malicious.json",
			Kind:     "http",
			Duration: 150 * time.Millisecond,
			Failed:   true,
			Failure:  "fetch",
		},
	}
	summary := stats.Summary{
		Sources:       2,
		Loaded:        1,
		Failed:        1,
		TotalSkipped:  2,
		TotalDuration: 162 * time.Millisecond,
	}

	buf := &bytes.Buffer{}
	NewFormatter(newTestLogger(), buf).PrintSourceLoads(loads, summary)

	out := buf.String()

	assert.Contains(t, out, "anomaly_detection_response_rate")
	assert.Contains(t, out, "config/test_data/anomaly_test_runs.json")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "fetch")
	assert.Contains(t, out, "2 sources │ 1 loaded │ 1 failed │ 2 skipped events")
}

func TestFormatter_PrintSourceLoads_Empty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	buf := &bytes.Buffer{}
	formatter := NewFormatter(newTestLogger(), buf)

	formatter.PrintSourceLoads(nil, stats.Summary{})
	require.Zero(t, buf.Len(), "no loads means nothing to print")
}
