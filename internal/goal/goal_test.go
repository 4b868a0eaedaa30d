package goal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshield/resilreport/internal/metric"
)

func TestEvaluate_InclusiveBoundary(t *testing.T) {
	t.Parallel()

	goals := []Goal{
		{Metric: "anomaly_detection_response_rate", Description: "Anomaly Event Detection Response Rate", ExpectedRate: 0.90, Unit: "%"},
	}
	metrics := map[string]metric.Normalized{
		"anomaly_detection_response_rate": {Total: 100, Success: 90, Rate: 0.90},
	}

	verdicts, allPassed, err := Evaluate(goals, metrics)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	assert.Equal(t, StatusPass, verdicts[0].Status, "rate exactly at the threshold must pass")
	assert.True(t, allPassed)
}

func TestEvaluate_FailBelowThreshold(t *testing.T) {
	t.Parallel()

	goals := []Goal{
		{Metric: "malicious_image_detection_rate", Description: "Malicious Image Detection Rate", ExpectedRate: 0.95, Unit: "%"},
	}
	metrics := map[string]metric.Normalized{
		"malicious_image_detection_rate": {Total: 600, Success: 540, Rate: 540.0 / 600.0},
	}

	verdicts, allPassed, err := Evaluate(goals, metrics)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	v := verdicts[0]
	assert.Equal(t, StatusFail, v.Status)
	assert.False(t, allPassed)
	assert.False(t, v.Passed())

	// The verdict carries everything the presenter needs.
	assert.Equal(t, "malicious_image_detection_rate", v.Metric)
	assert.Equal(t, "Malicious Image Detection Rate", v.Description)
	assert.Equal(t, "%", v.Unit)
	assert.Equal(t, int64(540), v.Success)
	assert.Equal(t, int64(600), v.Total)
	assert.InDelta(t, 0.9, v.ActualRate, 1e-9)
	assert.InDelta(t, 0.95, v.ExpectedRate, 1e-9)
}

func TestEvaluate_AllVerdictsComputedWhenOneFails(t *testing.T) {
	t.Parallel()

	goals := []Goal{
		{Metric: "a", ExpectedRate: 0.90},
		{Metric: "b", ExpectedRate: 0.95},
		{Metric: "c", ExpectedRate: 0.90},
	}
	metrics := map[string]metric.Normalized{
		"a": {Total: 100, Success: 98, Rate: 0.98},
		"b": {Total: 100, Success: 50, Rate: 0.50},
		"c": {Total: 100, Success: 95, Rate: 0.95},
	}

	verdicts, allPassed, err := Evaluate(goals, metrics)
	require.NoError(t, err)

	require.Len(t, verdicts, 3, "evaluation must not stop at the first failure")
	assert.Equal(t, StatusPass, verdicts[0].Status)
	assert.Equal(t, StatusFail, verdicts[1].Status)
	assert.Equal(t, StatusPass, verdicts[2].Status)
	assert.False(t, allPassed)
}

func TestEvaluate_ZeroRecordFailsPositiveGoal(t *testing.T) {
	t.Parallel()

	goals := []Goal{{Metric: "broken_source", ExpectedRate: 0.90}}
	metrics := map[string]metric.Normalized{"broken_source": {}}

	verdicts, allPassed, err := Evaluate(goals, metrics)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	assert.Equal(t, StatusFail, verdicts[0].Status)
	assert.Zero(t, verdicts[0].Total)
	assert.False(t, allPassed)
}

func TestEvaluate_EmptyGoalsVacuouslyPass(t *testing.T) {
	t.Parallel()

	verdicts, allPassed, err := Evaluate(nil, map[string]metric.Normalized{})
	require.NoError(t, err)

	assert.Empty(t, verdicts)
	assert.True(t, allPassed)
}

func TestEvaluate_MissingMetricAborts(t *testing.T) {
	t.Parallel()

	goals := []Goal{
		{Metric: "present", ExpectedRate: 0.90},
		{Metric: "absent", ExpectedRate: 0.90},
	}
	metrics := map[string]metric.Normalized{
		"present": {Total: 10, Success: 10, Rate: 1},
	}

	verdicts, _, err := Evaluate(goals, metrics)
	require.ErrorIs(t, err, ErrMetricNotFound)
	assert.Contains(t, err.Error(), "absent")
	assert.Nil(t, verdicts)
}

func TestEvaluate_PreservesGoalOrder(t *testing.T) {
	t.Parallel()

	goals := []Goal{
		{Metric: "third_configured_first", ExpectedRate: 0.5},
		{Metric: "alpha", ExpectedRate: 0.5},
		{Metric: "zulu", ExpectedRate: 0.5},
	}
	metrics := map[string]metric.Normalized{
		"third_configured_first": {Total: 10, Success: 9, Rate: 0.9},
		"alpha":                  {Total: 10, Success: 9, Rate: 0.9},
		"zulu":                   {Total: 10, Success: 9, Rate: 0.9},
	}

	verdicts, _, err := Evaluate(goals, metrics)
	require.NoError(t, err)
	require.Len(t, verdicts, 3)

	assert.Equal(t, "third_configured_first", verdicts[0].Metric)
	assert.Equal(t, "alpha", verdicts[1].Metric)
	assert.Equal(t, "zulu", verdicts[2].Metric)
}
