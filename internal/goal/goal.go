// Package goal evaluates normalized metrics against configured performance goals.
package goal

import (
	"errors"
	"fmt"

	"github.com/opshield/resilreport/internal/metric"
)

// Status is the outcome of a single goal evaluation.
type Status string

const (
	// StatusPass means the actual rate met or exceeded the expected rate.
	StatusPass Status = "PASS"
	// StatusFail means the actual rate fell short of the expected rate.
	StatusFail Status = "FAIL"
)

// ErrMetricNotFound is returned when a goal references a metric that was
// never loaded. It signals a configuration mismatch, not a data failure, so
// evaluation aborts instead of marking the goal failed.
var ErrMetricNotFound = errors.New("no normalized metric for goal")

// Goal is one configured performance requirement.
type Goal struct {
	Metric       string  `yaml:"metric"`
	Description  string  `yaml:"description"`
	ExpectedRate float64 `yaml:"expected_rate"`
	Unit         string  `yaml:"unit"`
}

// Verdict is the evaluation outcome for one goal, carrying everything the
// presenter needs to render its breakdown and summary rows.
type Verdict struct {
	Metric       string
	Description  string
	Unit         string
	Success      int64
	Total        int64
	ActualRate   float64
	ExpectedRate float64
	Status       Status
}

// Passed reports whether the verdict met its goal.
func (v Verdict) Passed() bool {
	return v.Status == StatusPass
}

// Evaluate compares every goal against its normalized metric, preserving
// goal order. The boundary is inclusive: an actual rate equal to the
// expected rate passes. All verdicts are always computed, the overall result
// is the AND of the individual statuses, and an empty goal list is vacuously
// passing. A goal naming an unknown metric aborts with ErrMetricNotFound.
func Evaluate(goals []Goal, metrics map[string]metric.Normalized) ([]Verdict, bool, error) {
	verdicts := make([]Verdict, 0, len(goals))
	allPassed := true

	for _, g := range goals {
		m, ok := metrics[g.Metric]
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrMetricNotFound, g.Metric)
		}

		status := StatusFail
		if m.Rate >= g.ExpectedRate {
			status = StatusPass
		} else {
			allPassed = false
		}

		verdicts = append(verdicts, Verdict{
			Metric:       g.Metric,
			Description:  g.Description,
			Unit:         g.Unit,
			Success:      m.Success,
			Total:        m.Total,
			ActualRate:   m.Rate,
			ExpectedRate: g.ExpectedRate,
			Status:       status,
		})
	}

	return verdicts, allPassed, nil
}
