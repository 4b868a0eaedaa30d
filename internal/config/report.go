package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opshield/resilreport/internal/goal"
)

// Report definition validation errors.
var (
	ErrNoGoals             = errors.New("report config declares no goals")
	ErrGoalMetricRequired  = errors.New("goal is missing a metric name")
	ErrDuplicateGoal       = errors.New("duplicate goal metric")
	ErrExpectedRateRange   = errors.New("expected_rate must be strictly between 0 and 1")
	ErrGoalWithoutSource   = errors.New("goal has no configured source")
	ErrSourceWithoutGoal   = errors.New("source has no configured goal")
	ErrEmptySourceLocation = errors.New("source location is empty")
)

// ReportConfig is the report definition: which sources to read and which
// performance goals to hold them to. Goal order is preserved and drives the
// order of every rendered table.
type ReportConfig struct {
	ComplianceSource string            `yaml:"compliance_source"`
	Sources          map[string]string `yaml:"sources"`
	Goals            []goal.Goal       `yaml:"goals"`
}

// LoadReportConfig reads, parses and validates a report definition file.
func LoadReportConfig(path string) (*ReportConfig, error) {
	// #nosec G304 -- path comes from operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report config %s: %w", path, err)
	}

	var cfg ReportConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing report config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating report config %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate enforces the goal/source contract up front: every goal has a
// source, every source has a goal, and every threshold is usable. Catching a
// mismatch here beats discovering it mid-evaluation. It also applies the
// unit and description defaults.
func (c *ReportConfig) Validate() error {
	if len(c.Goals) == 0 {
		return ErrNoGoals
	}

	seen := make(map[string]bool, len(c.Goals))

	for i := range c.Goals {
		g := &c.Goals[i]

		if g.Metric == "" {
			return fmt.Errorf("%w (goal %d)", ErrGoalMetricRequired, i)
		}

		if seen[g.Metric] {
			return fmt.Errorf("%w: %s", ErrDuplicateGoal, g.Metric)
		}
		seen[g.Metric] = true

		if g.ExpectedRate <= 0 || g.ExpectedRate >= 1 {
			return fmt.Errorf("%w: %s has %v", ErrExpectedRateRange, g.Metric, g.ExpectedRate)
		}

		if g.Unit == "" {
			g.Unit = DefaultUnit
		}

		if g.Description == "" {
			g.Description = g.Metric
		}

		location, ok := c.Sources[g.Metric]
		if !ok {
			return fmt.Errorf("%w: %s", ErrGoalWithoutSource, g.Metric)
		}

		if location == "" {
			return fmt.Errorf("%w: %s", ErrEmptySourceLocation, g.Metric)
		}
	}

	for name := range c.Sources {
		if !seen[name] {
			return fmt.Errorf("%w: %s", ErrSourceWithoutGoal, name)
		}
	}

	return nil
}

// Locations returns every configured source location, compliance source
// first, in goal order. Used for startup resolution checks.
func (c *ReportConfig) Locations() []string {
	locations := make([]string, 0, len(c.Goals)+1)

	if c.ComplianceSource != "" {
		locations = append(locations, c.ComplianceSource)
	}

	for _, g := range c.Goals {
		locations = append(locations, c.Sources[g.Metric])
	}

	return locations
}
