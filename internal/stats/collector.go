// Package stats collects per-run source load statistics for diagnostics.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SourceLoad captures one record load attempt.
type SourceLoad struct {
	Metric        string
	Location      string
	Kind          string
	Duration      time.Duration
	SkippedEvents int
	Failed        bool
	Failure       string
	Timestamp     time.Time
}

// Summary aggregates a whole run.
type Summary struct {
	Sources       int
	Loaded        int
	Failed        int
	TotalSkipped  int
	TotalDuration time.Duration
}

// Collector accumulates source load stats during report generation.
// Implementations must be safe for concurrent use.
type Collector interface {
	Start(ctx context.Context) error
	Stop() error

	RecordSourceLoad(load SourceLoad)

	GetSourceLoads() []SourceLoad
	GetSummary() Summary
}

type collector struct {
	log logrus.FieldLogger

	mu    sync.Mutex
	loads []SourceLoad
}

// NewCollector creates an empty stats collector.
func NewCollector(log logrus.FieldLogger) Collector {
	return &collector{
		log:   log.WithField("component", "stats_collector"),
		loads: make([]SourceLoad, 0, 16),
	}
}

var _ Collector = (*collector)(nil)

func (c *collector) Start(_ context.Context) error {
	c.log.Debug("Stats collector started")
	return nil
}

func (c *collector) Stop() error {
	summary := c.GetSummary()

	c.log.WithFields(logrus.Fields{
		"sources": summary.Sources,
		"loaded":  summary.Loaded,
		"failed":  summary.Failed,
	}).Debug("Stats collector stopped")

	return nil
}

func (c *collector) RecordSourceLoad(load SourceLoad) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if load.Timestamp.IsZero() {
		load.Timestamp = time.Now()
	}

	c.loads = append(c.loads, load)
}

func (c *collector) GetSourceLoads() []SourceLoad {
	c.mu.Lock()
	defer c.mu.Unlock()

	loads := make([]SourceLoad, len(c.loads))
	copy(loads, c.loads)

	return loads
}

func (c *collector) GetSummary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := Summary{Sources: len(c.loads)}

	for _, load := range c.loads {
		if load.Failed {
			summary.Failed++
		} else {
			summary.Loaded++
		}

		summary.TotalSkipped += load.SkippedEvents
		summary.TotalDuration += load.Duration
	}

	return summary
}
