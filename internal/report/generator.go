// Package report orchestrates the record, metric and goal pipeline into a
// single evaluated report.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/goal"
	"github.com/opshield/resilreport/internal/metric"
	"github.com/opshield/resilreport/internal/record"
	"github.com/opshield/resilreport/internal/source"
	"github.com/opshield/resilreport/internal/stats"
)

// Report is the fully evaluated result of one pipeline run.
type Report struct {
	Version     string
	GeneratedAt time.Time
	Compliance  *record.ComplianceRecord
	Verdicts    []goal.Verdict
	AllPassed   bool
}

// ComplianceStatus returns the compliance level for display. It degrades to
// UNKNOWN when the compliance record could not be loaded.
func (r *Report) ComplianceStatus() string {
	if r.Compliance == nil {
		return record.ComplianceUnknown
	}

	return r.Compliance.ComplianceStatus
}

// GeneratorConfig wires the generator's dependencies.
type GeneratorConfig struct {
	Logger      logrus.FieldLogger
	Config      *config.ReportConfig
	Resolver    *source.Resolver
	Loader      record.Loader
	Collector   stats.Collector
	Concurrency int
}

// Generator configuration errors.
var (
	ErrNilReportConfig = errors.New("report config is required")
	ErrNilLoader       = errors.New("record loader is required")
)

// Generator runs the report pipeline: the compliance check first, then
// bounded parallel record loads, normalization, and goal evaluation.
type Generator struct {
	log         logrus.FieldLogger
	cfg         *config.ReportConfig
	resolver    *source.Resolver
	loader      record.Loader
	collector   stats.Collector
	concurrency int
}

// NewGenerator creates a Generator from its wired dependencies.
func NewGenerator(gc *GeneratorConfig) (*Generator, error) {
	if gc.Config == nil {
		return nil, ErrNilReportConfig
	}

	if gc.Loader == nil {
		return nil, ErrNilLoader
	}

	concurrency := gc.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Generator{
		log:         gc.Logger.WithField("component", "report_generator"),
		cfg:         gc.Config,
		resolver:    gc.Resolver,
		loader:      gc.Loader,
		collector:   gc.Collector,
		concurrency: concurrency,
	}, nil
}

// Start validates the configured locations and brings up the stats collector
// and the sources those locations need.
func (g *Generator) Start(ctx context.Context) error {
	if err := g.collector.Start(ctx); err != nil {
		return fmt.Errorf("starting stats collector: %w", err)
	}

	if err := g.resolver.Validate(g.cfg.Locations()); err != nil {
		return fmt.Errorf("validating source locations: %w", err)
	}

	if err := g.resolver.Start(ctx); err != nil {
		return fmt.Errorf("starting sources: %w", err)
	}

	return nil
}

// Stop shuts components down in reverse start order.
func (g *Generator) Stop() error {
	var firstErr error

	if err := g.resolver.Stop(); err != nil {
		firstErr = err
	}

	if err := g.collector.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// Generate runs the full pipeline once. Failed record loads degrade to zero
// records so a broken source fails its metric without sinking the report;
// only configuration mismatches abort.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	started := time.Now()

	compliance := g.loadCompliance(ctx)

	records := g.loadRecords(ctx)

	metrics := make(map[string]metric.Normalized, len(records))

	for name, raw := range records {
		m := metric.Normalize(raw)
		metrics[name] = m

		if m.Success > m.Total {
			g.log.WithFields(logrus.Fields{
				"metric":  name,
				"success": m.Success,
				"total":   m.Total,
			}).Debug("Successful cases exceed total test cases")
		}

		if skipped := metric.SkippedEvents(raw); skipped > 0 {
			g.log.WithFields(logrus.Fields{
				"metric":  name,
				"skipped": skipped,
			}).Info("Filtered skipped event logs during preprocessing")
		}
	}

	verdicts, allPassed, err := goal.Evaluate(g.cfg.Goals, metrics)
	if err != nil {
		return nil, fmt.Errorf("evaluating goals: %w", err)
	}

	g.log.WithFields(logrus.Fields{
		"goals":      len(verdicts),
		"all_passed": allPassed,
		"duration":   time.Since(started),
	}).Info("Report generated")

	return &Report{
		Version:     config.ReportVersion,
		GeneratedAt: time.Now().UTC(),
		Compliance:  compliance,
		Verdicts:    verdicts,
		AllPassed:   allPassed,
	}, nil
}

// loadCompliance runs before any metric work. Failures degrade to an
// UNKNOWN status; they never gate evaluation.
func (g *Generator) loadCompliance(ctx context.Context) *record.ComplianceRecord {
	if g.cfg.ComplianceSource == "" {
		g.log.Warn("No compliance source configured, status will be reported as UNKNOWN")
		return nil
	}

	rec, err := g.loader.LoadCompliance(ctx, g.cfg.ComplianceSource)
	if err != nil {
		g.log.WithError(err).WithField("source", g.cfg.ComplianceSource).
			Warn("Compliance check failed, status will be reported as UNKNOWN")

		return nil
	}

	return rec
}

// loadRecords fetches every metric record with bounded parallelism. Loads
// are shared-nothing: each worker writes only its own slot, so no locking is
// needed, and result order follows goal order regardless of completion order.
func (g *Generator) loadRecords(ctx context.Context) map[string]*record.RawRecord {
	type task struct {
		metric   string
		location string
	}

	tasks := make([]task, 0, len(g.cfg.Goals))
	for _, gl := range g.cfg.Goals {
		tasks = append(tasks, task{metric: gl.Metric, location: g.cfg.Sources[gl.Metric]})
	}

	results := make([]*record.RawRecord, len(tasks))

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, g.concurrency)

	for i, t := range tasks {
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = g.loadRecord(egCtx, t.metric, t.location)

			return nil
		})
	}

	// Workers never return errors; failed loads become nil records.
	_ = eg.Wait()

	records := make(map[string]*record.RawRecord, len(tasks))
	for i, t := range tasks {
		records[t.metric] = results[i]
	}

	return records
}

func (g *Generator) loadRecord(ctx context.Context, metricName, location string) *record.RawRecord {
	load := stats.SourceLoad{
		Metric:   metricName,
		Location: location,
	}

	if kind, err := source.KindFor(location); err == nil {
		load.Kind = string(kind)
	}

	started := time.Now()

	rec, err := g.loader.Load(ctx, metricName, location)
	load.Duration = time.Since(started)

	if err != nil {
		load.Failed = true

		var loadErr *record.LoadError
		if errors.As(err, &loadErr) {
			load.Failure = string(loadErr.Kind)
		}

		g.collector.RecordSourceLoad(load)

		g.log.WithError(err).WithFields(logrus.Fields{
			"metric": metricName,
			"source": location,
		}).Error("Record load failed, substituting zero record")

		return nil
	}

	load.SkippedEvents = metric.SkippedEvents(rec)

	g.collector.RecordSourceLoad(load)

	return rec
}
