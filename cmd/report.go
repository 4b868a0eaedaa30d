package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/output"
	"github.com/opshield/resilreport/internal/record"
	"github.com/opshield/resilreport/internal/report"
	"github.com/opshield/resilreport/internal/source"
	"github.com/opshield/resilreport/internal/stats"
)

var (
	// Report command flags
	reportConfigPath  string
	reportVerbose     bool
	reportCheck       bool
	reportConcurrency int
	reportTimeout     time.Duration
	reportShowSources bool
)

// ErrGoalsFailed is returned in check mode when any goal misses its rate.
var ErrGoalsFailed = errors.New("one or more goals failed")

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the security and resilience test report",
	Long: `Generate the per-metric test report from the configured sources.

The report pipeline:
1. Fetches the cluster compliance check (informational, never gates the run)
2. Fetches the latest test-run record for every configured metric in parallel
3. Normalizes each record into a success rate
4. Evaluates every rate against its goal and prints the verdict tables

Failed or malformed records degrade to a zero record, so a broken source
fails its own metric without aborting the report.

Examples:
  resilreport report
  resilreport report --config config/report.yaml --verbose
  resilreport report --check --timeout 2m`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return RunReport(context.Background(), ReportOptions{
			ConfigPath:  reportConfigPath,
			Verbose:     reportVerbose,
			Check:       reportCheck,
			Concurrency: reportConcurrency,
			Timeout:     reportTimeout,
			ShowSources: reportShowSources,
		})
	},
}

// ReportOptions control a single report run. Zero values defer to the
// environment configuration.
type ReportOptions struct {
	ConfigPath  string
	Verbose     bool
	Check       bool
	Concurrency int
	Timeout     time.Duration
	ShowSources bool
}

// RunReport wires the report pipeline, runs it once and renders the result
// to stdout. It is shared by the report command and the interactive menu.
func RunReport(ctx context.Context, opts ReportOptions) error {
	log := newLogger(opts.Verbose)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.ConfigPath != "" {
		cfg.ReportConfigPath = opts.ConfigPath
	}

	if opts.Concurrency > 0 {
		cfg.FetchConcurrency = opts.Concurrency
	}

	reportCfg, err := config.LoadReportConfig(cfg.ReportConfigPath)
	if err != nil {
		return fmt.Errorf("loading report config: %w", err)
	}

	resolver := source.NewResolver(log, cfg)
	collector := stats.NewCollector(log)
	loader := record.NewLoader(log, resolver)

	generator, err := report.NewGenerator(&report.GeneratorConfig{
		Logger:      log,
		Config:      reportCfg,
		Resolver:    resolver,
		Loader:      loader,
		Collector:   collector,
		Concurrency: cfg.FetchConcurrency,
	})
	if err != nil {
		return fmt.Errorf("creating report generator: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if err := generator.Start(ctx); err != nil {
		return fmt.Errorf("starting report pipeline: %w", err)
	}
	defer func() {
		if stopErr := generator.Stop(); stopErr != nil {
			log.WithError(stopErr).Warn("Failed to stop report pipeline")
		}
	}()

	rep, err := generator.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	formatter := output.NewFormatter(log, os.Stdout)
	formatter.PrintReport(rep)

	if opts.ShowSources || opts.Verbose {
		formatter.PrintSourceLoads(collector.GetSourceLoads(), collector.GetSummary())
	}

	if opts.Check && !rep.AllPassed {
		return ErrGoalsFailed
	}

	return nil
}

func init() {
	reportCmd.Flags().StringVarP(&reportConfigPath, "config", "c", "", "Report config path (defaults to REPORT_CONFIG)")
	reportCmd.Flags().BoolVarP(&reportVerbose, "verbose", "v", false, "Verbose output")
	reportCmd.Flags().BoolVar(&reportCheck, "check", false, "Exit non-zero when any goal fails")
	reportCmd.Flags().IntVar(&reportConcurrency, "concurrency", 0, "Parallel source fetches (defaults to FETCH_CONCURRENCY)")
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 0, "Overall run timeout (0 = no limit)")
	reportCmd.Flags().BoolVar(&reportShowSources, "sources", false, "Print the per-source load table after the report")
	rootCmd.AddCommand(reportCmd)
}
