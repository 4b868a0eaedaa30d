package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/format"
	"github.com/opshield/resilreport/internal/output"
	"github.com/opshield/resilreport/internal/record"
	"github.com/opshield/resilreport/internal/source"
)

var (
	// Probe command flags
	probeConfigPath string
	probeVerbose    bool
)

// ErrProbeFailed is returned when any configured source fails its probe.
var ErrProbeFailed = errors.New("one or more sources failed the probe")

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Fetch and validate every configured source once",
	Long: `Probe every source location in the report config without evaluating goals.

Each location is fetched once and its payload validated against the record
schema. The result table shows size, latency and the failure kind for every
source, which makes probe the quickest way to debug a misbehaving report.

Examples:
  resilreport probe
  resilreport probe --config config/report.yaml --verbose`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return RunProbe(context.Background(), ProbeOptions{
			ConfigPath: probeConfigPath,
			Verbose:    probeVerbose,
		})
	},
}

// ProbeOptions control a probe run.
type ProbeOptions struct {
	ConfigPath string
	Verbose    bool
}

type probeResult struct {
	name     string
	location string
	kind     string
	size     int
	duration time.Duration
	err      error
}

// RunProbe fetches every configured location once and prints the results.
// It is shared by the probe command and the interactive menu.
func RunProbe(ctx context.Context, opts ProbeOptions) error {
	log := newLogger(opts.Verbose)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.ConfigPath != "" {
		cfg.ReportConfigPath = opts.ConfigPath
	}

	reportCfg, err := config.LoadReportConfig(cfg.ReportConfigPath)
	if err != nil {
		return fmt.Errorf("loading report config: %w", err)
	}

	resolver := source.NewResolver(log, cfg)
	if err := resolver.Validate(reportCfg.Locations()); err != nil {
		return fmt.Errorf("validating source locations: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resolver.Start(ctx); err != nil {
		return fmt.Errorf("starting sources: %w", err)
	}
	defer func() {
		if stopErr := resolver.Stop(); stopErr != nil {
			log.WithError(stopErr).Warn("Failed to stop sources")
		}
	}()

	results := make([]probeResult, 0, len(reportCfg.Goals)+1)

	if reportCfg.ComplianceSource != "" {
		results = append(results, probeOne(ctx, resolver, "compliance", reportCfg.ComplianceSource, true))
	}

	for _, g := range reportCfg.Goals {
		results = append(results, probeOne(ctx, resolver, g.Metric, reportCfg.Sources[g.Metric], false))
	}

	printProbeResults(results)

	for _, res := range results {
		if res.err != nil {
			return ErrProbeFailed
		}
	}

	return nil
}

// probeOne fetches a single location and validates the payload against the
// schema the loader would apply.
func probeOne(ctx context.Context, resolver *source.Resolver, name, location string, compliance bool) probeResult {
	res := probeResult{
		name:     name,
		location: location,
	}

	if kind, err := source.KindFor(location); err == nil {
		res.kind = string(kind)
	}

	started := time.Now()
	data, err := resolver.Fetch(ctx, location)
	res.duration = time.Since(started)
	res.size = len(data)

	if err != nil {
		res.err = fmt.Errorf("fetch: %w", err)
		return res
	}

	if compliance {
		_, err = record.ParseCompliance(data)
	} else {
		_, err = record.Parse(data)
	}

	if err != nil {
		res.err = fmt.Errorf("schema: %w", err)
	}

	return res
}

func printProbeResults(results []probeResult) {
	renderer := output.NewRenderer()
	colors := output.NewColorHelper()

	headers := []string{"Source", "Kind", "Size", "Duration", "Result"}
	rows := make([][]string, 0, len(results))

	failed := 0

	for _, res := range results {
		result := colors.Success("ok")
		if res.err != nil {
			result = colors.Failure(res.err.Error())
			failed++
		}

		rows = append(rows, []string{
			res.name,
			res.kind,
			format.Bytes(int64(res.size)),
			format.Duration(res.duration),
			result,
		})
	}

	fmt.Println()
	fmt.Println(colors.Header("SOURCE PROBE"))
	fmt.Print(renderer.RenderToString(headers, rows))

	if failed > 0 {
		fmt.Println(colors.Failure(fmt.Sprintf("\n%d of %d sources failed", failed, len(results))))
	} else {
		fmt.Println(colors.Success(fmt.Sprintf("\nAll %d sources healthy", len(results))))
	}
}

func init() {
	probeCmd.Flags().StringVarP(&probeConfigPath, "config", "c", "", "Report config path (defaults to REPORT_CONFIG)")
	probeCmd.Flags().BoolVarP(&probeVerbose, "verbose", "v", false, "Verbose output")
	rootCmd.AddCommand(probeCmd)
}
