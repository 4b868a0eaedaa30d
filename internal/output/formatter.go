package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/format"
	"github.com/opshield/resilreport/internal/goal"
	"github.com/opshield/resilreport/internal/report"
	"github.com/opshield/resilreport/internal/stats"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Formatter renders a generated report in the terminal house style.
// It only formats; every value it prints was computed upstream.
type Formatter struct {
	log      logrus.FieldLogger
	renderer *Renderer
	colors   *ColorHelper
	out      io.Writer
}

// NewFormatter creates a Formatter writing to the given writer.
func NewFormatter(log logrus.FieldLogger, out io.Writer) *Formatter {
	return &Formatter{
		log:      log.WithField("component", "report_formatter"),
		renderer: NewRenderer(),
		colors:   NewColorHelper(),
		out:      out,
	}
}

// PrintReport renders the full report: header, compliance banner,
// calculation breakdown, goal summary, and conclusion.
func (f *Formatter) PrintReport(rep *report.Report) {
	f.printHeader(rep)
	f.printCompliance(rep)
	f.printBreakdown(rep.Verdicts)
	f.printSummary(rep.Verdicts)
	f.printConclusion(rep)
}

func (f *Formatter) printHeader(rep *report.Report) {
	rule := strings.Repeat("═", 70)

	fmt.Fprintf(f.out, "\n%s\n", rule)
	fmt.Fprintf(f.out, " %s\n", f.colors.Header(config.ReportTitle))
	fmt.Fprintf(f.out, " Version: %s %s Generated: %s\n",
		rep.Version,
		f.colors.Muted("│"),
		rep.GeneratedAt.Format(timeLayout),
	)
	fmt.Fprintf(f.out, "%s\n", rule)
}

func (f *Formatter) printCompliance(rep *report.Report) {
	fmt.Fprintf(f.out, "\n%s\n\n", f.colors.Header("▸ Compliance Check"))

	status := f.colors.FormatCompliance(rep.ComplianceStatus())

	if rep.Compliance == nil {
		fmt.Fprintf(f.out, " Initial compliance check: %s %s\n",
			status, f.colors.Muted("(dependency check unavailable)"))

		return
	}

	checked := "n/a"
	if rep.Compliance.LastCheckTime != nil {
		checked = time.Unix(int64(*rep.Compliance.LastCheckTime), 0).UTC().Format(timeLayout)
	}

	fmt.Fprintf(f.out, " Initial compliance check: %s %s Critical flags: %d %s Last check: %s\n",
		status,
		f.colors.Muted("│"),
		rep.Compliance.CriticalFlags,
		f.colors.Muted("│"),
		checked,
	)
}

func (f *Formatter) printBreakdown(verdicts []goal.Verdict) {
	headers := []string{
		"Metric Name",
		"Successful Runs (Numerator)",
		"Total Runs (Denominator)",
		"Calculation Formula",
		"Final Rate",
	}

	rows := make([][]string, 0, len(verdicts))

	for _, v := range verdicts {
		rate := format.Percent(v.ActualRate, v.Unit)
		if v.Passed() {
			rate = f.colors.Success(rate)
		} else {
			rate = f.colors.Failure(rate)
		}

		rows = append(rows, []string{
			v.Description,
			strconv.FormatInt(v.Success, 10),
			strconv.FormatInt(v.Total, 10),
			format.Formula(v.Success, v.Total),
			rate,
		})
	}

	fmt.Fprintf(f.out, "\n%s\n\n", f.colors.Header("▸ Calculation Breakdown"))
	f.renderer.RenderToWriter(f.out, headers, rows)
	fmt.Fprintf(f.out, " %s\n",
		f.colors.Muted("Note: Total Runs reflects the planned test cases so rates stay comparable across campaigns."))
}

func (f *Formatter) printSummary(verdicts []goal.Verdict) {
	headers := []string{"Metric Description", "Expected Goal", "Actual Result", "Status"}

	rows := make([][]string, 0, len(verdicts))

	for _, v := range verdicts {
		rows = append(rows, []string{
			v.Description,
			format.GoalDisplay(v.ExpectedRate, v.Unit),
			format.Percent(v.ActualRate, v.Unit),
			f.colors.FormatStatus(v.Passed()),
		})
	}

	fmt.Fprintf(f.out, "\n%s\n\n", f.colors.Header("▸ Goal Summary"))
	f.renderer.RenderToWriter(f.out, headers, rows)
}

func (f *Formatter) printConclusion(rep *report.Report) {
	fmt.Fprintf(f.out, "\n%s\n\n", f.colors.Header("▸ Conclusion"))

	status := f.colors.FormatCompliance(rep.ComplianceStatus())

	if rep.AllPassed {
		fmt.Fprintf(f.out, " %s %s\n",
			f.colors.Success("✓"),
			f.colors.Bold("OVERALL CONCLUSION: All critical security and resilience metrics have SUCCESSFULLY PASSED performance requirements."),
		)
		fmt.Fprintf(f.out, "   System integrity and fault tolerance are validated against the defined goals. Compliance status: %s.\n\n", status)

		return
	}

	fmt.Fprintf(f.out, " %s %s\n",
		f.colors.Failure("✗"),
		f.colors.Bold("OVERALL CONCLUSION: One or more critical metrics have FAILED performance requirements. Immediate review is necessary."),
	)
	fmt.Fprintf(f.out, "   Initial compliance check status was: %s. Check the logs above for failure analysis.\n\n", status)
}

// PrintSourceLoads renders the verbose per-source load table with a summary
// footer. It prints nothing when no loads were recorded.
func (f *Formatter) PrintSourceLoads(loads []stats.SourceLoad, summary stats.Summary) {
	if len(loads) == 0 {
		return
	}

	headers := []string{"Metric", "Source", "Kind", "Duration", "Skipped", "Result"}

	rows := make([][]string, 0, len(loads))

	for _, load := range loads {
		result := f.colors.Success("ok")

		if load.Failed {
			failure := load.Failure
			if failure == "" {
				failure = "failed"
			}

			result = f.colors.Failure(failure)
		}

		rows = append(rows, []string{
			load.Metric,
			load.Location,
			load.Kind,
			format.Duration(load.Duration),
			strconv.Itoa(load.SkippedEvents),
			result,
		})
	}

	fmt.Fprintf(f.out, "\n%s\n\n", f.colors.Header("▸ Source Loads"))
	f.renderer.RenderToWriter(f.out, headers, rows)
	fmt.Fprintf(f.out, " %s\n", f.colors.Muted(fmt.Sprintf(
		"%d sources │ %d loaded │ %d failed │ %d skipped events │ %s total fetch time",
		summary.Sources, summary.Loaded, summary.Failed, summary.TotalSkipped, format.Duration(summary.TotalDuration),
	)))
}
