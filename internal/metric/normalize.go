// Package metric reduces raw test-run records to normalized per-metric rates.
package metric

import "github.com/opshield/resilreport/internal/record"

// Normalized is the minimal shape consumed by goal evaluation: the planned
// case count, the successful case count, and their exact ratio.
type Normalized struct {
	Total   int64
	Success int64
	Rate    float64
}

// Normalize reduces a raw record to a Normalized metric. It is pure and
// total: a nil record (failed load) or a non-positive total collapses to the
// zero value, which fails any positive goal downstream. Success counts are
// taken as reported and the rate is exact division without rounding or
// clamping, so out-of-range inputs surface as out-of-range rates.
func Normalize(raw *record.RawRecord) Normalized {
	if raw == nil || raw.TotalTestCases <= 0 {
		return Normalized{}
	}

	return Normalized{
		Total:   raw.TotalTestCases,
		Success: raw.SuccessfulCases,
		Rate:    float64(raw.SuccessfulCases) / float64(raw.TotalTestCases),
	}
}

// SkippedEvents counts event-log entries the harness marked SKIP. The count
// is diagnostic only and never alters the evaluation denominator.
func SkippedEvents(raw *record.RawRecord) int {
	if raw == nil {
		return 0
	}

	skipped := 0

	for _, ev := range raw.EventLogs {
		if ev.Status == record.EventStatusSkip {
			skipped++
		}
	}

	return skipped
}
