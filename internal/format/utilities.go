// Package format provides shared formatting utilities for human-readable output.
package format

import (
	"fmt"
	"time"
)

// Percent renders a rate in [0,1] as a percentage with two decimals and the
// goal's unit label, e.g. 0.98 -> "98.00%". Rates outside [0,1] render as-is
// so anomalous inputs stay visible.
func Percent(rate float64, unit string) string {
	return fmt.Sprintf("%.2f%s", rate*100, unit)
}

// GoalDisplay renders an expected threshold the way report summaries present
// goals, e.g. 0.9 -> "> 90%". The comparison itself is inclusive; the prefix
// is display convention only.
func GoalDisplay(expected float64, unit string) string {
	return fmt.Sprintf("> %.0f%s", expected*100, unit)
}

// Formula renders the rate calculation for the breakdown table,
// e.g. "(833 / 850) * 100".
func Formula(success, total int64) string {
	return fmt.Sprintf("(%d / %d) * 100", success, total)
}

// Duration formats a duration for human-readable output.
// Handles microseconds, milliseconds, seconds, and minutes.
func Duration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.0fµs", float64(d.Microseconds()))
	}
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Milliseconds()))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%.1fm", d.Minutes())
}

// Bytes converts bytes to human-readable format (KiB, MiB, GiB, etc.)
func Bytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
