// Package record defines the test-run record wire format and the loader
// that fetches and validates records from configured sources.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Event statuses emitted by the test harness.
const (
	EventStatusSuccess = "SUCCESS"
	EventStatusTimeout = "TIMEOUT"
	EventStatusSkip    = "SKIP"
	EventStatusFail    = "FAIL"
)

// Compliance levels reported by the cluster dependency check. Unknown covers
// every case where the check could not be completed.
const (
	ComplianceHigh    = "HIGH"
	ComplianceMedium  = "MEDIUM"
	ComplianceLow     = "LOW"
	ComplianceUnknown = "UNKNOWN"
)

// CampaignID is an opaque campaign identifier. Sources encode it either as a
// JSON string or a number, so it accepts both.
type CampaignID string

// UnmarshalJSON accepts string and numeric encodings.
func (c *CampaignID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parsing campaign id: %w", err)
		}

		*c = CampaignID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parsing campaign id: %w", err)
	}

	*c = CampaignID(n.String())

	return nil
}

// EventLog is a single per-case entry from the harness event stream.
type EventLog struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
}

// RawRecord is one test-run record as produced by a campaign source.
// TotalTestCases counts the planned cases and is the evaluation denominator;
// Timestamp is required metadata, and records without it are rejected.
type RawRecord struct {
	CampaignID      CampaignID `json:"test_campaign_id"`
	TotalTestCases  int64      `json:"total_test_cases"`
	SuccessfulCases int64      `json:"successful_cases"`
	FailureModes    []string   `json:"failure_modes,omitempty"`
	Timestamp       *float64   `json:"timestamp,omitempty"`
	EventLogs       []EventLog `json:"event_logs,omitempty"`
}

// ComplianceRecord is the cluster compliance check result fetched before any
// metric work begins. It is informational and never gates evaluation.
type ComplianceRecord struct {
	ComplianceStatus string   `json:"compliance_status"`
	LastCheckTime    *float64 `json:"last_check_time,omitempty"`
	CriticalFlags    int64    `json:"critical_flags"`
}

// Schema validation errors shared by Parse and the loader.
var (
	ErrTimestampMissing  = errors.New("record is missing the required timestamp field")
	ErrCheckTimeMissing  = errors.New("compliance record is missing last_check_time")
	ErrUnknownCompliance = errors.New("unknown compliance status")
)

// Parse decodes and validates a raw test-run record.
func Parse(data []byte) (*RawRecord, error) {
	var rec RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	if rec.Timestamp == nil {
		return nil, ErrTimestampMissing
	}

	return &rec, nil
}

// ParseCompliance decodes and validates a compliance check record.
func ParseCompliance(data []byte) (*ComplianceRecord, error) {
	var rec ComplianceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing compliance record: %w", err)
	}

	switch rec.ComplianceStatus {
	case ComplianceHigh, ComplianceMedium, ComplianceLow:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompliance, rec.ComplianceStatus)
	}

	if rec.LastCheckTime == nil {
		return nil, ErrCheckTimeMissing
	}

	return &rec, nil
}
