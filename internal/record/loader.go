package record

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// FailureKind classifies why a record could not be loaded.
type FailureKind string

const (
	// FailureFetch means the source bytes could not be retrieved.
	FailureFetch FailureKind = "fetch"
	// FailureSchema means the bytes were retrieved but did not form a valid record.
	FailureSchema FailureKind = "schema"
)

// LoadError reports a failed record load with enough context for diagnostics.
// Callers substitute a zero record and keep the report going.
type LoadError struct {
	Location string
	Kind     FailureKind
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading record from %s: %s failure: %v", e.Location, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw bytes behind a source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Loader fetches and validates test-run records. Every error it returns is a
// *LoadError carrying the source location and failure kind.
type Loader interface {
	// Load retrieves the record for a metric from the given source location.
	Load(ctx context.Context, metricName, location string) (*RawRecord, error)
	// LoadCompliance retrieves the cluster compliance record.
	LoadCompliance(ctx context.Context, location string) (*ComplianceRecord, error)
}

type loader struct {
	log     logrus.FieldLogger
	fetcher Fetcher
}

// NewLoader creates a Loader that resolves locations through the given fetcher.
func NewLoader(log logrus.FieldLogger, fetcher Fetcher) Loader {
	return &loader{
		log:     log.WithField("component", "record_loader"),
		fetcher: fetcher,
	}
}

var _ Loader = (*loader)(nil)

func (l *loader) Load(ctx context.Context, metricName, location string) (*RawRecord, error) {
	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, &LoadError{Location: location, Kind: FailureFetch, Err: err}
	}

	rec, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Location: location, Kind: FailureSchema, Err: err}
	}

	l.log.WithFields(logrus.Fields{
		"metric":   metricName,
		"campaign": string(rec.CampaignID),
		"total":    rec.TotalTestCases,
		"success":  rec.SuccessfulCases,
	}).Info("Loaded test-run record")

	return rec, nil
}

func (l *loader) LoadCompliance(ctx context.Context, location string) (*ComplianceRecord, error) {
	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, &LoadError{Location: location, Kind: FailureFetch, Err: err}
	}

	rec, err := ParseCompliance(data)
	if err != nil {
		return nil, &LoadError{Location: location, Kind: FailureSchema, Err: err}
	}

	l.log.WithFields(logrus.Fields{
		"status":         rec.ComplianceStatus,
		"critical_flags": rec.CriticalFlags,
	}).Info("Loaded compliance record")

	return rec, nil
}
