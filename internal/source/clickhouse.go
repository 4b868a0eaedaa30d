package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/opshield/resilreport/internal/clickhouse"
	"github.com/opshield/resilreport/internal/config"
	"github.com/opshield/resilreport/internal/record"
)

// Logical locations understood by the store-backed source.
const (
	recordsPrefix      = "clickhouse://records/"
	complianceLocation = "clickhouse://compliance"
)

var (
	// ErrBadStoreLocation is returned for clickhouse:// locations that name
	// neither a metric under records/ nor the compliance check.
	ErrBadStoreLocation = errors.New("malformed clickhouse location")
	// ErrNoStoreRows is returned when the results store has no row to serve.
	ErrNoStoreRows = errors.New("no matching rows in results store")

	errStoreNotStarted = errors.New("clickhouse source not started")
)

type clickhouseSource struct {
	log logrus.FieldLogger
	cfg *config.AppConfig

	mu   sync.Mutex
	conn driver.Conn
}

// NewClickHouseSource serves logical locations from the results store:
// clickhouse://records/<metric> returns the latest record for a metric and
// clickhouse://compliance returns the latest compliance check, both encoded
// in the canonical JSON wire format so the loader stays backend-agnostic.
// The connection opens on Start, so configs without clickhouse locations
// never dial the store.
func NewClickHouseSource(log logrus.FieldLogger, cfg *config.AppConfig) Source {
	return &clickhouseSource{
		log: log.WithField("component", "clickhouse_source"),
		cfg: cfg,
	}
}

var _ Source = (*clickhouseSource)(nil)

func (s *clickhouseSource) Kind() Kind {
	return KindClickHouse
}

func (s *clickhouseSource) Start(_ context.Context) error {
	conn, err := clickhouse.ConnectDatabase(s.cfg)
	if err != nil {
		return fmt.Errorf("connecting to results store: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.log.WithField("database", s.cfg.ClickhouseDatabase).Debug("Connected to results store")

	return nil
}

func (s *clickhouseSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil

	return err
}

func (s *clickhouseSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil, errStoreNotStarted
	}

	switch {
	case location == complianceLocation:
		return s.fetchCompliance(ctx, conn)
	case strings.HasPrefix(location, recordsPrefix):
		metric := strings.TrimPrefix(location, recordsPrefix)
		if metric == "" || strings.Contains(metric, "/") {
			return nil, fmt.Errorf("%w: %s", ErrBadStoreLocation, location)
		}

		return s.fetchRecord(ctx, conn, metric)
	default:
		return nil, fmt.Errorf("%w: %s (want clickhouse://records/<metric> or clickhouse://compliance)",
			ErrBadStoreLocation, location)
	}
}

func (s *clickhouseSource) fetchRecord(ctx context.Context, conn driver.Conn, metric string) ([]byte, error) {
	query := fmt.Sprintf(`
		SELECT
			campaign_id,
			total_test_cases,
			successful_cases,
			failure_modes,
			toUnixTimestamp64Milli(recorded_at) AS recorded_ms,
			event_statuses,
			event_durations_ms
		FROM %s.%s
		WHERE metric = ?
		ORDER BY recorded_at DESC
		LIMIT 1`,
		s.cfg.ClickhouseDatabase, config.RecordsTable)

	var (
		campaignID   string
		total        uint64
		success      int64
		failureModes []string
		recordedMS   int64
		statuses     []string
		durations    []uint32
	)

	row := conn.QueryRow(ctx, query, metric)
	if err := row.Scan(&campaignID, &total, &success, &failureModes, &recordedMS, &statuses, &durations); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no record for metric %s", ErrNoStoreRows, metric)
		}

		return nil, fmt.Errorf("querying record for %s: %w", metric, err)
	}

	ts := float64(recordedMS) / 1000.0

	rec := record.RawRecord{
		CampaignID:      record.CampaignID(campaignID),
		TotalTestCases:  int64(total), // #nosec G115 -- case counts never approach the int64 boundary
		SuccessfulCases: success,
		FailureModes:    failureModes,
		Timestamp:       &ts,
		EventLogs:       make([]record.EventLog, 0, len(statuses)),
	}

	for i, status := range statuses {
		ev := record.EventLog{ID: int64(i), Status: status}
		if i < len(durations) {
			ev.DurationMS = int64(durations[i])
		}

		rec.EventLogs = append(rec.EventLogs, ev)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record for %s: %w", metric, err)
	}

	return data, nil
}

func (s *clickhouseSource) fetchCompliance(ctx context.Context, conn driver.Conn) ([]byte, error) {
	query := fmt.Sprintf(`
		SELECT
			compliance_status,
			critical_flags,
			toUnixTimestamp64Milli(checked_at) AS checked_ms
		FROM %s.%s
		ORDER BY checked_at DESC
		LIMIT 1`,
		s.cfg.ClickhouseDatabase, config.ComplianceTable)

	var (
		status    string
		flags     uint8
		checkedMS int64
	)

	if err := conn.QueryRow(ctx, query).Scan(&status, &flags, &checkedMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no compliance checks recorded", ErrNoStoreRows)
		}

		return nil, fmt.Errorf("querying compliance check: %w", err)
	}

	ts := float64(checkedMS) / 1000.0

	rec := record.ComplianceRecord{
		ComplianceStatus: status,
		LastCheckTime:    &ts,
		CriticalFlags:    int64(flags),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding compliance record: %w", err)
	}

	return data, nil
}
