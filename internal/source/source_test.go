package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshield/resilreport/internal/config"
)

func newTestLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)

	return log
}

func newTestAppConfig() *config.AppConfig {
	return &config.AppConfig{
		FetchTimeout:         time.Second,
		ClickhouseHost:       "localhost",
		ClickhouseNativePort: 9000,
		ClickhouseUsername:   "default",
		ClickhouseDatabase:   "resilience",
	}
}

func TestKindFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		location string
		expected Kind
		wantErr  bool
	}{
		{name: "bare path", location: "config/test_data/anomaly_test_runs.json", expected: KindFile},
		{name: "absolute path", location: "/var/lib/records/run.json", expected: KindFile},
		{name: "file url", location: "file:///var/lib/records/run.json", expected: KindFile},
		{name: "http url", location: "http://records.internal/run.json", expected: KindHTTP},
		{name: "https url", location: "https://records.internal/run.json", expected: KindHTTP},
		{name: "results store", location: "clickhouse://records/anomaly_detection_response_rate", expected: KindClickHouse},
		{name: "unknown scheme", location: "ftp://records.internal/run.json", wantErr: true},
		{name: "another unknown scheme", location: "s3://bucket/run.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kind, err := KindFor(tt.location)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownScheme)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestResolver_Validate(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(newTestLogger(), newTestAppConfig())

	require.NoError(t, resolver.Validate([]string{
		"config/test_data/anomaly_test_runs.json",
		"https://records.internal/malicious.json",
		"clickhouse://records/backup_recovery_coverage",
	}))

	err := resolver.Validate([]string{"gopher://records.internal/run.json"})
	require.ErrorIs(t, err, ErrUnknownScheme)
}

func TestResolver_StartsOnlyNeededSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"total_test_cases": 1}`), 0o600))

	// A file-only config must come up without dialing the results store.
	resolver := NewResolver(newTestLogger(), newTestAppConfig())
	require.NoError(t, resolver.Validate([]string{path}))

	ctx := context.Background()
	require.NoError(t, resolver.Start(ctx))

	defer func() {
		require.NoError(t, resolver.Stop())
	}()

	data, err := resolver.Fetch(ctx, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_test_cases": 1}`, string(data))
}

func TestResolver_FetchUnknownScheme(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(newTestLogger(), newTestAppConfig())

	data, err := resolver.Fetch(context.Background(), "ftp://records.internal/run.json")
	require.ErrorIs(t, err, ErrUnknownScheme)
	assert.Nil(t, data)
}
