package record

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)

	return log
}

// stubFetcher serves canned bytes per location, or a fixed error.
type stubFetcher struct {
	data map[string][]byte
	err  error
}

func (f *stubFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}

	data, ok := f.data[location]
	if !ok {
		return nil, errors.New("no such location")
	}

	return data, nil
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{data: map[string][]byte{
		"config/test_data/anomaly_test_runs.json": []byte(
			`{"test_campaign_id": 48213, "total_test_cases": 850, "successful_cases": 833, "timestamp": 1787216612.482}`),
	}}

	loader := NewLoader(newTestLogger(), fetcher)

	rec, err := loader.Load(context.Background(), "anomaly_detection_response_rate", "config/test_data/anomaly_test_runs.json")
	require.NoError(t, err)

	assert.Equal(t, CampaignID("48213"), rec.CampaignID)
	assert.Equal(t, int64(850), rec.TotalTestCases)
	assert.Equal(t, int64(833), rec.SuccessfulCases)
}

func TestLoader_Load_FetchFailure(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("connection refused")
	loader := NewLoader(newTestLogger(), &stubFetcher{err: fetchErr})

	rec, err := loader.Load(context.Background(), "m", "http://records.invalid/m.json")
	require.Error(t, err)
	assert.Nil(t, rec)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, FailureFetch, loadErr.Kind)
	assert.Equal(t, "http://records.invalid/m.json", loadErr.Location)
	assert.ErrorIs(t, err, fetchErr)
}

func TestLoader_Load_SchemaFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{
			name: "missing timestamp",
			data: `{"total_test_cases": 10, "successful_cases": 9}`,
		},
		{
			name: "not json",
			data: `not a record`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetcher := &stubFetcher{data: map[string][]byte{"loc": []byte(tt.data)}}
			loader := NewLoader(newTestLogger(), fetcher)

			rec, err := loader.Load(context.Background(), "m", "loc")
			require.Error(t, err)
			assert.Nil(t, rec)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, FailureSchema, loadErr.Kind)
		})
	}
}

func TestLoader_LoadCompliance(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{data: map[string][]byte{
		"config/system/check_compliance_status.json": []byte(
			`{"compliance_status": "HIGH", "last_check_time": 1787216100.731, "critical_flags": 0}`),
	}}

	loader := NewLoader(newTestLogger(), fetcher)

	rec, err := loader.LoadCompliance(context.Background(), "config/system/check_compliance_status.json")
	require.NoError(t, err)

	assert.Equal(t, ComplianceHigh, rec.ComplianceStatus)
	assert.Equal(t, int64(0), rec.CriticalFlags)
}

func TestLoader_LoadCompliance_Failures(t *testing.T) {
	t.Parallel()

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()

		loader := NewLoader(newTestLogger(), &stubFetcher{err: errors.New("timeout")})

		rec, err := loader.LoadCompliance(context.Background(), "loc")
		require.Error(t, err)
		assert.Nil(t, rec)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, FailureFetch, loadErr.Kind)
	})

	t.Run("schema failure", func(t *testing.T) {
		t.Parallel()

		fetcher := &stubFetcher{data: map[string][]byte{
			"loc": []byte(`{"compliance_status": "SOMETHING_ELSE", "last_check_time": 1.0}`),
		}}
		loader := NewLoader(newTestLogger(), fetcher)

		rec, err := loader.LoadCompliance(context.Background(), "loc")
		require.Error(t, err)
		assert.Nil(t, rec)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, FailureSchema, loadErr.Kind)
		assert.ErrorIs(t, err, ErrUnknownCompliance)
	})
}
