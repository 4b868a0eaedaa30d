package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_Fetch(t *testing.T) {
	t.Parallel()

	body := `{"total_test_cases": 600, "successful_cases": 583, "timestamp": 1787216655.037}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/records/malicious.json":
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	src := NewHTTPSource(5 * time.Second)
	require.NoError(t, src.Start(context.Background()))

	defer func() {
		require.NoError(t, src.Stop())
	}()

	t.Run("ok", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), server.URL+"/records/malicious.json")
		require.NoError(t, err)
		assert.JSONEq(t, body, string(data))
	})

	t.Run("not found", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), server.URL+"/records/absent.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code 404")
		assert.Nil(t, data)
	})

	t.Run("server unreachable", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), "http://127.0.0.1:1/run.json")
		require.Error(t, err)
		assert.Nil(t, data)
	})
}

func TestHTTPSource_RespectsContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Second)
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	src := NewHTTPSource(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := src.Fetch(ctx, server.URL)
	require.Error(t, err)
}
