package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opshield/resilreport/internal/config"
)

type httpSource struct {
	client *http.Client
}

// NewHTTPSource fetches records over HTTP(S) with a hard client timeout and
// a capped response size.
func NewHTTPSource(timeout time.Duration) Source {
	return &httpSource{
		client: &http.Client{Timeout: timeout},
	}
}

var _ Source = (*httpSource)(nil)

func (s *httpSource) Kind() Kind {
	return KindHTTP
}

func (s *httpSource) Start(_ context.Context) error {
	return nil
}

func (s *httpSource) Stop() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *httpSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", location, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", location, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status code %d", location, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxRecordBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", location, err)
	}

	return data, nil
}
