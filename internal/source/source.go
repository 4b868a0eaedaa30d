// Package source abstracts where raw record bytes come from. Locations are
// dispatched by scheme: plain paths or file:// URLs read the local
// filesystem, http(s):// URLs fetch over the network, and logical
// clickhouse:// locations are served from the results store.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opshield/resilreport/internal/config"
)

// Kind identifies a source implementation.
type Kind string

const (
	// KindFile reads records from the local filesystem.
	KindFile Kind = "file"
	// KindHTTP fetches records over HTTP(S).
	KindHTTP Kind = "http"
	// KindClickHouse serves records from the results store.
	KindClickHouse Kind = "clickhouse"
)

// ErrUnknownScheme is returned for locations no registered source can serve.
var ErrUnknownScheme = errors.New("no source registered for location scheme")

// Source fetches raw bytes for a location. Implementations must be safe for
// concurrent use once started.
type Source interface {
	Kind() Kind
	Start(ctx context.Context) error
	Stop() error
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// KindFor classifies a location by scheme.
func KindFor(location string) (Kind, error) {
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return KindHTTP, nil
	case strings.HasPrefix(location, "clickhouse://"):
		return KindClickHouse, nil
	case strings.Contains(location, "://") && !strings.HasPrefix(location, "file://"):
		return "", fmt.Errorf("%w: %s", ErrUnknownScheme, location)
	default:
		return KindFile, nil
	}
}

// Resolver dispatches locations to registered sources and manages their
// lifecycle. Only the sources referenced by validated locations are started,
// so a file-only config never dials the results store.
type Resolver struct {
	log     logrus.FieldLogger
	sources map[Kind]Source
	order   []Kind
	needed  map[Kind]bool
	started []Source
}

// NewResolver registers the production sources against the app config.
func NewResolver(log logrus.FieldLogger, cfg *config.AppConfig) *Resolver {
	r := &Resolver{
		log:     log.WithField("component", "source_resolver"),
		sources: make(map[Kind]Source),
		needed:  make(map[Kind]bool),
	}

	r.Register(NewFileSource())
	r.Register(NewHTTPSource(cfg.FetchTimeout))
	r.Register(NewClickHouseSource(log, cfg))

	return r
}

// Register adds a source, replacing any previous one of the same kind.
func (r *Resolver) Register(src Source) {
	if _, exists := r.sources[src.Kind()]; !exists {
		r.order = append(r.order, src.Kind())
	}

	r.sources[src.Kind()] = src
}

// Validate classifies every location and records which source kinds the run
// needs. Unknown schemes fail here, before any fetching begins.
func (r *Resolver) Validate(locations []string) error {
	for _, location := range locations {
		kind, err := KindFor(location)
		if err != nil {
			return err
		}

		if _, ok := r.sources[kind]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownScheme, location)
		}

		r.needed[kind] = true
	}

	return nil
}

// Start brings up every source required by the validated locations, in
// registration order.
func (r *Resolver) Start(ctx context.Context) error {
	for _, kind := range r.order {
		if !r.needed[kind] {
			continue
		}

		src := r.sources[kind]
		if err := src.Start(ctx); err != nil {
			return fmt.Errorf("starting %s source: %w", kind, err)
		}

		r.started = append(r.started, src)
		r.log.WithField("source", kind).Debug("Source started")
	}

	return nil
}

// Stop shuts down started sources in reverse order, returning the first error.
func (r *Resolver) Stop() error {
	var firstErr error

	for i := len(r.started) - 1; i >= 0; i-- {
		if err := r.started[i].Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	r.started = nil

	return firstErr
}

// Resolve returns the source responsible for a location.
func (r *Resolver) Resolve(location string) (Source, error) {
	kind, err := KindFor(location)
	if err != nil {
		return nil, err
	}

	src, ok := r.sources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, location)
	}

	return src, nil
}

// Fetch resolves a location and retrieves its bytes.
func (r *Resolver) Fetch(ctx context.Context, location string) ([]byte, error) {
	src, err := r.Resolve(location)
	if err != nil {
		return nil, err
	}

	return src.Fetch(ctx, location)
}
