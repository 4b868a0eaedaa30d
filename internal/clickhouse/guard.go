package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"
)

var (
	// ErrConnectionNil is returned when the database connection is nil.
	ErrConnectionNil = errors.New("database connection is nil")

	// ErrNonWhitelistedHost is returned when a destructive operation targets
	// a ClickHouse host that is not in the safe-host whitelist.
	ErrNonWhitelistedHost = errors.New("refusing destructive operation on non-whitelisted ClickHouse host")
)

// HostGuard validates the connected ClickHouse hostname against a whitelist
// before destructive operations, so a stray port-forward cannot point a
// teardown at a production store.
type HostGuard interface {
	// Validate checks that the connected ClickHouse host is whitelisted.
	Validate(ctx context.Context, conn driver.Conn) error
}

type hostGuard struct {
	safeHostnames []string
	log           logrus.FieldLogger
}

// Compile-time check to ensure hostGuard implements HostGuard interface.
var _ HostGuard = (*hostGuard)(nil)

// NewHostGuard creates a hostname guard with the provided whitelist.
func NewHostGuard(safeHostnames []string, log logrus.FieldLogger) HostGuard {
	return &hostGuard{
		safeHostnames: safeHostnames,
		log:           log.WithField("component", "host_guard"),
	}
}

// Validate checks that the connected ClickHouse host is whitelisted.
func (g *hostGuard) Validate(ctx context.Context, conn driver.Conn) error {
	if conn == nil {
		return ErrConnectionNil
	}

	var hostname string

	row := conn.QueryRow(ctx, "SELECT hostName()")
	if err := row.Scan(&hostname); err != nil {
		return fmt.Errorf("failed to query ClickHouse hostname: %w", err)
	}

	hostname = strings.TrimSpace(hostname)
	if !g.isWhitelisted(hostname) {
		return fmt.Errorf(
			"SAFETY: host '%s' is not whitelisted for destructive operations. "+
				"To allow it, add the host to RESILREPORT_SAFE_HOSTS. Current whitelist: %v: %w",
			hostname,
			g.safeHostnames,
			ErrNonWhitelistedHost,
		)
	}

	g.log.WithFields(logrus.Fields{
		"hostname":  hostname,
		"whitelist": g.safeHostnames,
	}).Info("ClickHouse hostname validated successfully")

	return nil
}

// isWhitelisted checks if a hostname is in the safe hostnames list.
func (g *hostGuard) isWhitelisted(hostname string) bool {
	for _, safe := range g.safeHostnames {
		if hostname == safe {
			return true
		}
	}

	return false
}
