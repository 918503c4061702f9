// Package driver wires the dialect compilers and the executor to concrete
// database/sql drivers, one thin adapter per dialect in a subpackage.
// Grounded on the teacher's database.RetryConnector (a driver.Connector
// wrapped with retry and logging) generalized from "MySQL or Postgres" to
// "whatever dialect a subpackage registers", and with retry now going
// through the shared retry.Do engine instead of retry.WithBackoff.
package driver

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/AnirudhB3000/buildaquery/logging"
	"github.com/AnirudhB3000/buildaquery/retry"
	"github.com/pkg/errors"
)

// InitConnFunc runs arbitrary session setup right after a new connection is
// established — the generalized form of the teacher's wsrep_sync_wait hook
// in database.NewDbFromConfig's mysql case.
type InitConnFunc func(ctx context.Context, conn driver.Conn) error

// RetryConnector wraps a database/sql/driver.Connector, retrying connect
// failures with bounded exponential backoff up to Timeout and running
// InitConn (if set) once per new connection.
type RetryConnector struct {
	driver.Connector

	Logger   *logging.Logger
	InitConn InitConnFunc
	Timeout  time.Duration
}

// NewRetryConnector wraps connector with retry/logging/init-hook behavior.
// A zero timeout defaults to 5 minutes, matching the teacher's connector.
func NewRetryConnector(connector driver.Connector, logger *logging.Logger, initConn InitConnFunc, timeout time.Duration) *RetryConnector {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &RetryConnector{Connector: connector, Logger: logger, InitConn: initConn, Timeout: timeout}
}

// Connect implements driver.Connector, retrying until ctx's deadline
// (bounded additionally by Timeout) or a non-transient failure.
func (c *RetryConnector) Connect(ctx context.Context) (driver.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var conn driver.Conn
	attempt := uint64(0)

	err := retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		var err error
		conn, err = c.Connector.Connect(ctx)
		if err != nil {
			return connectError{err}
		}
		if c.InitConn != nil {
			if err := c.InitConn(ctx, conn); err != nil {
				_ = conn.Close()
				return connectError{err}
			}
		}
		return nil
	}, retry.Policy{
		MaxAttempts:       1 << 20, // effectively unbounded; ctx's deadline is the real stop condition
		BaseDelay:         128 * time.Millisecond,
		MaxDelay:          time.Minute,
		BackoffMultiplier: 2,
	}, retry.Hooks{
		OnRetry: func(attempt uint64, delay time.Duration, err error) {
			if c.Logger != nil {
				c.Logger.Warnf("can't connect to database, retrying in %s (attempt %d): %s", delay, attempt, err)
			}
		},
	})

	if err == nil && c.Logger != nil && attempt > 1 {
		c.Logger.Infof("reconnected to database after %d attempts", attempt)
	}

	return conn, errors.Wrap(err, "connect to database")
}

// Driver implements driver.Connector.
func (c *RetryConnector) Driver() driver.Driver {
	return c.Connector.Driver()
}

// connectError marks every Connect failure as transient: a failed
// connection attempt is always worth retrying until the caller's context
// deadline elapses, regardless of what dberrors.Normalize would classify
// the underlying dial/auth error as once a statement-level query fails.
type connectError struct{ cause error }

func (e connectError) Error() string   { return e.cause.Error() }
func (e connectError) Unwrap() error   { return e.cause }
func (e connectError) Transient() bool { return true }

var _ driver.Connector = (*RetryConnector)(nil)

// ParseDSN recognizes a connection string's scheme and returns the dialect
// name it names plus the scheme-stripped remainder to hand to that
// dialect's adapter. This is the one piece of URL-parsing glue that lives
// outside the executor core, so ast/compiler/executor stay free of it.
func ParseDSN(raw string) (dialect string, dsn string, err error) {
	for scheme, name := range dsnSchemes {
		prefix := scheme + "://"
		if len(raw) >= len(prefix) && raw[:len(prefix)] == prefix {
			return name, raw[len(prefix):], nil
		}
	}
	return "", "", errors.Errorf("driver: unrecognized connection string scheme in %q", raw)
}

var dsnSchemes = map[string]string{
	"postgres":   "postgres",
	"postgresql": "postgres",
	"cockroach":  "cockroachdb",
	"mysql":      "mysql",
	"mariadb":    "mariadb",
	"sqlite":     "sqlite",
	"sqlserver":  "mssql",
	"oracle":     "oracle",
}
