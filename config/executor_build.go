package config

import (
	"database/sql"
	"os"

	"github.com/AnirudhB3000/buildaquery/compiler"
	"github.com/AnirudhB3000/buildaquery/compiler/cockroachdb"
	"github.com/AnirudhB3000/buildaquery/compiler/mariadb"
	"github.com/AnirudhB3000/buildaquery/compiler/mssql"
	"github.com/AnirudhB3000/buildaquery/compiler/mysql"
	"github.com/AnirudhB3000/buildaquery/compiler/postgres"
	"github.com/AnirudhB3000/buildaquery/compiler/sqlite"
	drivermariadb "github.com/AnirudhB3000/buildaquery/driver/mariadb"
	drivermssql "github.com/AnirudhB3000/buildaquery/driver/mssql"
	drivermysql "github.com/AnirudhB3000/buildaquery/driver/mysql"
	driverpostgres "github.com/AnirudhB3000/buildaquery/driver/postgres"
	driversqlite "github.com/AnirudhB3000/buildaquery/driver/sqlite"
	"github.com/AnirudhB3000/buildaquery/executor"
	"github.com/AnirudhB3000/buildaquery/logging"
	"github.com/AnirudhB3000/buildaquery/observability"
	"github.com/AnirudhB3000/buildaquery/retry"
	"github.com/pkg/errors"
)

// Policy converts the YAML-facing RetryPolicy into the retry.Policy the
// executor package actually consumes.
func (p *RetryPolicy) Policy() retry.Policy {
	return retry.Policy{
		MaxAttempts:       p.MaxAttempts,
		BaseDelay:         p.BaseDelay,
		MaxDelay:          p.MaxDelay,
		BackoffMultiplier: p.BackoffMultiplier,
	}
}

// open resolves the compiler.Dialect and opens a *sql.DB for e's
// configured dialect, returning the address string worth logging.
func (e *Executor) open(logger *logging.Logger) (compiler.Dialect, *sql.DB, string, error) {
	c := e.Connection

	switch e.Dialect {
	case "postgres":
		db, addr, err := driverpostgres.Open(driverpostgres.Config{
			Host: c.Host, Port: c.Port, User: c.User, Password: c.Password,
			Database: c.Database, ConnectTimeout: c.ConnectTimeout,
		})
		return postgres.New(), db, addr, err
	case "cockroachdb":
		db, addr, err := driverpostgres.Open(driverpostgres.Config{
			Host: c.Host, Port: c.Port, User: c.User, Password: c.Password,
			Database: c.Database, ConnectTimeout: c.ConnectTimeout,
		})
		return cockroachdb.New(), db, addr, err
	case "mysql":
		db, addr, err := drivermysql.Open(drivermysql.Config{
			Host: c.Host, Port: c.Port, User: c.User, Password: c.Password,
			Database: c.Database, WsrepSyncWait: c.WsrepSyncWait, Logger: logger,
		})
		return mysql.New(), db, addr, err
	case "mariadb":
		db, addr, err := drivermariadb.Open(drivermariadb.Config{
			Host: c.Host, Port: c.Port, User: c.User, Password: c.Password,
			Database: c.Database, WsrepSyncWait: c.WsrepSyncWait, Logger: logger,
		})
		return mariadb.New(), db, addr, err
	case "sqlite":
		db, err := driversqlite.Open(driversqlite.Config{Path: c.Path})
		return sqlite.New(), db, c.Path, err
	case "mssql":
		db, addr, err := drivermssql.Open(drivermssql.Config{
			Host: c.Host, Port: c.Port, User: c.User, Password: c.Password,
			Database: c.Database, Logger: logger,
		})
		return mssql.New(), db, addr, err
	default:
		return nil, nil, "", errors.Errorf("dialect %q has no driver adapter", e.Dialect)
	}
}

// Build opens the configured connection and returns a ready-to-use
// executor.Executor, wired with the retry policy and observability
// adapters named in this configuration. eventBus is appended as an
// additional observer when it is non-nil and Observability.EventBus is
// set; it is typically a *redisbus.Sink built by the
// caller; this package cannot import redis or redisbus itself, since
// redis/config.go imports config for config.TLS.
func (e *Executor) Build(logger *logging.Logger, eventBus observability.Observer) (*executor.Executor, error) {
	dialect, db, addr, err := e.open(logger)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s connection", e.Dialect)
	}
	logger.Infof("connected to %s database at %s", e.Dialect, addr)

	var observers []observability.Observer
	if e.Observability.Logging {
		observers = append(observers, observability.NewJSONLogger(os.Stdout))
	}
	if e.Observability.Metrics {
		observers = append(observers, observability.NewMetricsAdapter())
	}
	if e.Observability.Tracing {
		observers = append(observers, observability.NewTracingAdapter(observability.NoopSpanExporter{}))
	}
	if e.Observability.EventBus && eventBus != nil {
		observers = append(observers, eventBus)
	}

	return executor.New(e.Dialect, dialect,
		executor.WithOwnedConn(db),
		executor.WithRetryPolicy(e.Retry.Policy()),
		executor.WithObserver(observability.Compose(observers...)),
	), nil
}
