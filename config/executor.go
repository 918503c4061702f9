package config

import (
	"time"

	"github.com/pkg/errors"
)

// RetryPolicy defines the backoff schedule an executor uses to retry
// transient database errors (lost connections, deadlocks, serialization
// failures). Its fields mirror the retry.Policy it is converted into.
type RetryPolicy struct {
	MaxAttempts       uint64        `yaml:"max_attempts" env:"MAX_ATTEMPTS" default:"10"`
	BaseDelay         time.Duration `yaml:"base_delay" env:"BASE_DELAY" default:"128ms"`
	MaxDelay          time.Duration `yaml:"max_delay" env:"MAX_DELAY" default:"1m"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" env:"BACKOFF_MULTIPLIER" default:"2"`
}

// Validate checks constraints in the supplied RetryPolicy and returns an error if they are violated.
func (p *RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	if p.BaseDelay <= 0 {
		return errors.New("base_delay must be positive")
	}
	if p.MaxDelay < p.BaseDelay {
		return errors.New("max_delay must be at least base_delay")
	}
	if p.BackoffMultiplier < 1 {
		return errors.New("backoff_multiplier must be at least 1")
	}

	return nil
}

// ObservabilitySettings toggles which observability adapters an executor
// wires into its Observer chain.
type ObservabilitySettings struct {
	Logging   bool   `yaml:"logging" env:"LOGGING" default:"true"`
	Metrics   bool   `yaml:"metrics" env:"METRICS" default:"true"`
	Tracing   bool   `yaml:"tracing" env:"TRACING" default:"false"`
	EventBus  bool   `yaml:"event_bus" env:"EVENT_BUS" default:"false"`
	StreamKey string `yaml:"stream_key" env:"STREAM_KEY" default:"buildaquery:events"`
}

// Validate checks constraints in the supplied ObservabilitySettings and returns an error if they are violated.
func (o *ObservabilitySettings) Validate() error {
	if o.EventBus && o.StreamKey == "" {
		return errors.New("stream_key must be set when event_bus is enabled")
	}

	return nil
}

// ConnectionParams holds the per-dialect connection parameters an executor
// needs to open a *sql.DB. Only the fields relevant to Dialect are read;
// the rest are ignored, the same way the teacher's Database config carries
// a single flat field set regardless of backend.
type ConnectionParams struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Database string `yaml:"database" env:"DATABASE"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD,unset"` // #nosec G117 -- exported password field

	// Path is used by the sqlite dialect in place of Host/Port/Database.
	Path string `yaml:"path" env:"PATH"`

	// WsrepSyncWait is forwarded to the mysql/mariadb adapters.
	WsrepSyncWait int `yaml:"wsrep_sync_wait" env:"WSREP_SYNC_WAIT"`

	// MaxConnections bounds the pool size, mirroring config.Database.
	MaxConnections int `yaml:"max_connections" env:"MAX_CONNECTIONS" default:"16"`

	// ConnectTimeout is forwarded to the postgres and cockroachdb adapters as
	// lib/pq's per-attempt connect_timeout; the other dialects ignore it. It
	// does not bound the RetryConnector, which keeps its own 5 minute limit.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT" default:"5m"`
}

// Validate checks constraints in the supplied ConnectionParams and returns an error if they are violated.
func (c *ConnectionParams) Validate(dialect string) error {
	if dialect == "sqlite" {
		if c.Path == "" {
			return errors.New("path must be set for the sqlite dialect")
		}
		return nil
	}

	if c.Host == "" {
		return errors.New("host missing")
	}
	if c.MaxConnections < 1 {
		return errors.New("max_connections must be at least 1")
	}

	return nil
}

// Executor defines the configuration of a single query-executing database
// connection: which dialect it speaks, how to connect to it, how hard to
// retry transient failures, and which observability adapters to enable.
// It is loaded the same way the teacher loads config.Database and
// redis.Config, via config.FromYAMLFile or env.ParseWithOptions.
type Executor struct {
	// Dialect selects the compiler.Dialect and driver adapter: one of
	// "postgres", "cockroachdb", "mysql", "mariadb", "sqlite", "mssql".
	// "oracle" is accepted by driver.ParseDSN for DSN parsing but has no
	// adapter package, since no Go Oracle driver exists anywhere in the
	// example pack.
	Dialect string `yaml:"dialect" env:"DIALECT"`

	Connection    ConnectionParams      `yaml:"connection" envPrefix:"CONNECTION_"`
	Retry         RetryPolicy           `yaml:"retry" envPrefix:"RETRY_"`
	Observability ObservabilitySettings `yaml:"observability" envPrefix:"OBSERVABILITY_"`
}

// Validate checks constraints in the supplied Executor configuration and returns an error if they are violated.
func (e *Executor) Validate() error {
	switch e.Dialect {
	case "postgres", "cockroachdb", "mysql", "mariadb", "sqlite", "mssql":
	case "oracle":
		return errors.New("dialect oracle has no driver adapter; see DESIGN.md")
	case "":
		return errors.New("dialect missing")
	default:
		return errors.Errorf("unknown dialect %q", e.Dialect)
	}

	if err := e.Connection.Validate(e.Dialect); err != nil {
		return errors.WithStack(err)
	}
	if err := e.Retry.Validate(); err != nil {
		return errors.WithStack(err)
	}
	if err := e.Observability.Validate(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
