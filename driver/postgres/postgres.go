// Package postgres adapts github.com/lib/pq into a driver.RetryConnector
// and a ready-to-use *sql.DB, grounded on the teacher's "pgsql" case in
// database.NewDbFromConfig. CockroachDB reuses this adapter verbatim since
// it speaks the Postgres wire protocol.
package postgres

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"net/url"
	"strconv"
	"time"

	buildaquerydriver "github.com/AnirudhB3000/buildaquery/driver"
	"github.com/AnirudhB3000/buildaquery/logging"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// Config is the subset of connection parameters this adapter needs; TLS
// setup beyond sslmode is left to the caller via RawQuery.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// SSLMode is passed through verbatim ("disable", "require",
	// "verify-full", ...); empty defaults to "disable".
	SSLMode string

	// RawQuery, if set, is merged into the connection URI's query string,
	// letting a caller add sslcert/sslkey/sslrootcert or any libpq option
	// this Config doesn't model directly.
	RawQuery url.Values

	ConnectTimeout time.Duration
	InitConn       buildaquerydriver.InitConnFunc
}

// Open builds a *sql.DB backed by a buildaquerydriver.RetryConnector
// wrapping lib/pq, following the teacher's URI-with-query-string
// construction (host/port always travel in the query string, since lib/pq
// cannot parse a Unix socket path placed in the URI host component).
func Open(c Config) (db *sql.DB, addr string, err error) {
	uri := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Path:   "/" + url.PathEscape(c.Database),
	}

	query := url.Values{}
	for k, v := range c.RawQuery {
		query[k] = v
	}

	connectTimeout := c.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 60 * time.Second
	}
	query.Set("connect_timeout", strconv.Itoa(int(connectTimeout.Seconds())))
	query.Set("host", c.Host)

	port := c.Port
	if port == 0 {
		port = 5432
	}
	query.Set("port", strconv.Itoa(port))

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	query.Set("sslmode", sslMode)

	uri.RawQuery = query.Encode()

	connector, err := pq.NewConnector(uri.String())
	if err != nil {
		return nil, "", errors.Wrap(err, "build postgres connector")
	}

	return sql.OpenDB(wrapConnector(connector, nil, c.InitConn)), fmt.Sprintf("%s:%d", c.Host, port), nil
}

// WrapConnector wraps an already-built driver.Connector (useful when a
// caller constructs the pq.Connector itself) with retry and an optional
// post-connect hook.
func WrapConnector(connector driver.Connector, logger *logging.Logger, initConn buildaquerydriver.InitConnFunc) driver.Connector {
	return wrapConnector(connector, logger, initConn)
}

func wrapConnector(connector driver.Connector, logger *logging.Logger, initConn buildaquerydriver.InitConnFunc) driver.Connector {
	return buildaquerydriver.NewRetryConnector(connector, logger, initConn, 0)
}
