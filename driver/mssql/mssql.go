// Package mssql adapts github.com/denisenkom/go-mssqldb into a
// buildaquerydriver.RetryConnector and a ready-to-use *sql.DB. Adopted from
// the rest of the example pack (the teacher itself never targets SQL
// Server) since the compiler/mssql package needs a real driver home.
package mssql

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	buildaquerydriver "github.com/AnirudhB3000/buildaquery/driver"
	"github.com/AnirudhB3000/buildaquery/logging"
	mssqldb "github.com/denisenkom/go-mssqldb"
	"github.com/pkg/errors"
)

// Config is the subset of connection parameters this adapter needs.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	Logger   *logging.Logger
	InitConn buildaquerydriver.InitConnFunc
}

// Open builds a *sql.DB backed by a buildaquerydriver.RetryConnector
// wrapping go-mssqldb, using the sqlserver:// URL form go-mssqldb accepts
// directly.
func Open(c Config) (*sql.DB, string, error) {
	port := c.Port
	if port == 0 {
		port = 1433
	}

	query := url.Values{}
	query.Set("database", c.Database)

	uri := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, strconv.Itoa(port)),
		RawQuery: query.Encode(),
	}

	connector, err := mssqldb.NewConnector(uri.String())
	if err != nil {
		return nil, "", errors.Wrap(err, "build mssql connector")
	}

	retryConn := buildaquerydriver.NewRetryConnector(connector, c.Logger, c.InitConn, 0)
	return sql.OpenDB(retryConn), fmt.Sprintf("%s:%d", c.Host, port), nil
}
