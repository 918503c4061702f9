// Package mariadb reuses the mysql adapter wholesale: MariaDB speaks the
// MySQL wire protocol and go-sql-driver/mysql connects to it unmodified,
// the same wire-compatibility the compiler/mariadb package exploits for
// its ON DUPLICATE KEY UPDATE / RETURNING mix.
package mariadb

import (
	"database/sql"

	"github.com/AnirudhB3000/buildaquery/driver/mysql"
)

// Config is mysql.Config; MariaDB's default port is also 3306.
type Config = mysql.Config

// Open builds a *sql.DB for a MariaDB server.
func Open(c Config) (*sql.DB, string, error) {
	return mysql.Open(c)
}
