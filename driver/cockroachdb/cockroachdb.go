// Package cockroachdb adapts CockroachDB via github.com/lib/pq, reusing the
// postgres adapter wholesale since CockroachDB speaks the Postgres wire
// protocol — the same wire-compatibility the compiler/cockroachdb package
// already exploits for SQL generation.
package cockroachdb

import (
	"database/sql"

	"github.com/AnirudhB3000/buildaquery/driver/postgres"
)

// Config is postgres.Config with CockroachDB's default port (26257).
type Config = postgres.Config

// Open builds a *sql.DB for a CockroachDB cluster. Port 0 defaults to
// 26257, CockroachDB's standard SQL port, rather than Postgres's 5432.
func Open(c Config) (*sql.DB, string, error) {
	if c.Port == 0 {
		c.Port = 26257
	}
	return postgres.Open(c)
}
