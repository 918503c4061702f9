// Package sqlite adapts modernc.org/sqlite (a pure-Go driver, the
// teacher's own go.mod dependency) into a ready-to-use *sql.DB. SQLite has
// no network connect step worth retrying, so this adapter skips
// buildaquerydriver.RetryConnector entirely and opens the file (or
// ":memory:") directly.
package sqlite

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Config names the SQLite database file; Path may be ":memory:" for an
// in-process database.
type Config struct {
	Path string
}

// Open builds a *sql.DB for the SQLite file (or in-memory database) named
// by c.Path.
func Open(c Config) (*sql.DB, error) {
	path := c.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	return db, nil
}
