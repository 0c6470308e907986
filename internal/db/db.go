// Package db opens the closet database and keeps its schema current.
package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// connPragmas are applied by the driver to every pooled connection, so
// foreign keys from items to users hold whichever connection a query gets.
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// dsn builds a modernc.org/sqlite data source name for path. Without a
// file: prefix the driver strips the query and opens path as is.
func dsn(path string) string {
	q := url.Values{"_pragma": connPragmas, "_txlock": {"immediate"}}
	return path + "?" + q.Encode()
}

// Open opens the SQLite database at path and checks that it is reachable.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	return db, nil
}
