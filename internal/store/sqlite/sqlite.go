// Package sqlite implements the store interfaces over a single sqlite
// file. One process owns the database; WAL mode keeps the watchdog's
// writes from blocking planner reads.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so the store methods and the migration
// helpers hang off one type.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the
// connection pragmas. It does not run migrations; callers decide whether
// to migrate automatically or via the CLI.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// modernc sqlite serializes on a single connection; more than one
	// produces SQLITE_BUSY under concurrent ingest.
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the filesystem path the database was opened with.
func (db *DB) Path() string { return db.path }
