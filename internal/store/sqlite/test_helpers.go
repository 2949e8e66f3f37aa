package sqlite

import (
	"path/filepath"
	"testing"
)

// NewTestDB opens a migrated throwaway database under t.TempDir. A file
// rather than :memory: so the WAL pragma behaves as in production.
func NewTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "navwatch_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.MigrateUp(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
