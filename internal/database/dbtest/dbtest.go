// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"mirmaia/pos/internal/database"
	"mirmaia/pos/internal/migrations"
)

// Open creates a migrated database in the test's temp dir.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "pos.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.Connect(database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Insert runs a fixture statement ending in RETURNING id and returns the id.
func Insert(t *testing.T, db *sqlx.DB, query string, args ...any) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRowx(db.Rebind(query), args...).Scan(&id); err != nil {
		t.Fatalf("fixture %q: %v", query, err)
	}
	return id
}
